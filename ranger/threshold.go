package ranger

// DefaultThreshold is the detection threshold, in cm, until the server says
// otherwise
const DefaultThreshold = 50.0

// Threshold holds the detection threshold.  The reporter is its only writer
// and the loop's LED update its only reader.  It is never reset and never
// range checked.
type Threshold struct {
	mu rwMutex
	cm float64
}

func NewThreshold(cm float64) *Threshold {
	return &Threshold{cm: cm}
}

func (t *Threshold) Get() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cm
}

func (t *Threshold) Set(cm float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cm = cm
}
