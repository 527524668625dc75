package ranger

// Invalid is the reading a Sensor returns when no echo came back
const Invalid = -1.0

// Sensor measures distance
type Sensor interface {
	Configure() error
	// DistanceCm triggers one measurement.  A negative result means no
	// valid echo.
	DistanceCm() float64
}

// Indicator is a binary output, e.g. an LED on a GPIO pin
type Indicator interface {
	Configure() error
	Set(on bool)
}

// Linker is the network link the reporter talks over
type Linker interface {
	// Begin starts association.  It does not wait for the link to come up.
	Begin() error
	Connected() bool
	// Addr is the local address once connected
	Addr() string
}

// Mirror gets a copy of each telemetry message sent to the server
type Mirror interface {
	Publish(payload []byte) error
}

// Hardware bundles a ranger's devices
type Hardware struct {
	Sensor    Sensor
	Indicator Indicator
	Link      Linker
}

// UpdateLED turns the indicator on when distance is under threshold, and
// off otherwise.  Negative (invalid) distances are under any threshold above
// them, so they turn the indicator on.
func UpdateLED(ind Indicator, distance, threshold float64) {
	ind.Set(distance < threshold)
}
