package ranger

import (
	"io"

	"github.com/sirupsen/logrus"
)

type fakeSensor struct {
	readings []float64
	reads    int
}

func (s *fakeSensor) Configure() error { return nil }

func (s *fakeSensor) DistanceCm() float64 {
	r := s.readings[s.reads%len(s.readings)]
	s.reads++
	return r
}

type fakeIndicator struct {
	configured bool
	on         bool
	history    []bool
}

func (i *fakeIndicator) Configure() error { i.configured = true; return nil }

func (i *fakeIndicator) Set(on bool) {
	i.on = on
	i.history = append(i.history, on)
}

type fakeLink struct {
	up    bool
	polls int
	// upAfter brings the link up on the nth Connected call
	upAfter int
}

func (l *fakeLink) Begin() error { return nil }

func (l *fakeLink) Connected() bool {
	l.polls++
	if l.upAfter > 0 && l.polls >= l.upAfter {
		l.up = true
	}
	return l.up
}

func (l *fakeLink) Addr() string { return "192.168.1.42" }

type fakeMirror struct {
	payloads []string
	err      error
}

func (m *fakeMirror) Publish(payload []byte) error {
	m.payloads = append(m.payloads, string(payload))
	return m.err
}

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
