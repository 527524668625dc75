// Package demo simulates ranger hardware so a ranger can run on a desktop
package demo

import (
	"math/rand"

	"github.com/merliot/sonar/ranger"
	"github.com/sirupsen/logrus"
)

const (
	minCm = 5.0
	maxCm = 120.0
)

// Sensor is a simulated ranger: something wanders back and forth in front
// of it, and now and then the echo is lost
type Sensor struct {
	rnd      *rand.Rand
	cm       float64
	lossRate float64
}

func NewSensor(seed int64) *Sensor {
	return &Sensor{
		rnd:      rand.New(rand.NewSource(seed)),
		cm:       60,
		lossRate: 0.05,
	}
}

func (s *Sensor) Configure() error {
	return nil
}

func (s *Sensor) DistanceCm() float64 {
	if s.rnd.Float64() < s.lossRate {
		return ranger.Invalid
	}
	s.cm += s.rnd.Float64()*20 - 10
	if s.cm < minCm {
		s.cm = minCm
	}
	if s.cm > maxCm {
		s.cm = maxCm
	}
	return s.cm
}

// Indicator logs when the simulated LED changes
type Indicator struct {
	On  bool
	log logrus.FieldLogger
	set bool
}

func NewIndicator(log logrus.FieldLogger) *Indicator {
	return &Indicator{log: log}
}

func (i *Indicator) Configure() error {
	return nil
}

func (i *Indicator) Set(on bool) {
	if !i.set || on != i.On {
		if on {
			i.log.Info("LED ON")
		} else {
			i.log.Info("LED OFF")
		}
	}
	i.On, i.set = on, true
}

// Hardware is simulated sensor and LED on the host's network link
func Hardware(seed int64, log logrus.FieldLogger) ranger.Hardware {
	return ranger.Hardware{
		Sensor:    NewSensor(seed),
		Indicator: NewIndicator(log),
		Link:      ranger.NewHostLink(""),
	}
}
