package ranger

import (
	"context"
	"fmt"
	"time"

	"github.com/merliot/sonar"
	"github.com/sirupsen/logrus"
)

// Ranger is an ultrasonic ranger: it reads distance, lights an indicator
// when something is closer than the threshold, and reports every reading to
// the server, which may answer with a new threshold.
type Ranger struct {
	sonar.Thing
	cfg       Config
	hw        Hardware
	threshold *Threshold
	reporter  *Reporter
	log       logrus.FieldLogger
}

func New(cfg Config, hw Hardware, log logrus.FieldLogger) (*Ranger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if hw.Sensor == nil || hw.Indicator == nil || hw.Link == nil {
		return nil, fmt.Errorf("ranger needs a sensor, an indicator and a link")
	}
	log = log.WithField("id", cfg.Id)
	threshold := NewThreshold(cfg.Threshold)
	return &Ranger{
		Thing:     sonar.NewThing(cfg.Id, cfg.Model, cfg.Name),
		cfg:       cfg,
		hw:        hw,
		threshold: threshold,
		reporter:  NewReporter(cfg, hw.Link, threshold, log),
		log:       log,
	}, nil
}

// SetMirror mirrors telemetry to m
func (r *Ranger) SetMirror(m Mirror) {
	r.reporter.SetMirror(m)
}

// Threshold is the current detection threshold
func (r *Ranger) Threshold() float64 {
	return r.threshold.Get()
}

// Setup configures the indicator and sensor and waits, forever if need be,
// for the network link
func (r *Ranger) Setup(ctx context.Context) error {
	if err := r.hw.Indicator.Configure(); err != nil {
		return fmt.Errorf("configure indicator: %w", err)
	}
	r.hw.Indicator.Set(false)
	if err := r.hw.Sensor.Configure(); err != nil {
		return fmt.Errorf("configure sensor: %w", err)
	}
	return r.connect(ctx)
}

func (r *Ranger) connect(ctx context.Context) error {
	r.log.Info("Connecting to network")
	if err := r.hw.Link.Begin(); err != nil {
		return fmt.Errorf("link begin: %w", err)
	}

	ticker := time.NewTicker(r.cfg.LinkPoll)
	defer ticker.Stop()

	for !r.hw.Link.Connected() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.log.Debug("Waiting for network link")
		}
	}

	r.log.Info("Connected!")
	r.log.Infof("IP Address: %s", r.hw.Link.Addr())
	return nil
}

// ReadDistance takes one reading, as is
func (r *Ranger) ReadDistance() float64 {
	distance := r.hw.Sensor.DistanceCm()
	if distance < 0 {
		r.log.Warn("Invalid distance reading!")
	} else {
		r.log.Infof("Distance: %.2f cm", distance)
	}
	return distance
}

// Step runs one iteration of the loop.  A threshold learned from the server
// here applies from the next Step on.
func (r *Ranger) Step() {
	distance := r.ReadDistance()
	UpdateLED(r.hw.Indicator, distance, r.threshold.Get())
	r.reporter.SendDataToServer(distance)
}

// Run steps every Interval until ctx is done
func (r *Ranger) Run(ctx context.Context) error {
	for {
		r.Step()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.cfg.Interval):
		}
	}
}
