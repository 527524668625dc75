package sonar

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Runner brings up a Thinger and runs it
type Runner struct {
	thinger Thinger
	log     logrus.FieldLogger
}

func NewRunner(thinger Thinger, log logrus.FieldLogger) *Runner {
	return &Runner{
		thinger: thinger,
		log:     log.WithField("thing", thinger.Id()),
	}
}

// Run calls Setup and then Run on the thing.  Run returns when ctx is done
// or the thing fails.
func (r *Runner) Run(ctx context.Context) error {
	r.log.Infof("Starting %s", r.thinger)
	if err := r.thinger.Setup(ctx); err != nil {
		return fmt.Errorf("setup %s: %w", r.thinger.Id(), err)
	}
	r.log.Info("Setup complete!")
	return r.thinger.Run(ctx)
}
