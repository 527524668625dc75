package ranger

import (
	"context"
	"net/http"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestUpdateLED(t *testing.T) {
	tests := []struct {
		distance, threshold float64
		on                  bool
	}{
		{30, 50, true},
		{50, 50, false},
		{70, 50, false},
		{0, 0, false},
		{0, 0.01, true},
		{30, 25, false},
		// invalid readings are under any sane threshold
		{-1, 50, true},
		{-1, 0, true},
		{-1, -1, false},
		{-1, -5, false},
	}
	for _, test := range tests {
		ind := &fakeIndicator{}
		UpdateLED(ind, test.distance, test.threshold)
		if ind.on != test.on {
			t.Errorf("UpdateLED(%v, %v) = %v, want %v", test.distance, test.threshold, ind.on, test.on)
		}
	}
}

func TestThreshold(t *testing.T) {
	c := qt.New(t)
	th := NewThreshold(DefaultThreshold)
	c.Assert(th.Get(), qt.Equals, 50.0)
	th.Set(-12)
	c.Assert(th.Get(), qt.Equals, -12.0)
}

func newTestRanger(c *qt.C, url string, readings ...float64) (*Ranger, *fakeIndicator, *fakeLink) {
	cfg := DefaultConfig()
	cfg.ServerURL = url
	cfg.Interval = time.Millisecond
	cfg.LinkPoll = time.Millisecond
	ind := &fakeIndicator{}
	link := &fakeLink{up: true}
	r, err := New(cfg, Hardware{
		Sensor:    &fakeSensor{readings: readings},
		Indicator: ind,
		Link:      link,
	}, quietLogger())
	c.Assert(err, qt.IsNil)
	return r, ind, link
}

func TestThresholdLag(t *testing.T) {
	c := qt.New(t)
	srv := newFakeServer(c, http.StatusOK, `{"threshold": 25}`)
	r, ind, _ := newTestRanger(c, srv.URL, 30, 30)

	c.Assert(r.Threshold(), qt.Equals, 50.0)

	r.Step()
	// compared against the old threshold
	c.Assert(ind.on, qt.IsTrue)
	c.Assert(r.Threshold(), qt.Equals, 25.0)

	r.Step()
	c.Assert(ind.on, qt.IsFalse)
	c.Assert(srv.calls.Load(), qt.Equals, int32(2))
}

func TestInvalidReadingPropagates(t *testing.T) {
	c := qt.New(t)
	srv := newFakeServer(c, http.StatusOK, `{"status":"ok"}`)
	r, ind, _ := newTestRanger(c, srv.URL, Invalid)

	c.Assert(r.ReadDistance(), qt.Equals, Invalid)
	r.Step()
	c.Assert(ind.on, qt.IsTrue)
	c.Assert(srv.lastBody.Load(), qt.Equals, `{"id":"esp32_1","distance":-1.00}`)
}

func TestSetupWaitsForLink(t *testing.T) {
	c := qt.New(t)
	r, ind, link := newTestRanger(c, "http://localhost/api/update", 10)
	link.up = false
	link.upAfter = 3

	c.Assert(r.Setup(context.Background()), qt.IsNil)
	c.Assert(ind.configured, qt.IsTrue)
	c.Assert(ind.history, qt.DeepEquals, []bool{false})
	c.Assert(link.polls >= 3, qt.IsTrue)
}

func TestSetupCanceled(t *testing.T) {
	c := qt.New(t)
	r, _, link := newTestRanger(c, "http://localhost/api/update", 10)
	link.up = false

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	c.Assert(r.Setup(ctx), qt.ErrorIs, context.DeadlineExceeded)
}

func TestRun(t *testing.T) {
	c := qt.New(t)
	srv := newFakeServer(c, http.StatusOK, `{"threshold":10}`)
	r, ind, _ := newTestRanger(c, srv.URL, 5, 20)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- r.Run(ctx) }()

	for srv.calls.Load() < 3 {
		time.Sleep(time.Millisecond)
	}
	cancel()
	c.Assert(<-done, qt.ErrorIs, context.Canceled)
	c.Assert(len(ind.history) >= 3, qt.IsTrue)
	c.Assert(r.Threshold(), qt.Equals, 10.0)
}

func TestNewRejectsBadConfig(t *testing.T) {
	c := qt.New(t)
	cfg := DefaultConfig()
	cfg.Id = `esp32"1`
	_, err := New(cfg, Hardware{&fakeSensor{}, &fakeIndicator{}, &fakeLink{}}, quietLogger())
	c.Assert(err, qt.ErrorMatches, `invalid device id .*`)

	_, err = New(DefaultConfig(), Hardware{}, quietLogger())
	c.Assert(err, qt.IsNotNil)
}
