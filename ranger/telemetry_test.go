package ranger

import (
	"errors"
	"math"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestSerialize(t *testing.T) {
	c := qt.New(t)
	c.Assert(Serialize("esp32_1", 12.345), qt.Equals, `{"id":"esp32_1","distance":12.35}`)
	c.Assert(Serialize("esp32_1", 30), qt.Equals, `{"id":"esp32_1","distance":30.00}`)
	c.Assert(Serialize("esp32_1", -1), qt.Equals, `{"id":"esp32_1","distance":-1.00}`)
	// the float64 nearest 2.675 is just under it
	c.Assert(Serialize("a", 2.675), qt.Equals, `{"id":"a","distance":2.67}`)
	// exact ties go to even
	c.Assert(Serialize("a", 0.125), qt.Equals, `{"id":"a","distance":0.12}`)
	c.Assert(Serialize("a", 0.375), qt.Equals, `{"id":"a","distance":0.38}`)
}

func TestParseThresholdLegacy(t *testing.T) {
	tests := []struct {
		body      string
		threshold float64
		ok        bool
	}{
		{`{"status":"ok","threshold":42.5}`, 42.5, true},
		{`{"threshold": 25}`, 25, true},
		{`{"threshold":-3e1,"x":1}`, -30, true},
		{`{"threshold":"abc"}`, 0, true},
		{`{"threshold":}`, 0, true},
		{`{"threshold":1e}`, 1, true},
		{`{"threshold": .5}`, 0.5, true},
		{`{"status":"ok"}`, 0, false},
		{`{"Threshold":10}`, 0, false},
		{`threshold: 10`, 10, true},
		{`{'threshold': 25}`, 25, true},
		{`{threshold: 25}`, 25, true},
		{`{"threshold": inf}`, math.Inf(1), true},
		{`{"threshold":-Infinity}`, math.Inf(-1), true},
		{`{"threshold":0x1p3}`, 8, true},
		{`{"threshold":0x10,"x":1}`, 16, true},
		{`{"threshold":-0x1.8}`, -1.5, true},
		{`{"threshold":0xg}`, 0, true},
		// no colon after the key: read from the start of the body
		{`7 "threshold"`, 7, true},
		{`{"threshold"`, 0, true},
	}
	for _, test := range tests {
		t.Run(test.body, func(t *testing.T) {
			c := qt.New(t)
			threshold, ok := ParseThresholdLegacy(test.body)
			c.Assert(ok, qt.Equals, test.ok)
			c.Assert(threshold, qt.Equals, test.threshold)
		})
	}
}

func TestParseThresholdLegacyNaN(t *testing.T) {
	c := qt.New(t)
	threshold, ok := ParseThresholdLegacy(`{"threshold": NaN}`)
	c.Assert(ok, qt.IsTrue)
	c.Assert(math.IsNaN(threshold), qt.IsTrue)
}

func TestParseThresholdStrict(t *testing.T) {
	c := qt.New(t)

	threshold, ok, err := ParseThresholdStrict([]byte(`{"status":"ok","threshold":42.5}`))
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(threshold, qt.Equals, 42.5)

	_, ok, err = ParseThresholdStrict([]byte(`{"status":"ok"}`))
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)

	for _, body := range []string{
		`{"threshold":"abc"}`,
		`{"threshold":"42"}`,
		`{"threshold":null}`,
		`{"threshold":1e400}`,
		`{"threshold":}`,
		`"threshold": 5`,
		`[1,2]`,
		``,
	} {
		_, ok, err := ParseThresholdStrict([]byte(body))
		c.Check(ok, qt.IsFalse, qt.Commentf("body %q", body))
		c.Check(errors.Is(err, ErrMalformed), qt.IsTrue, qt.Commentf("body %q", body))
	}
}
