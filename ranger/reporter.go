package ranger

import (
	"bytes"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Reporter posts readings to the server and takes the threshold from the
// server's reply
type Reporter struct {
	id        string
	url       string
	mode      ParseMode
	client    *http.Client
	link      Linker
	threshold *Threshold
	mirror    Mirror
	log       logrus.FieldLogger
}

func NewReporter(cfg Config, link Linker, threshold *Threshold, log logrus.FieldLogger) *Reporter {
	client := &http.Client{
		Timeout:       cfg.HTTPTimeout,
		CheckRedirect: noRedirect,
	}
	return &Reporter{
		id:        cfg.Id,
		url:       cfg.ServerURL,
		mode:      cfg.ParseMode,
		client:    client,
		link:      link,
		threshold: threshold,
		log:       log,
	}
}

// noRedirect hands a 3xx back to the caller as is, so a redirect is one
// request and counts as a non-200 reply
func noRedirect(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}

// SetMirror sets where copies of the telemetry go; nil turns mirroring off
func (r *Reporter) SetMirror(m Mirror) {
	r.mirror = m
}

// SendDataToServer reports one reading.  With the link down the reading is
// dropped.  Nothing is retried, and failures are only logged.
func (r *Reporter) SendDataToServer(distance float64) {
	if !r.link.Connected() {
		return
	}

	payload := Serialize(r.id, distance)
	r.post(payload)

	if r.mirror != nil {
		if err := r.mirror.Publish([]byte(payload)); err != nil {
			r.log.Warnf("Mirror publish failed: %s", err)
		}
	}
}

func (r *Reporter) post(payload string) {
	resp, err := r.client.Post(r.url, "application/json", bytes.NewBufferString(payload))
	if err != nil {
		r.log.WithError(err).Errorf("HTTP error: %d", -1)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.log.Errorf("HTTP error: %d", resp.StatusCode)
		return
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		r.log.WithError(err).Error("Reading server response")
		return
	}
	r.log.Infof("Server response: %s", body)

	r.updateThreshold(body)
}

func (r *Reporter) updateThreshold(body []byte) {
	var threshold float64
	var ok bool

	switch r.mode {
	case ParseStrict:
		var err error
		threshold, ok, err = ParseThresholdStrict(body)
		if err != nil {
			r.log.WithError(err).Warn("Ignoring server response")
			return
		}
	default:
		threshold, ok = ParseThresholdLegacy(string(body))
	}

	if ok {
		r.threshold.Set(threshold)
		r.log.Infof("Updated threshold from server: %.2f", threshold)
	}
}
