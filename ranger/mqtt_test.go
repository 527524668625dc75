package ranger

import (
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	qt "github.com/frankban/quicktest"
)

type fakeToken struct {
	done bool
	err  error
}

func (t *fakeToken) Wait() bool                     { return t.done }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return t.done }
func (t *fakeToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (t *fakeToken) Error() error                   { return t.err }

type fakeMQTTClient struct {
	mqtt.Client
	topic    string
	payloads []string
	token    *fakeToken
}

func (f *fakeMQTTClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	f.topic = topic
	f.payloads = append(f.payloads, string(payload.([]byte)))
	return f.token
}

func TestMQTTMirror(t *testing.T) {
	c := qt.New(t)
	client := &fakeMQTTClient{token: &fakeToken{done: true}}
	m := newMQTTMirror(client, "sonar/readings")

	c.Assert(m.Publish([]byte(`{"id":"esp32_1","distance":1.00}`)), qt.IsNil)
	c.Assert(client.topic, qt.Equals, "sonar/readings")
	c.Assert(client.payloads, qt.DeepEquals, []string{`{"id":"esp32_1","distance":1.00}`})

	client.token = &fakeToken{done: true, err: errors.New("not connected")}
	c.Assert(m.Publish(nil), qt.ErrorMatches, "not connected")

	client.token = &fakeToken{done: false}
	c.Assert(m.Publish(nil), qt.ErrorMatches, "mqtt publish to sonar/readings timed out")
}
