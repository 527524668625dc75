//go:build !tinygo

package ranger

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

// MQTTMirror publishes telemetry to an MQTT topic
type MQTTMirror struct {
	client  mqtt.Client
	topic   string
	timeout time.Duration
}

// NewMQTTMirror connects to the broker.  The client reconnects on its own
// after that; publishes made while it is down fail and are not queued.
func NewMQTTMirror(cfg MQTTConfig, clientId string, log logrus.FieldLogger) (*MQTTMirror, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientId).
		SetAutoReconnect(true).
		SetConnectRetry(false).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.WithError(err).Warn("MQTT connection lost")
		}).
		SetOnConnectHandler(func(mqtt.Client) {
			log.Infof("MQTT connected to %s", cfg.Broker)
		})
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, token.Error())
	}
	return newMQTTMirror(client, cfg.Topic), nil
}

func newMQTTMirror(client mqtt.Client, topic string) *MQTTMirror {
	return &MQTTMirror{client: client, topic: topic, timeout: time.Second}
}

func (m *MQTTMirror) Publish(payload []byte) error {
	token := m.client.Publish(m.topic, 0, false, payload)
	if !token.WaitTimeout(m.timeout) {
		return fmt.Errorf("mqtt publish to %s timed out", m.topic)
	}
	return token.Error()
}

func (m *MQTTMirror) Close() {
	m.client.Disconnect(250)
}
