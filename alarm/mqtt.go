package alarm

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/fortym2/HumanCount/config"
)

// MQTTNotifier publishes alarm events as JSON to a single topic over a
// persistent broker connection.
type MQTTNotifier struct {
	client mqtt.Client
	topic  string
}

// NewMQTTNotifier connects to the configured broker.
func NewMQTTNotifier(cfg config.MQTTConfig) (*MQTTNotifier, error) {
	opts := mqtt.NewClientOptions().AddBroker(cfg.Broker)
	if cfg.Username != "" && cfg.Password != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("alarm: could not connect to MQTT broker %s: %w",
			cfg.Broker, token.Error())
	}

	return &MQTTNotifier{client: client, topic: cfg.Topic}, nil
}

// Publish sends one event and waits for the broker acknowledgement.
func (n *MQTTNotifier) Publish(ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("alarm: could not encode event: %w", err)
	}

	token := n.client.Publish(n.topic, 0, false, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("alarm: publish to %q failed: %w", n.topic, token.Error())
	}
	return nil
}

// Close disconnects from the broker.
func (n *MQTTNotifier) Close() {
	n.client.Disconnect(250)
}
