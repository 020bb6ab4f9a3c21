package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/simgear/pots-to-serial/pkg/config"
	"github.com/simgear/pots-to-serial/pkg/frame"
	"github.com/simgear/pots-to-serial/pkg/output"
)

const (
	// defaults
	DefaultServer      = "tcp://localhost:1883"
	DefaultTopic       = "pots"
	clientIDPrefix     = "pots-to-serial-"
	perChannelTopicFmt = "%s/channel/%d"
	eventTopicFmt      = "%s/event"
)

type MQTTOutput struct {
	client mqtt.Client
	topic  string
}

func NewMQTT(cfg config.MQTTConfig) (output.Output, error) {
	server := cfg.Server
	if server == "" {
		server = DefaultServer
	}
	clientID := cfg.ClientID
	if clientID == "" {
		// random suffix so several devices can share a broker
		clientID = clientIDPrefix + uuid.NewString()[:8]
	}
	opts := mqtt.NewClientOptions().AddBroker(server).SetClientID(clientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}

	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	return &MQTTOutput{client: client, topic: topic}, nil
}

func (m *MQTTOutput) Publish(snap frame.Snapshot) error {
	for _, marker := range snap.Markers {
		topic := fmt.Sprintf(eventTopicFmt, m.topic)
		token := m.client.Publish(topic, 0, false, strings.TrimSuffix(marker, "\n"))
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
	}
	for _, v := range snap.Channels {
		topic := fmt.Sprintf(perChannelTopicFmt, m.topic, v.Channel)
		payload := map[string]interface{}{
			"raw":      v.Raw,
			"smoothed": v.Smoothed,
			"percent":  v.Percent,
		}
		if v.Name != "" {
			payload["name"] = v.Name
		}
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		token := m.client.Publish(topic, 0, false, b)
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
	}
	return nil
}

func (m *MQTTOutput) Close() error {
	if m.client != nil {
		m.client.Disconnect(250)
	}
	return nil
}

// PublishRaw publishes a raw payload to the given topic. The caller can
// set the retain flag, which is useful for announcement messages.
func (m *MQTTOutput) PublishRaw(topic string, payload []byte, retained bool) error {
	if m.client == nil {
		return fmt.Errorf("mqtt client not connected")
	}
	token := m.client.Publish(topic, 0, retained, payload)
	token.Wait()
	return token.Error()
}
