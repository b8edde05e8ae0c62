package uplink

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jlpinilla/MediaEdu/data"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	logger "github.com/sirupsen/logrus"
)

// MQTT publishes each snapshot as JSON to mediaedu/<label>/readings.
type MQTT struct {
	client mqtt.Client
	target Target
}

const mqttTimeout = 10 * time.Second

func (m *MQTT) Connect(t Target) error {
	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:1883", t.Host)).
		SetClientID(t.Label).
		SetUsername(t.User).
		SetPassword(t.Secret).
		SetConnectTimeout(mqttTimeout)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttTimeout) {
		return fmt.Errorf("broker %v connect timed out", t.Host)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("broker %v connect: %w", t.Host, err)
	}

	m.client = client
	m.target = t
	logger.WithFields(t.Fields()).Info("Uplink broker connected")
	return nil
}

func (m *MQTT) Send(s data.Snapshot) error {
	payload, err := json.Marshal(struct {
		data.Snapshot
		Site   string `json:"site"`
		Device string `json:"device"`
	}{Snapshot: s, Site: m.target.Site, Device: m.target.Label})
	if err != nil {
		return err
	}

	topic := fmt.Sprintf("mediaedu/%s/readings", m.target.Label)
	token := m.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(mqttTimeout) {
		return fmt.Errorf("publish to %v timed out", topic)
	}
	return token.Error()
}

func (m *MQTT) Close() {
	if m.client != nil {
		m.client.Disconnect(250)
		m.client = nil
	}
}
