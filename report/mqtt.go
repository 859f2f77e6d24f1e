//go:build !tinygo

package report

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"irqlab/protocol"
)

// DefaultTopicPrefix is prepended to the counter name
const DefaultTopicPrefix = "irqlab/counters/"

// Payload is the JSON body of an MQTT counter message
type Payload struct {
	Name      string `json:"name"`
	Events    uint32 `json:"events"`
	Missed    uint32 `json:"missed"`
	UptimeMs  uint32 `json:"uptime_ms"`
	Timestamp string `json:"timestamp"`
}

// FormatPayload creates the JSON payload for a report received at ts
func FormatPayload(r protocol.CounterReport, ts time.Time) ([]byte, error) {
	return json.Marshal(Payload{
		Name:      r.Name,
		Events:    r.Events,
		Missed:    r.Missed,
		UptimeMs:  r.Uptime,
		Timestamp: ts.UTC().Format(time.RFC3339),
	})
}

// MQTT publishes reports to a broker, one topic per counter
type MQTT struct {
	client paho.Client
	prefix string
	now    func() time.Time
}

// NewMQTT connects to broker
func NewMQTT(broker, clientID, prefix string) (*MQTT, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return &MQTT{client: client, prefix: prefix, now: time.Now}, nil
}

// Report implements Reporter
func (m *MQTT) Report(r protocol.CounterReport) error {
	payload, err := FormatPayload(r, m.now())
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 0, retained so a new subscriber sees the latest count
	token := m.client.Publish(m.prefix+r.Name, 0, true, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// IsConnected reports whether the broker connection is up
func (m *MQTT) IsConnected() bool {
	return m.client.IsConnected()
}

// Close disconnects from the broker
func (m *MQTT) Close() error {
	m.client.Disconnect(1000)
	return nil
}
