// Package notify provides outbound notification adapters. The MQTT notifier
// publishes assignment decisions for downstream consumers such as driver
// apps and messaging bridges; delivery is best-effort.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/logger"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/model"
)

// MQTTConfig defines the connection parameters for the Paho MQTT notifier.
type MQTTConfig struct {
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Topic    string `json:"topic"`
	QoS      byte   `json:"qos"`
}

// MQTTNotifier publishes assignment notifications over MQTT.
type MQTTNotifier struct {
	cli   paho.Client
	topic string
	qos   byte
	log   logger.Logger
}

// assignmentMessage is the wire payload of one notification.
type assignmentMessage struct {
	LoadID       string `json:"load_id"`
	TrackingCode string `json:"tracking_code"`
	DriverID     string `json:"driver_id"`
	Status       string `json:"status"`
	AssignedAt   string `json:"assigned_at"`
}

// NewMQTTNotifier connects to the broker. The returned notifier never blocks
// an assignment on broker trouble; publish failures are reported to the
// caller, which logs and moves on.
func NewMQTTNotifier(cfg MQTTConfig, log logger.Logger) (*MQTTNotifier, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("notify: mqtt broker is required")
	}
	if cfg.Topic == "" {
		cfg.Topic = "meddrop/assignments"
	}
	if log == nil {
		log = logger.Nop{}
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)

	cli := paho.NewClient(opts)
	tok := cli.Connect()
	if !tok.WaitTimeout(10*time.Second) || tok.Error() != nil {
		return nil, fmt.Errorf("notify: mqtt connect: %v", tok.Error())
	}
	return &MQTTNotifier{cli: cli, topic: cfg.Topic, qos: cfg.QoS, log: log}, nil
}

func (n *MQTTNotifier) NotifyAssignment(ctx context.Context, load model.Load, driver model.Driver) error {
	msg := assignmentMessage{
		LoadID:       load.ID,
		TrackingCode: load.TrackingCode,
		DriverID:     driver.ID,
		Status:       string(model.StatusScheduled),
		AssignedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal assignment message: %w", err)
	}

	tok := n.cli.Publish(n.topic, n.qos, false, payload)
	deadline := 5 * time.Second
	if d, ok := ctx.Deadline(); ok {
		if remaining := time.Until(d); remaining < deadline {
			deadline = remaining
		}
	}
	if !tok.WaitTimeout(deadline) {
		return fmt.Errorf("publish assignment for load %s: timeout", load.ID)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("publish assignment for load %s: %w", load.ID, err)
	}
	n.log.Debugf("published assignment of load %s to %s", load.ID, n.topic)
	return nil
}

// Close disconnects from the broker.
func (n *MQTTNotifier) Close() error {
	n.cli.Disconnect(250)
	return nil
}
