package stats

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Mentat-Vision/moe/util/logger"
)

// MQTTConfig configures the optional broker emitter. An empty Broker
// disables it entirely.
type MQTTConfig struct {
	Broker       string `yaml:"broker"`
	ClientID     string `yaml:"client_id"`
	StatsTopic   string `yaml:"stats_topic"`
	ResultsTopic string `yaml:"results_topic"`
	StatsQoS     byte   `yaml:"stats_qos"`
	ResultsQoS   byte   `yaml:"results_qos"`
}

// MQTTEmitter mirrors stats snapshots and combined results onto an MQTT
// broker so external consumers can follow the server without holding a
// websocket open. Reconnection is delegated to the paho client.
type MQTTEmitter struct {
	logger *logger.Logger
	cfg    MQTTConfig
	client mqtt.Client

	mu        sync.RWMutex
	connected bool
}

func NewMQTTEmitter(cfg MQTTConfig) *MQTTEmitter {
	return &MQTTEmitter{
		logger: logger.NewLogger("MQTTEmitter"),
		cfg:    cfg,
	}
}

// Connect establishes the broker connection with auto-reconnect.
func (e *MQTTEmitter) Connect() error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", e.cfg.Broker))
	opts.SetClientID(e.cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(c mqtt.Client) {
		e.mu.Lock()
		e.connected = true
		e.mu.Unlock()
		e.logger.Infof("connected to broker %s", e.cfg.Broker)
	}
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		e.mu.Lock()
		e.connected = false
		e.mu.Unlock()
		e.logger.Warnf("broker connection lost, auto-reconnecting: %v", err)
	}

	e.client = mqtt.NewClient(opts)
	token := e.client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqtt connection timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connection failed: %w", err)
	}
	return nil
}

// PublishStats publishes one ServerStats snapshot.
func (e *MQTTEmitter) PublishStats(snapshot ServerStats) error {
	if !e.isConnected() {
		return fmt.Errorf("mqtt not connected")
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	return e.publish(e.cfg.StatsTopic, e.cfg.StatsQoS, payload)
}

// PublishCombined publishes one camera's combined result under
// results_topic/<camera_id>.
func (e *MQTTEmitter) PublishCombined(cameraID string, combined []byte) error {
	if !e.isConnected() {
		return fmt.Errorf("mqtt not connected")
	}
	topic := fmt.Sprintf("%s/%s", e.cfg.ResultsTopic, cameraID)
	return e.publish(topic, e.cfg.ResultsQoS, combined)
}

func (e *MQTTEmitter) publish(topic string, qos byte, payload []byte) error {
	token := e.client.Publish(topic, qos, false, payload)
	if !token.WaitTimeout(2 * time.Second) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s failed: %w", topic, err)
	}
	return nil
}

// Disconnect closes the broker connection.
func (e *MQTTEmitter) Disconnect() {
	if e.client != nil && e.client.IsConnected() {
		e.client.Disconnect(250)
		e.logger.Infof("disconnected from broker")
	}
	e.mu.Lock()
	e.connected = false
	e.mu.Unlock()
}

func (e *MQTTEmitter) isConnected() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.connected
}
