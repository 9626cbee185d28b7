package mqtt

import (
	"fmt"

	"wisefido-vitals/internal/domain"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// Ingestor is the piece of the ingestion engine the MQTT source needs.
type Ingestor interface {
	Ingest(payload []byte) (domain.VitalSnapshot, error)
}

// Options MQTT connection settings.
type Options struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      byte
}

// Source subscribes to a readings topic and feeds every message into the
// same ingestion path as the HTTP endpoint. A malformed message is logged
// and skipped; it never stops the subscription.
type Source struct {
	client paho.Client
	opts   Options
	engine Ingestor
	logger *zap.Logger
}

func NewSource(opts Options, engine Ingestor, logger *zap.Logger) *Source {
	clientOpts := paho.NewClientOptions()
	clientOpts.AddBroker(opts.Broker)
	clientOpts.SetClientID(opts.ClientID)
	if opts.Username != "" {
		clientOpts.SetUsername(opts.Username)
	}
	if opts.Password != "" {
		clientOpts.SetPassword(opts.Password)
	}
	clientOpts.SetAutoReconnect(true)
	clientOpts.SetCleanSession(true)

	return &Source{
		client: paho.NewClient(clientOpts),
		opts:   opts,
		engine: engine,
		logger: logger,
	}
}

// Start connects to the broker and subscribes to the readings topic.
func (s *Source) Start() error {
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	handler := func(client paho.Client, msg paho.Message) {
		s.handleMessage(msg.Topic(), msg.Payload())
	}
	if token := s.client.Subscribe(s.opts.Topic, s.opts.QoS, handler); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", s.opts.Topic, token.Error())
	}

	s.logger.Info("MQTT ingest source started",
		zap.String("broker", s.opts.Broker),
		zap.String("topic", s.opts.Topic),
	)
	return nil
}

// Stop unsubscribes and disconnects.
func (s *Source) Stop() {
	if s.client.IsConnected() {
		if token := s.client.Unsubscribe(s.opts.Topic); token.Wait() && token.Error() != nil {
			s.logger.Warn("failed to unsubscribe", zap.Error(token.Error()))
		}
		s.client.Disconnect(250)
	}
	s.logger.Info("MQTT ingest source stopped")
}

func (s *Source) handleMessage(topic string, payload []byte) {
	if _, err := s.engine.Ingest(payload); err != nil {
		s.logger.Warn("discarding invalid MQTT reading",
			zap.String("topic", topic),
			zap.Int("payload_size", len(payload)),
			zap.Error(err),
		)
	}
}
