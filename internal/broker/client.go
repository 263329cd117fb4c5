package broker

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/quarkmq/consumer/internal/config"
	"github.com/quarkmq/consumer/internal/log"
	"github.com/quarkmq/consumer/internal/message"
	"github.com/quarkmq/consumer/pkg/wire"
)

// Client is one MQTT connection to the broker. SendBack publishes failed
// messages onto the per-broker hand-back topic; Subscribe feeds decoded
// ingest messages to the pipeline.
type Client struct {
	client            mqtt.Client
	sendBackTopic     string
	ingestTopic       string
	qos               byte
	writeTimeout      time.Duration
	subscribeTimeout  time.Duration
	disconnectTimeout uint
	handler           MessageHandler
	mu                sync.RWMutex
	log               *log.Logger
}

// NewClient creates a connected MQTT client.
func NewClient(cfg *config.MQTTConfig, logger *log.Logger) (*Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetConnectTimeout(cfg.ConnectTimeout)
	opts.SetWriteTimeout(cfg.WriteTimeout)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(cfg.MaxReconnectInterval)

	// Performance settings for high throughput
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetMessageChannelDepth(10000)
	opts.SetResumeSubs(true)
	// Ordering across the wire is irrelevant here: the engine is the
	// concurrent consumption mode and reorders batches anyway.
	opts.SetOrderMatters(false)
	opts.SetMaxResumePubInFlight(1000)

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		if err != nil {
			logger.Error("MQTT connection lost: %v", err)
		}
	})

	opts.SetReconnectingHandler(func(_ mqtt.Client, _ *mqtt.ClientOptions) {
		logger.Info("MQTT reconnecting...")
	})

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info("MQTT connected successfully")
	})

	// Configure TLS if enabled
	if cfg.TLSEnabled {
		tlsConfig, err := newTLSConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
		opts.SetTLSConfig(tlsConfig)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		return nil, fmt.Errorf("mqtt connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT: %w", err)
	}

	return &Client{
		client:            client,
		sendBackTopic:     cfg.SendBackTopic,
		ingestTopic:       cfg.IngestTopic,
		qos:               cfg.QoS,
		writeTimeout:      cfg.WriteTimeout,
		subscribeTimeout:  cfg.SubscribeTimeout,
		disconnectTimeout: cfg.DisconnectTimeout,
		log:               logger,
	}, nil
}

// newTLSConfig creates a TLS configuration from MQTT config
func newTLSConfig(cfg *config.MQTTConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		// Note: Enabling InsecureSkipVerify weakens TLS security and should only be used for testing.
		InsecureSkipVerify: cfg.InsecureSkip, // #nosec G402 - configurable for testing environments
		MinVersion:         tls.VersionTLS12,
	}

	// Load CA certificate if provided
	if cfg.CACert != "" {
		caCert, err := os.ReadFile(cfg.CACert)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}

		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA cert")
		}
		tlsConfig.RootCAs = caCertPool
	}

	// Load client certificate and key if provided
	if cfg.ClientCert != "" && cfg.ClientKey != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert/key: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// SendBack publishes one failed message to the broker's hand-back topic
// so the broker can schedule redelivery at the requested delay level.
func (c *Client) SendBack(ctx context.Context, msg *message.Message, delayLevel int, brokerName string) error {
	payload := wire.Encode(toEnvelope(msg, delayLevel))
	topic := c.sendBackTopic + "/" + brokerName

	token := c.client.Publish(topic, c.qos, false, payload)

	// Wait for publish with timeout
	done := make(chan struct{})
	go func() {
		token.Wait()
		close(done)
	}()

	select {
	case <-done:
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt publish failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.writeTimeout):
		return fmt.Errorf("mqtt publish timeout")
	}
}

// Subscribe registers the handler and subscribes to the ingest topic.
func (c *Client) Subscribe(handler MessageHandler) error {
	c.mu.Lock()
	c.handler = handler
	c.mu.Unlock()

	token := c.client.Subscribe(c.ingestTopic, c.qos, func(_ mqtt.Client, m mqtt.Message) {
		c.handleIngest(m.Payload())
	})

	if !token.WaitTimeout(c.subscribeTimeout) {
		return fmt.Errorf("mqtt ingest subscription timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to subscribe to ingest topic: %w", err)
	}

	return nil
}

// handleIngest decodes and dispatches one ingest payload.
func (c *Client) handleIngest(payload []byte) {
	c.mu.RLock()
	handler := c.handler
	c.mu.RUnlock()

	if handler == nil {
		return
	}

	env, err := wire.Decode(payload)
	if err != nil {
		c.log.Debug("dropping malformed ingest payload: %v", err)
		return
	}

	handler(toMessage(env))
}

// Close disconnects from the MQTT broker
func (c *Client) Close() error {
	if c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(c.disconnectTimeout)
	}
	return nil
}
