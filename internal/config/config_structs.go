// Package config provides configuration loading and validation from
// environment variables and command line flags.
package config

import "time"

// Delivery model names accepted in ConsumerConfig.Model.
const (
	ModelClustering   = "clustering"
	ModelBroadcasting = "broadcasting"
)

// Config holds the complete configuration
type Config struct {
	Consumer ConsumerConfig
	Redis    RedisConfig
	MQTT     MQTTConfig
	Pipeline PipelineConfig
}

// ConsumerConfig holds the consumption engine settings
type ConsumerConfig struct {
	Group               string
	Model               string // clustering or broadcasting
	ConsumeThreadMin    int
	ConsumeThreadMax    int
	ConsumeBatchMaxSize int
	RetryDelay          time.Duration // delay before resubmitting failed hand-backs
	SendBackTimeout     time.Duration
}

// RedisConfig holds the offset store backend configuration
type RedisConfig struct {
	Address      string
	KeyPrefix    string // offset hash key prefix, group name is appended
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PingTimeout  time.Duration
}

// MQTTConfig holds the broker transport configuration
type MQTTConfig struct {
	Broker               string
	ClientID             string
	IngestTopic          string
	SendBackTopic        string // broker name is appended per publish
	QoS                  byte
	ConnectTimeout       time.Duration
	WriteTimeout         time.Duration
	PoolSize             int // Number of connections for high throughput
	MaxReconnectInterval time.Duration
	SubscribeTimeout     time.Duration
	DisconnectTimeout    uint // Milliseconds for graceful disconnect
	// TLS Configuration
	TLSEnabled   bool
	CACert       string
	ClientCert   string
	ClientKey    string
	InsecureSkip bool
}

// PipelineConfig holds pipeline orchestration settings
type PipelineConfig struct {
	BufferCapacity    int
	DispatchBatchSize int           // max messages grouped into one submission
	FlushInterval     time.Duration // max time a partial batch waits
	PersistInterval   time.Duration // offset flush period
	ShutdownTimeout   time.Duration
}
