package config

import (
	"testing"
	"time"
)

func TestLoadConsumerFromEnv(t *testing.T) {
	// Start with defaults
	cfg := defaultConsumerConfig()

	// Set environment variables
	t.Setenv("CONSUMER_GROUP", "orders-group")
	t.Setenv("CONSUMER_MODEL", "broadcasting")
	t.Setenv("CONSUMER_THREAD_MIN", "4")
	t.Setenv("CONSUMER_THREAD_MAX", "16")
	t.Setenv("CONSUMER_BATCH_MAX_SIZE", "8")
	t.Setenv("CONSUMER_RETRY_DELAY", "10s")
	t.Setenv("CONSUMER_SEND_BACK_TIMEOUT", "3s")

	// Load from environment
	loadConsumerFromEnv(&cfg)

	// Verify
	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Group", cfg.Group, "orders-group"},
		{"Model", cfg.Model, "broadcasting"},
		{"ConsumeThreadMin", cfg.ConsumeThreadMin, 4},
		{"ConsumeThreadMax", cfg.ConsumeThreadMax, 16},
		{"ConsumeBatchMaxSize", cfg.ConsumeBatchMaxSize, 8},
		{"RetryDelay", cfg.RetryDelay, 10 * time.Second},
		{"SendBackTimeout", cfg.SendBackTimeout, 3 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("loadConsumerFromEnv() %s = %v; want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoadRedisFromEnv(t *testing.T) {
	cfg := defaultRedisConfig()

	t.Setenv("REDIS_ADDRESS", "redis-test:6379")
	t.Setenv("REDIS_KEY_PREFIX", "test:offsets:")
	t.Setenv("REDIS_DIAL_TIMEOUT", "5s")
	t.Setenv("REDIS_READ_TIMEOUT", "7s")
	t.Setenv("REDIS_WRITE_TIMEOUT", "3s")
	t.Setenv("REDIS_PING_TIMEOUT", "2s")

	loadRedisFromEnv(&cfg)

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Address", cfg.Address, "redis-test:6379"},
		{"KeyPrefix", cfg.KeyPrefix, "test:offsets:"},
		{"DialTimeout", cfg.DialTimeout, 5 * time.Second},
		{"ReadTimeout", cfg.ReadTimeout, 7 * time.Second},
		{"WriteTimeout", cfg.WriteTimeout, 3 * time.Second},
		{"PingTimeout", cfg.PingTimeout, 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("loadRedisFromEnv() %s = %v; want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoadMQTTFromEnv(t *testing.T) {
	cfg := defaultMQTTConfig()

	t.Setenv("MQTT_BROKER", "tcp://mqtt-test:1883")
	t.Setenv("MQTT_CLIENT_ID", "test-client")
	t.Setenv("MQTT_INGEST_TOPIC", "test/ingest")
	t.Setenv("MQTT_SEND_BACK_TOPIC", "test/sendback")
	t.Setenv("MQTT_QOS", "2")
	t.Setenv("MQTT_CONNECT_TIMEOUT", "5s")
	t.Setenv("MQTT_WRITE_TIMEOUT", "20s")
	t.Setenv("MQTT_POOL_SIZE", "3")
	t.Setenv("MQTT_MAX_RECONNECT_INTERVAL", "5s")
	t.Setenv("MQTT_SUBSCRIBE_TIMEOUT", "5s")
	t.Setenv("MQTT_DISCONNECT_TIMEOUT", "500")
	t.Setenv("MQTT_CA_CERT", "/path/ca.crt")
	t.Setenv("MQTT_CLIENT_CERT", "/path/client.crt")
	t.Setenv("MQTT_CLIENT_KEY", "/path/client.key")
	t.Setenv("MQTT_TLS_ENABLED", "true")
	t.Setenv("MQTT_TLS_INSECURE_SKIP", "true")

	loadMQTTFromEnv(&cfg)

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Broker", cfg.Broker, "tcp://mqtt-test:1883"},
		{"ClientID", cfg.ClientID, "test-client"},
		{"IngestTopic", cfg.IngestTopic, "test/ingest"},
		{"SendBackTopic", cfg.SendBackTopic, "test/sendback"},
		{"QoS", cfg.QoS, byte(2)},
		{"ConnectTimeout", cfg.ConnectTimeout, 5 * time.Second},
		{"WriteTimeout", cfg.WriteTimeout, 20 * time.Second},
		{"PoolSize", cfg.PoolSize, 3},
		{"MaxReconnectInterval", cfg.MaxReconnectInterval, 5 * time.Second},
		{"SubscribeTimeout", cfg.SubscribeTimeout, 5 * time.Second},
		{"DisconnectTimeout", cfg.DisconnectTimeout, uint(500)},
		{"CACert", cfg.CACert, "/path/ca.crt"},
		{"ClientCert", cfg.ClientCert, "/path/client.crt"},
		{"ClientKey", cfg.ClientKey, "/path/client.key"},
		{"TLSEnabled", cfg.TLSEnabled, true},
		{"InsecureSkip", cfg.InsecureSkip, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("loadMQTTFromEnv() %s = %v; want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoadPipelineFromEnv(t *testing.T) {
	cfg := defaultPipelineConfig()

	t.Setenv("PIPELINE_BUFFER_CAPACITY", "500")
	t.Setenv("PIPELINE_DISPATCH_BATCH_SIZE", "16")
	t.Setenv("PIPELINE_FLUSH_INTERVAL", "50ms")
	t.Setenv("PIPELINE_PERSIST_INTERVAL", "2s")
	t.Setenv("PIPELINE_SHUTDOWN_TIMEOUT", "10s")

	loadPipelineFromEnv(&cfg)

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"BufferCapacity", cfg.BufferCapacity, 500},
		{"DispatchBatchSize", cfg.DispatchBatchSize, 16},
		{"FlushInterval", cfg.FlushInterval, 50 * time.Millisecond},
		{"PersistInterval", cfg.PersistInterval, 2 * time.Second},
		{"ShutdownTimeout", cfg.ShutdownTimeout, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("loadPipelineFromEnv() %s = %v; want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestGetEnvInt_Invalid(t *testing.T) {
	t.Setenv("TEST_INT", "not-a-number")
	if v := getEnvInt("TEST_INT"); v != 0 {
		t.Errorf("getEnvInt() = %v; want 0 for invalid value", v)
	}
}

func TestGetEnvDuration_Invalid(t *testing.T) {
	t.Setenv("TEST_DURATION", "abc")
	if v := getEnvDuration("TEST_DURATION"); v != 0 {
		t.Errorf("getEnvDuration() = %v; want 0 for invalid value", v)
	}
}
