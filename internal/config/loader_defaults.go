package config

import "time"

// defaultConsumerConfig returns the default engine configuration
func defaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Group:               "default-consumer-group",
		Model:               ModelClustering,
		ConsumeThreadMin:    20,
		ConsumeThreadMax:    64,
		ConsumeBatchMaxSize: 1,
		RetryDelay:          5 * time.Second,
		SendBackTimeout:     5 * time.Second,
	}
}

// defaultRedisConfig returns the default offset store configuration
func defaultRedisConfig() RedisConfig {
	return RedisConfig{
		Address:      "localhost:6379",
		KeyPrefix:    "mq:offsets:",
		DialTimeout:  10 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Second,
		PingTimeout:  5 * time.Second,
	}
}

// defaultMQTTConfig returns the default MQTT configuration
func defaultMQTTConfig() MQTTConfig {
	return MQTTConfig{
		Broker:               "tcp://localhost:1883",
		ClientID:             "mq-consumer",
		IngestTopic:          "mq/messages/ingest",
		SendBackTopic:        "mq/messages/sendback",
		QoS:                  1,
		ConnectTimeout:       10 * time.Second,
		WriteTimeout:         30 * time.Second,
		PoolSize:             4,
		MaxReconnectInterval: 10 * time.Second,
		SubscribeTimeout:     10 * time.Second,
		DisconnectTimeout:    1000,
		TLSEnabled:           false,
		CACert:               "",
		ClientCert:           "",
		ClientKey:            "",
		InsecureSkip:         false,
	}
}

// defaultPipelineConfig returns the default pipeline configuration
func defaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		BufferCapacity:    10000,
		DispatchBatchSize: 32,
		FlushInterval:     100 * time.Millisecond,
		PersistInterval:   5 * time.Second,
		ShutdownTimeout:   30 * time.Second,
	}
}

// defaultConfig returns a complete configuration with all default values
func defaultConfig() *Config {
	return &Config{
		Consumer: defaultConsumerConfig(),
		Redis:    defaultRedisConfig(),
		MQTT:     defaultMQTTConfig(),
		Pipeline: defaultPipelineConfig(),
	}
}
