package config

import (
	"flag"
)

// Command line flags (have precedence over environment variables)
var (
	// Consumer flags
	flagConsumerGroup        = flag.String("consumer-group", "", "Consumer group name")
	flagConsumerModel        = flag.String("consumer-model", "", "Delivery model (clustering or broadcasting)")
	flagConsumerThreadMin    = flag.Int("consumer-thread-min", 0, "Minimum consume workers")
	flagConsumerThreadMax    = flag.Int("consumer-thread-max", 0, "Maximum consume workers")
	flagConsumerBatchMaxSize = flag.Int("consumer-batch-max-size", 0, "Max messages per listener invocation")
	flagConsumerRetryDelay   = flag.Duration("consumer-retry-delay", 0, "Delay before resubmitting failed hand-backs")
	flagConsumerSendBackTO   = flag.Duration("consumer-send-back-timeout", 0, "Hand-back publish timeout")

	// Redis flags
	flagRedisAddress      = flag.String("redis-address", "", "Redis address")
	flagRedisKeyPrefix    = flag.String("redis-key-prefix", "", "Offset hash key prefix")
	flagRedisDialTimeout  = flag.Duration("redis-dial-timeout", 0, "Redis dial timeout")
	flagRedisReadTimeout  = flag.Duration("redis-read-timeout", 0, "Redis read timeout")
	flagRedisWriteTimeout = flag.Duration("redis-write-timeout", 0, "Redis write timeout")
	flagRedisPingTimeout  = flag.Duration("redis-ping-timeout", 0, "Redis ping timeout")

	// MQTT flags
	flagMQTTBroker            = flag.String("mqtt-broker", "", "MQTT broker URL")
	flagMQTTClientID          = flag.String("mqtt-client-id", "", "MQTT client ID")
	flagMQTTIngestTopic       = flag.String("mqtt-ingest-topic", "", "MQTT ingest topic")
	flagMQTTSendBackTopic     = flag.String("mqtt-send-back-topic", "", "MQTT hand-back topic")
	flagMQTTQoS               = flag.Int("mqtt-qos", -1, "MQTT QoS (0, 1, or 2)")
	flagMQTTConnectTimeout    = flag.Duration("mqtt-connect-timeout", 0, "MQTT connect timeout")
	flagMQTTWriteTimeout      = flag.Duration("mqtt-write-timeout", 0, "MQTT write timeout")
	flagMQTTPoolSize          = flag.Int("mqtt-pool-size", 0, "MQTT connection pool size")
	flagMQTTMaxReconnect      = flag.Duration("mqtt-max-reconnect-interval", 0, "MQTT max reconnect interval")
	flagMQTTSubscribeTimeout  = flag.Duration("mqtt-subscribe-timeout", 0, "MQTT subscribe timeout")
	flagMQTTDisconnectTimeout = flag.Int("mqtt-disconnect-timeout", 0, "MQTT disconnect timeout (ms)")
	flagMQTTTLSEnabled        = flag.Bool("mqtt-tls-enabled", false, "Enable MQTT TLS")
	flagMQTTCACert            = flag.String("mqtt-ca-cert", "", "MQTT CA certificate path")
	flagMQTTClientCert        = flag.String("mqtt-client-cert", "", "MQTT client certificate path")
	flagMQTTClientKey         = flag.String("mqtt-client-key", "", "MQTT client key path")
	flagMQTTTLSInsecureSkip   = flag.Bool("mqtt-tls-insecure-skip", false, "Skip MQTT TLS verification")

	// Pipeline flags
	flagPipelineBufferCapacity  = flag.Int("pipeline-buffer-capacity", 0, "Pipeline buffer capacity")
	flagPipelineDispatchBatch   = flag.Int("pipeline-dispatch-batch-size", 0, "Max messages grouped per submission")
	flagPipelineFlushInterval   = flag.Duration("pipeline-flush-interval", 0, "Max time a partial batch waits")
	flagPipelinePersistInterval = flag.Duration("pipeline-persist-interval", 0, "Offset flush period")
	flagPipelineShutdownTimeout = flag.Duration("pipeline-shutdown-timeout", 0, "Pipeline shutdown timeout")
)

// applyConsumerFlags applies command line flags to engine configuration
func applyConsumerFlags(cfg *ConsumerConfig) {
	if *flagConsumerGroup != "" {
		cfg.Group = *flagConsumerGroup
	}
	if *flagConsumerModel != "" {
		cfg.Model = *flagConsumerModel
	}
	if *flagConsumerThreadMin != 0 {
		cfg.ConsumeThreadMin = *flagConsumerThreadMin
	}
	if *flagConsumerThreadMax != 0 {
		cfg.ConsumeThreadMax = *flagConsumerThreadMax
	}
	if *flagConsumerBatchMaxSize != 0 {
		cfg.ConsumeBatchMaxSize = *flagConsumerBatchMaxSize
	}
	if *flagConsumerRetryDelay != 0 {
		cfg.RetryDelay = *flagConsumerRetryDelay
	}
	if *flagConsumerSendBackTO != 0 {
		cfg.SendBackTimeout = *flagConsumerSendBackTO
	}
}

// applyRedisFlags applies command line flags to offset store configuration
func applyRedisFlags(cfg *RedisConfig) {
	if *flagRedisAddress != "" {
		cfg.Address = *flagRedisAddress
	}
	if *flagRedisKeyPrefix != "" {
		cfg.KeyPrefix = *flagRedisKeyPrefix
	}
	if *flagRedisDialTimeout != 0 {
		cfg.DialTimeout = *flagRedisDialTimeout
	}
	if *flagRedisReadTimeout != 0 {
		cfg.ReadTimeout = *flagRedisReadTimeout
	}
	if *flagRedisWriteTimeout != 0 {
		cfg.WriteTimeout = *flagRedisWriteTimeout
	}
	if *flagRedisPingTimeout != 0 {
		cfg.PingTimeout = *flagRedisPingTimeout
	}
}

// applyMQTTFlags applies command line flags to MQTT configuration
func applyMQTTFlags(cfg *MQTTConfig) {
	applyMQTTFlagStrings(cfg)
	applyMQTTFlagInts(cfg)
	applyMQTTFlagTimeouts(cfg)
	applyMQTTFlagTLS(cfg)
}

func applyMQTTFlagStrings(cfg *MQTTConfig) {
	if *flagMQTTBroker != "" {
		cfg.Broker = *flagMQTTBroker
	}
	if *flagMQTTClientID != "" {
		cfg.ClientID = *flagMQTTClientID
	}
	if *flagMQTTIngestTopic != "" {
		cfg.IngestTopic = *flagMQTTIngestTopic
	}
	if *flagMQTTSendBackTopic != "" {
		cfg.SendBackTopic = *flagMQTTSendBackTopic
	}
}

func applyMQTTFlagInts(cfg *MQTTConfig) {
	if *flagMQTTQoS != -1 && *flagMQTTQoS >= 0 && *flagMQTTQoS <= 2 {
		cfg.QoS = byte(*flagMQTTQoS) // #nosec G115 - validated range 0-2
	}
	if *flagMQTTPoolSize != 0 {
		cfg.PoolSize = *flagMQTTPoolSize
	}
	if *flagMQTTDisconnectTimeout != 0 {
		cfg.DisconnectTimeout = uint(*flagMQTTDisconnectTimeout) // #nosec G115 - config values are non-negative
	}
}

func applyMQTTFlagTimeouts(cfg *MQTTConfig) {
	if *flagMQTTConnectTimeout != 0 {
		cfg.ConnectTimeout = *flagMQTTConnectTimeout
	}
	if *flagMQTTWriteTimeout != 0 {
		cfg.WriteTimeout = *flagMQTTWriteTimeout
	}
	if *flagMQTTMaxReconnect != 0 {
		cfg.MaxReconnectInterval = *flagMQTTMaxReconnect
	}
	if *flagMQTTSubscribeTimeout != 0 {
		cfg.SubscribeTimeout = *flagMQTTSubscribeTimeout
	}
}

func applyMQTTFlagTLS(cfg *MQTTConfig) {
	if *flagMQTTCACert != "" {
		cfg.CACert = *flagMQTTCACert
	}
	if *flagMQTTClientCert != "" {
		cfg.ClientCert = *flagMQTTClientCert
	}
	if *flagMQTTClientKey != "" {
		cfg.ClientKey = *flagMQTTClientKey
	}
	// Handle bool flags - check if explicitly set
	if isFlagSet("mqtt-tls-enabled") {
		cfg.TLSEnabled = *flagMQTTTLSEnabled
	}
	if isFlagSet("mqtt-tls-insecure-skip") {
		cfg.InsecureSkip = *flagMQTTTLSInsecureSkip
	}
}

// applyPipelineFlags applies command line flags to Pipeline configuration
func applyPipelineFlags(cfg *PipelineConfig) {
	if *flagPipelineBufferCapacity != 0 {
		cfg.BufferCapacity = *flagPipelineBufferCapacity
	}
	if *flagPipelineDispatchBatch != 0 {
		cfg.DispatchBatchSize = *flagPipelineDispatchBatch
	}
	if *flagPipelineFlushInterval != 0 {
		cfg.FlushInterval = *flagPipelineFlushInterval
	}
	if *flagPipelinePersistInterval != 0 {
		cfg.PersistInterval = *flagPipelinePersistInterval
	}
	if *flagPipelineShutdownTimeout != 0 {
		cfg.ShutdownTimeout = *flagPipelineShutdownTimeout
	}
}

// isFlagSet checks if a flag was explicitly set on the command line
func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
