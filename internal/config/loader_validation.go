package config

import "fmt"

// Validate checks configuration constraints
func Validate(cfg *Config) error {
	if err := validateConsumer(&cfg.Consumer); err != nil {
		return err
	}
	if err := validateRedis(&cfg.Redis); err != nil {
		return err
	}
	if err := validateMQTT(&cfg.MQTT); err != nil {
		return err
	}
	return validatePipeline(&cfg.Pipeline)
}

// validateConsumer validates engine configuration
func validateConsumer(cfg *ConsumerConfig) error {
	if cfg.Group == "" {
		return fmt.Errorf("consumer group cannot be empty")
	}
	if cfg.Model != ModelClustering && cfg.Model != ModelBroadcasting {
		return fmt.Errorf("consumer model must be %q or %q", ModelClustering, ModelBroadcasting)
	}
	if cfg.ConsumeThreadMin < 1 {
		return fmt.Errorf("consumer thread min must be positive")
	}
	if cfg.ConsumeThreadMax < cfg.ConsumeThreadMin {
		return fmt.Errorf("consumer thread max must be >= thread min")
	}
	if cfg.ConsumeBatchMaxSize < 1 {
		return fmt.Errorf("consumer batch max size must be positive")
	}
	if cfg.RetryDelay <= 0 {
		return fmt.Errorf("consumer retry delay must be positive")
	}
	return nil
}

// validateRedis validates offset store configuration
func validateRedis(cfg *RedisConfig) error {
	if cfg.Address == "" {
		return fmt.Errorf("redis address cannot be empty")
	}
	if cfg.KeyPrefix == "" {
		return fmt.Errorf("redis key prefix cannot be empty")
	}
	return nil
}

// validateMQTT validates MQTT configuration
func validateMQTT(cfg *MQTTConfig) error {
	if cfg.Broker == "" {
		return fmt.Errorf("mqtt broker cannot be empty")
	}
	if cfg.ClientID == "" {
		return fmt.Errorf("mqtt client ID cannot be empty")
	}
	if cfg.PoolSize < 1 {
		return fmt.Errorf("mqtt pool size must be positive")
	}
	if cfg.IngestTopic == "" {
		return fmt.Errorf("mqtt ingest topic cannot be empty")
	}
	if cfg.SendBackTopic == "" {
		return fmt.Errorf("mqtt send-back topic cannot be empty")
	}
	return nil
}

// validatePipeline validates Pipeline configuration
func validatePipeline(cfg *PipelineConfig) error {
	if cfg.BufferCapacity < 1 {
		return fmt.Errorf("pipeline buffer capacity must be positive")
	}
	if cfg.DispatchBatchSize < 1 {
		return fmt.Errorf("pipeline dispatch batch size must be positive")
	}
	if cfg.FlushInterval <= 0 {
		return fmt.Errorf("pipeline flush interval must be positive")
	}
	if cfg.PersistInterval <= 0 {
		return fmt.Errorf("pipeline persist interval must be positive")
	}
	return nil
}
