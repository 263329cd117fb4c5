package config

import (
	"fmt"
	"strings"
)

// applyRuntimeValidation applies runtime validations and transformations
func applyRuntimeValidation(cfg *Config) error {
	if err := normalizeModel(&cfg.Consumer); err != nil {
		return err
	}
	return normalizeThreadBounds(&cfg.Consumer)
}

// normalizeModel lowercases the delivery model so env/flag values are
// accepted case-insensitively.
func normalizeModel(cfg *ConsumerConfig) error {
	model := strings.ToLower(strings.TrimSpace(cfg.Model))
	switch model {
	case ModelClustering, ModelBroadcasting:
		cfg.Model = model
		return nil
	default:
		return fmt.Errorf("unknown delivery model %q", cfg.Model)
	}
}

// normalizeThreadBounds clamps the worker minimum to the maximum when the
// two were configured inconsistently.
func normalizeThreadBounds(cfg *ConsumerConfig) error {
	if cfg.ConsumeThreadMin > cfg.ConsumeThreadMax {
		cfg.ConsumeThreadMin = cfg.ConsumeThreadMax
	}
	return nil
}
