package config

import "testing"

func TestNormalizeModel(t *testing.T) {
	tests := []struct {
		name    string
		model   string
		want    string
		wantErr bool
	}{
		{name: "clustering", model: "clustering", want: ModelClustering},
		{name: "broadcasting", model: "broadcasting", want: ModelBroadcasting},
		{name: "mixed case", model: "Clustering", want: ModelClustering},
		{name: "padded", model: "  broadcasting ", want: ModelBroadcasting},
		{name: "unknown", model: "roundrobin", wantErr: true},
		{name: "empty", model: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ConsumerConfig{Model: tt.model}
			err := normalizeModel(&cfg)
			if tt.wantErr {
				if err == nil {
					t.Errorf("normalizeModel(%q) expected error, got nil", tt.model)
				}
				return
			}
			if err != nil {
				t.Fatalf("normalizeModel(%q) unexpected error: %v", tt.model, err)
			}
			if cfg.Model != tt.want {
				t.Errorf("normalizeModel(%q) = %q; want %q", tt.model, cfg.Model, tt.want)
			}
		})
	}
}

func TestNormalizeThreadBounds(t *testing.T) {
	cfg := ConsumerConfig{ConsumeThreadMin: 32, ConsumeThreadMax: 8}
	if err := normalizeThreadBounds(&cfg); err != nil {
		t.Fatalf("normalizeThreadBounds() unexpected error: %v", err)
	}
	if cfg.ConsumeThreadMin != 8 {
		t.Errorf("ConsumeThreadMin = %d; want 8 (clamped to max)", cfg.ConsumeThreadMin)
	}
}

func TestApplyRuntimeValidation(t *testing.T) {
	cfg := defaultConfig()
	cfg.Consumer.Model = "BROADCASTING"
	cfg.Consumer.ConsumeThreadMin = 100

	if err := applyRuntimeValidation(cfg); err != nil {
		t.Fatalf("applyRuntimeValidation() unexpected error: %v", err)
	}
	if cfg.Consumer.Model != ModelBroadcasting {
		t.Errorf("Model = %q; want %q", cfg.Consumer.Model, ModelBroadcasting)
	}
	if cfg.Consumer.ConsumeThreadMin != cfg.Consumer.ConsumeThreadMax {
		t.Errorf("ConsumeThreadMin = %d; want %d", cfg.Consumer.ConsumeThreadMin, cfg.Consumer.ConsumeThreadMax)
	}
}
