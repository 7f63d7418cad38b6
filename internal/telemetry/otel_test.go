package telemetry_test

import (
	"context"
	"testing"

	"github.com/ellavondegurechaff/gohye-trades/internal/telemetry"
)

func TestSetup_NoopWhenDisabled(t *testing.T) {
	cfg := telemetry.DefaultConfig()
	cfg.Endpoint = "http://localhost:4318"

	shutdown, err := telemetry.Setup(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_CreatesProviderWhenEnabled(t *testing.T) {
	cfg := telemetry.DefaultConfig()
	cfg.Enabled = true
	// Use a non-routable address so no actual export happens.
	cfg.Endpoint = "http://192.0.2.1:4318"

	shutdown, err := telemetry.Setup(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     telemetry.Config
		wantErr bool
	}{
		{name: "Default", cfg: telemetry.DefaultConfig()},
		{name: "Enabled without endpoint", cfg: telemetry.Config{Enabled: true, SampleRatio: 1}, wantErr: true},
		{name: "Ratio out of range", cfg: telemetry.Config{SampleRatio: 2}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
