package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ProviderGemini, cfg.Provider)
	for _, tier := range []ModelTier{TierLite, TierStandard, TierAdvanced} {
		assert.NotEmpty(t, cfg.GetModel(tier), tier)
	}
	assert.NotEqual(t, cfg.GetModel(TierLite), cfg.GetModel(TierAdvanced))
	// JSON answers are parsed, so they run colder than document prose
	assert.Less(t, cfg.JSONTemperature, cfg.Temperature)
	assert.Empty(t, cfg.SystemInstruction)
}

func TestGetModel(t *testing.T) {
	tests := []struct {
		name   string
		models map[ModelTier]string
		tier   ModelTier
		want   string
	}{
		{"exact tier", map[ModelTier]string{TierAdvanced: "pro", TierStandard: "flash"}, TierAdvanced, "pro"},
		{"empty tier uses standard", map[ModelTier]string{TierAdvanced: "", TierStandard: "flash"}, TierAdvanced, "flash"},
		{"then lite", map[ModelTier]string{TierLite: "lite"}, TierAdvanced, "lite"},
		{"unknown tier", map[ModelTier]string{TierStandard: "flash"}, "premium", "flash"},
		{"nothing configured", map[ModelTier]string{}, TierLite, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Models: tt.models}
			assert.Equal(t, tt.want, cfg.GetModel(tt.tier))
		})
	}
}

func TestWithModel_DoesNotShareMap(t *testing.T) {
	base := DefaultConfig()
	before := base.GetModel(TierAdvanced)

	custom := base.WithModel(TierAdvanced, "analysis-model")

	assert.Equal(t, "analysis-model", custom.GetModel(TierAdvanced))
	assert.Equal(t, before, base.GetModel(TierAdvanced))
	assert.Equal(t, base.GetModel(TierLite), custom.GetModel(TierLite))
}
