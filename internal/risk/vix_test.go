package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tarra732/fusionfx-forever/internal/logger"
)

func newTestVixResolver(t *testing.T) *VixPenaltyResolver {
	t.Helper()
	r, err := NewVixPenaltyResolver(DefaultVixPenaltyCurve(), logger.NewNop())
	require.NoError(t, err)
	return r
}

// TestVixPenalty_SingleTier verifies exactly one tier applies: the rule
// with the largest threshold at or below the reading.
func TestVixPenalty_SingleTier(t *testing.T) {
	r := newTestVixResolver(t)

	tests := []struct {
		name string
		vix  float64
		want float64
	}{
		{"below all thresholds", 18, 1.0},
		{"exactly first threshold", 20, 1.0},
		{"mid range", 22, 1.0},
		{"elevated", 27, 0.8},
		{"crisis onset", 32, 0.6},
		{"exactly on boundary", 30, 0.6},
		{"severe", 45, 0.3},
		{"panic", 55, 0.1},
		{"negative reading", -5, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Multiplier(tt.vix))
		})
	}
}

// TestVixPenalty_Apply discounts the risk amount by the resolved
// multiplier without compounding tiers.
func TestVixPenalty_Apply(t *testing.T) {
	r := newTestVixResolver(t)

	assert.InDelta(t, 120.0, r.Apply(200, 32), 1e-9)
	assert.InDelta(t, 200.0, r.Apply(200, 18), 1e-9)
}

// TestValidateVixCurve rejects malformed curves at construction time.
func TestValidateVixCurve(t *testing.T) {
	tests := []struct {
		name    string
		curve   []VixPenaltyRule
		wantErr bool
	}{
		{"default curve", DefaultVixPenaltyCurve(), false},
		{"empty curve", nil, true},
		{"zero multiplier", []VixPenaltyRule{{Threshold: 20, Multiplier: 0}}, true},
		{"multiplier above one", []VixPenaltyRule{{Threshold: 20, Multiplier: 1.5}}, true},
		{"negative threshold", []VixPenaltyRule{{Threshold: -1, Multiplier: 0.5}}, true},
		{
			"thresholds not increasing",
			[]VixPenaltyRule{{Threshold: 30, Multiplier: 0.8}, {Threshold: 25, Multiplier: 0.6}},
			true,
		},
		{
			"multiplier increases with threshold",
			[]VixPenaltyRule{{Threshold: 20, Multiplier: 0.5}, {Threshold: 30, Multiplier: 0.8}},
			true,
		},
		{
			"single rule",
			[]VixPenaltyRule{{Threshold: 25, Multiplier: 0.7}},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVixCurve(tt.curve)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestVixPenalty_CustomCurveFallsBackBelowLowestThreshold keeps full
// size below a curve that starts above zero.
func TestVixPenalty_CustomCurveFallsBackBelowLowestThreshold(t *testing.T) {
	r, err := NewVixPenaltyResolver([]VixPenaltyRule{
		{Threshold: 35, Multiplier: 0.5},
	}, logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 1.0, r.Multiplier(34.9))
	assert.Equal(t, 0.5, r.Multiplier(35))
}
