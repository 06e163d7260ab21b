package alert

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRulesOrder(t *testing.T) {
	rules := Rules(DefaultThresholds())

	want := []State{TempHigh, TempLow, HumidHigh, HumidLow, LightLow}
	got := make([]State, len(rules))
	for i, r := range rules {
		got[i] = r.State
	}
	assert.Equal(t, want, got)
}

func TestRuleMatches(t *testing.T) {
	high := Rule{Signal: Humidity, Comparison: AtLeast, Threshold: 80, State: HumidHigh}

	assert.True(t, high.Matches(Reading{Humidity: 80}))
	assert.False(t, high.Matches(Reading{Humidity: 79.9}))
	assert.False(t, high.Matches(Reading{Humidity: math.NaN()}))
}

func TestRuleString(t *testing.T) {
	r := Rule{Signal: Light, Comparison: AtMost, Threshold: 500, State: LightLow}
	assert.Equal(t, "light <= 500 -> light_low", r.String())
}

func TestClassifierRulesIsCopy(t *testing.T) {
	c := NewClassifier(nil, DefaultThresholds())
	rules := c.Rules()
	rules[0].Threshold = -100

	assert.Equal(t, Normal, c.Evaluate(22, 50, 1000))
}
