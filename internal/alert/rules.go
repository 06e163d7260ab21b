package alert

import (
	"fmt"
	"math"
)

// Signal names a classifier input
type Signal int

const (
	Temperature Signal = iota
	Humidity
	Light
)

func (s Signal) String() string {
	switch s {
	case Temperature:
		return "temperature"
	case Humidity:
		return "humidity"
	case Light:
		return "light"
	}
	return "unknown"
}

// Comparison is how a signal is tested against its threshold. Both are inclusive.
type Comparison int

const (
	AtLeast Comparison = iota // value >= threshold
	AtMost                    // value <= threshold
)

// Rule maps one signal/threshold test to the state it raises
type Rule struct {
	Signal     Signal
	Comparison Comparison
	Threshold  float64
	State      State
}

// Matches reports whether the rule fires for r. Missing (NaN) values never match.
func (rule Rule) Matches(r Reading) bool {
	v := r.value(rule.Signal)
	if math.IsNaN(v) {
		return false
	}
	switch rule.Comparison {
	case AtLeast:
		return v >= rule.Threshold
	case AtMost:
		return v <= rule.Threshold
	}
	return false
}

func (rule Rule) String() string {
	op := ">="
	if rule.Comparison == AtMost {
		op = "<="
	}
	return fmt.Sprintf("%s %s %g -> %s", rule.Signal, op, rule.Threshold, rule.State)
}

// Rules builds the five rules in precedence order: temperature before
// humidity before light, high before low.
func Rules(t Thresholds) []Rule {
	return []Rule{
		{Signal: Temperature, Comparison: AtLeast, Threshold: t.TempHigh, State: TempHigh},
		{Signal: Temperature, Comparison: AtMost, Threshold: t.TempLow, State: TempLow},
		{Signal: Humidity, Comparison: AtLeast, Threshold: t.HumidHigh, State: HumidHigh},
		{Signal: Humidity, Comparison: AtMost, Threshold: t.HumidLow, State: HumidLow},
		{Signal: Light, Comparison: AtMost, Threshold: float64(t.LightLow), State: LightLow},
	}
}
