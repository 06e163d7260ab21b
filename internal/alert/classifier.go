// Package alert classifies smoothed readings against ordered threshold rules
// and drives a binary indicator from the result.
package alert

import "math"

// State is the single alert classification of current conditions
type State int

const (
	Normal State = iota
	TempHigh
	TempLow
	HumidHigh
	HumidLow
	LightLow
)

func (s State) String() string {
	switch s {
	case Normal:
		return "normal"
	case TempHigh:
		return "temp_high"
	case TempLow:
		return "temp_low"
	case HumidHigh:
		return "humid_high"
	case HumidLow:
		return "humid_low"
	case LightLow:
		return "light_low"
	default:
		return "unknown"
	}
}

// Indicator is the binary output reflecting alert / no alert (e.g. an LED)
type Indicator interface {
	SetActive(active bool)
}

// Thresholds are the five configurable rule limits
type Thresholds struct {
	TempHigh  float64 // Celsius
	TempLow   float64 // Celsius
	HumidHigh float64 // Percentage
	HumidLow  float64 // Percentage
	LightLow  int     // Raw ADC counts
}

// DefaultThresholds returns the factory thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		TempHigh:  30,
		TempLow:   15,
		HumidHigh: 80,
		HumidLow:  30,
		LightLow:  500,
	}
}

// Classifier evaluates rules in precedence order. It keeps only the most
// recent state and is owned by a single caller; it is not safe for concurrent use.
type Classifier struct {
	rules     []Rule
	indicator Indicator
	state     State
}

// NewClassifier creates a classifier in the Normal state. A nil indicator is allowed.
func NewClassifier(indicator Indicator, t Thresholds) *Classifier {
	return &Classifier{
		rules:     Rules(t),
		indicator: indicator,
		state:     Normal,
	}
}

// Evaluate derives the state from scratch: the first matching rule wins,
// otherwise Normal. A NaN temperature or humidity never matches its rules.
// The indicator is driven on every call, not only when the state changes.
func (c *Classifier) Evaluate(temperature, humidity float64, light int) State {
	r := Reading{Temperature: temperature, Humidity: humidity, Light: light}

	c.state = Normal
	for _, rule := range c.rules {
		if rule.Matches(r) {
			c.state = rule.State
			break
		}
	}

	if c.indicator != nil {
		c.indicator.SetActive(c.state != Normal)
	}
	return c.state
}

// State returns the most recently computed state
func (c *Classifier) State() State {
	return c.state
}

// Rules returns a copy of the rule list in evaluation order
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Reading is one set of inputs to the classifier
type Reading struct {
	Temperature float64
	Humidity    float64
	Light       int
}

func (r Reading) value(s Signal) float64 {
	switch s {
	case Temperature:
		return r.Temperature
	case Humidity:
		return r.Humidity
	case Light:
		return float64(r.Light)
	}
	return math.NaN()
}
