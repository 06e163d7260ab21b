// Package display renders smoothed readings locally.
package display

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
)

// Display shows the latest readings or a status line. Clear is called
// before each frame.
type Display interface {
	Clear()
	ShowReadings(temperature, humidity float64, light int)
	ShowStatus(status string)
}

// Text renders the three-line readings screen to a writer (a terminal,
// a serial console or a character LCD device file).
type Text struct {
	mu sync.Mutex
	w  io.Writer
}

// NewText creates a text display on w
func NewText(w io.Writer) *Text {
	return &Text{w: w}
}

// ShowReadings draws temperature, humidity and light. Missing values show as "--".
func (d *Text) ShowReadings(temperature, humidity float64, light int) {
	var b strings.Builder
	b.WriteString("Temp: ")
	if math.IsNaN(temperature) {
		b.WriteString("--\n")
	} else {
		fmt.Fprintf(&b, "%.1f C\n", temperature)
	}
	b.WriteString("Hum: ")
	if math.IsNaN(humidity) {
		b.WriteString("--\n")
	} else {
		fmt.Fprintf(&b, "%.1f %%\n", humidity)
	}
	fmt.Fprintf(&b, "Light: %d\n", light)
	d.write(b.String())
}

// ShowStatus replaces the screen with a single status line
func (d *Text) ShowStatus(status string) {
	d.write(status + "\n")
}

// Clear emits a form feed so terminals start a new frame
func (d *Text) Clear() {
	d.write("\f")
}

func (d *Text) write(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	// Display output is best effort, a stalled console must not stop the loop
	_, _ = io.WriteString(d.w, s)
}

// Nop discards everything, for headless nodes
type Nop struct{}

func (Nop) Clear()                              {}
func (Nop) ShowReadings(float64, float64, int) {}
func (Nop) ShowStatus(string)                  {}
