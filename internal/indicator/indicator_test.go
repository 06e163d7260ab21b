package indicator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lisandre-begon/Smart-Environment/internal/alert"
)

var (
	_ alert.Indicator = (*SysfsLED)(nil)
	_ alert.Indicator = (*Log)(nil)
)

func TestSysfsLEDWritesBrightness(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brightness")
	led := NewSysfsLED(path, nil)

	led.SetActive(true)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1", string(data))

	led.SetActive(false)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0", string(data))
}

func TestSysfsLEDMissingPathDoesNotPanic(t *testing.T) {
	led := NewSysfsLED(filepath.Join(t.TempDir(), "missing", "brightness"), nil)
	assert.NotPanics(t, func() { led.SetActive(true) })
}

func TestClassifierDrivesLED(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brightness")
	c := alert.NewClassifier(NewSysfsLED(path, nil), alert.DefaultThresholds())

	c.Evaluate(35, 50, 1000)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1", string(data))
}
