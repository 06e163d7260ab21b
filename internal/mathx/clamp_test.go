package mathx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-5, 0, 4095))
	assert.Equal(t, 4095, Clamp(9000, 0, 4095))
	assert.Equal(t, 1200, Clamp(1200, 0, 4095))
	assert.Equal(t, 10, Clamp(50, 10, 0))
	assert.Equal(t, 2.5, Clamp(2.5, 0.0, 3.0))
}
