package price

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFloat(t *testing.T) {
	assert.Equal(t, Ticks(10050), FromFloat(100.50))
	assert.Equal(t, Ticks(0), FromFloat(0))
	assert.Equal(t, Ticks(1), FromFloat(0.005)) // rounds to nearest hundredth
}

func TestParseFloat(t *testing.T) {
	t.Run("well-formed two-decimal price", func(t *testing.T) {
		ticks, err := ParseFloat("100.50")
		require.NoError(t, err)
		assert.Equal(t, Ticks(10050), ticks)
	})

	t.Run("integer price", func(t *testing.T) {
		ticks, err := ParseFloat("5")
		require.NoError(t, err)
		assert.Equal(t, Ticks(500), ticks)
	})

	t.Run("malformed price", func(t *testing.T) {
		_, err := ParseFloat("not-a-number")
		assert.Error(t, err)
	})
}

func TestTicksString(t *testing.T) {
	t.Run("zero price renders blank", func(t *testing.T) {
		assert.Equal(t, "", Ticks(0).String())
	})

	t.Run("fixed two-decimal formatting", func(t *testing.T) {
		assert.Equal(t, "100.50", Ticks(10050).String())
		assert.Equal(t, "0.01", Ticks(1).String())
	})
}

func TestTicksFloat64RoundTrip(t *testing.T) {
	ticks := FromFloat(100.75)
	assert.Equal(t, 100.75, ticks.Float64())
}
