package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/amalnian/Book-Management"
)

func TestIsWithinThresholdPeriod(t *testing.T) {
	t.Run("recent time is within the window", func(t *testing.T) {
		within, err := auth.IsWithinThresholdPeriod(time.Now().Add(-time.Hour), "24h")
		require.NoError(t, err)
		assert.True(t, within)
	})

	t.Run("old time is outside the window", func(t *testing.T) {
		within, err := auth.IsWithinThresholdPeriod(time.Now().Add(-25*time.Hour), "24h")
		require.NoError(t, err)
		assert.False(t, within)
	})

	t.Run("invalid period errors", func(t *testing.T) {
		_, err := auth.IsWithinThresholdPeriod(time.Now(), "one day")
		assert.Error(t, err)
	})
}

func TestIsOutsideThresholdPeriod(t *testing.T) {
	outside, err := auth.IsOutsideThresholdPeriod(time.Now().Add(-30*time.Minute), "24h")
	require.NoError(t, err)
	assert.False(t, outside)

	outside, err = auth.IsOutsideThresholdPeriod(time.Now().Add(-48*time.Hour), "24h")
	require.NoError(t, err)
	assert.True(t, outside)

	_, err = auth.IsOutsideThresholdPeriod(time.Now(), "soon")
	assert.Error(t, err)
}
