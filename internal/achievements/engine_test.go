package achievements

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_Thresholds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		count  int
		earned []bool
	}{
		{0, []bool{false, false, false}},
		{1, []bool{true, false, false}},
		{9, []bool{true, false, false}},
		{10, []bool{true, true, false}},
		{49, []bool{true, true, false}},
		{50, []bool{true, true, true}},
		{1000, []bool{true, true, true}},
	}

	for _, tt := range tests {
		badges := Evaluate(tt.count)
		require.Len(t, badges, 3)
		for i, badge := range badges {
			assert.Equal(t, tt.earned[i], badge.Earned,
				"count=%d badge=%s", tt.count, badge.Title)
			assert.Equal(t, badge.Earned, tt.count >= badge.Threshold)
		}
	}
}

func TestEvaluate_AscendingThresholdOrder(t *testing.T) {
	t.Parallel()

	badges := Evaluate(0)
	require.Len(t, badges, 3)
	assert.Equal(t, "Novice Observer", badges[0].Title)
	assert.Equal(t, "Intermediate Observer", badges[1].Title)
	assert.Equal(t, "Expert Observer", badges[2].Title)
	assert.True(t, badges[0].Threshold < badges[1].Threshold)
	assert.True(t, badges[1].Threshold < badges[2].Threshold)
}

func TestEvaluate_Monotonic(t *testing.T) {
	t.Parallel()

	// Badges earned at n stay earned at n+1.
	for n := 0; n < 100; n++ {
		current := Evaluate(n)
		next := Evaluate(n + 1)
		for i := range current {
			if current[i].Earned {
				assert.True(t, next[i].Earned,
					"badge %s earned at %d but not at %d", current[i].Title, n, n+1)
			}
		}
	}
}

func TestEvaluate_FirstObservationScenario(t *testing.T) {
	t.Parallel()

	// A user recording their first observation earns exactly the novice badge.
	badges := Evaluate(1)
	assert.True(t, badges[0].Earned)
	assert.False(t, badges[1].Earned)
	assert.False(t, badges[2].Earned)
	assert.Equal(t, 1, EarnedCount(1))
}
