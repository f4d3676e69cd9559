package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordinates_Valid(t *testing.T) {
	t.Parallel()

	loc, err := ParseCoordinates("60.1699, 24.9384")

	require.NoError(t, err)
	assert.InDelta(t, 60.1699, loc.Latitude, 0.0001)
	assert.InDelta(t, 24.9384, loc.Longitude, 0.0001)
}

func TestParseCoordinates_Malformed(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "60.17", "60.17;24.94", "north, south", "60.17, 24.94, 12"} {
		_, err := ParseCoordinates(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestParseCoordinates_OutOfRange(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"91, 0", "-91, 0", "0, 181", "0, -181"} {
		_, err := ParseCoordinates(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestResolveLocation_FallsBackOnInvalidInput(t *testing.T) {
	t.Parallel()

	fallback := Location{Latitude: 60.1699, Longitude: 24.9384}

	assert.Equal(t, fallback, ResolveLocation("not coordinates", fallback))
	assert.Equal(t, fallback, ResolveLocation("", fallback))

	custom := ResolveLocation("51.5074, -0.1278", fallback)
	assert.InDelta(t, 51.5074, custom.Latitude, 0.0001)
	assert.InDelta(t, -0.1278, custom.Longitude, 0.0001)
}
