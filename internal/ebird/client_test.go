package ebird

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	client, err := NewClient(Config{
		APIKey:      "test-key",
		BaseURL:     "https://api.ebird.org/v2",
		Timeout:     5 * time.Second,
		CacheTTL:    time.Minute,
		RateLimitMS: 1,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	httpmock.ActivateNonDefault(client.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)

	return client
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	client, err := NewClient(Config{})

	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestGetNearbyHotspots_Success(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodGet,
		`=~^https://api\.ebird\.org/v2/ref/hotspot/geo`,
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "test-key", req.Header.Get("X-eBirdApiToken"))
			assert.Equal(t, "json", req.URL.Query().Get("fmt"))
			assert.Equal(t, "16", req.URL.Query().Get("dist"))
			return httpmock.NewStringResponse(http.StatusOK, `[
				{"locId":"L123","locName":"City Park","lat":60.17,"lng":24.94,
				 "countryCode":"FI","subnational1Code":"FI-18","numSpeciesAllTime":142}
			]`), nil
		})

	hotspots, err := client.GetNearbyHotspots(context.Background(), 60.1699, 24.9384, 16)

	require.NoError(t, err)
	require.Len(t, hotspots, 1)
	assert.Equal(t, "L123", hotspots[0].LocID)
	assert.Equal(t, "City Park", hotspots[0].LocName)
	assert.InDelta(t, 60.17, hotspots[0].Latitude, 0.001)
	assert.Equal(t, 142, hotspots[0].NumSpeciesAllTime)
}

func TestGetRecentSightings_SendsLookback(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodGet,
		`=~^https://api\.ebird\.org/v2/data/obs/geo/recent`,
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "14", req.URL.Query().Get("back"))
			return httpmock.NewStringResponse(http.StatusOK, `[
				{"speciesCode":"houspa","comName":"House Sparrow","sciName":"Passer domesticus",
				 "locId":"L123","locName":"City Park","obsDt":"2026-08-30 08:15","howMany":2,
				 "lat":60.17,"lng":24.94}
			]`), nil
		})

	sightings, err := client.GetRecentSightings(context.Background(), 60.1699, 24.9384, 16, 14)

	require.NoError(t, err)
	require.Len(t, sightings, 1)
	assert.Equal(t, "House Sparrow", sightings[0].CommonName)
	assert.Equal(t, 2, sightings[0].HowMany)
}

func TestDoRequest_HTTPErrorIsCategorized(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodGet,
		`=~^https://api\.ebird\.org/v2/ref/hotspot/geo`,
		httpmock.NewStringResponder(http.StatusInternalServerError, `{"title":"boom","status":500,"detail":"server exploded"}`))

	hotspots, err := client.GetNearbyHotspots(context.Background(), 60.0, 24.0, 10)

	require.Error(t, err)
	assert.Nil(t, hotspots)
	assert.Contains(t, err.Error(), "status 500")
	assert.EqualValues(t, 1, client.GetMetrics().APIErrors)
}

func TestDoRequest_InvalidJSON(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodGet,
		`=~^https://api\.ebird\.org/v2/ref/hotspot/geo`,
		httpmock.NewStringResponder(http.StatusOK, `{not json`))

	_, err := client.GetNearbyHotspots(context.Background(), 60.0, 24.0, 10)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse response")
}

func TestSearchSpecies_CachesResults(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodGet,
		`=~^https://api\.ebird\.org/v2/ref/taxonomy/find/`,
		httpmock.NewStringResponder(http.StatusOK, `[
			{"comName":"European Robin","sciName":"Erithacus rubecula","speciesCode":"eurrob1"}
		]`))

	first, err := client.SearchSpecies(context.Background(), "robin")
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := client.SearchSpecies(context.Background(), "robin")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Second lookup must come from cache, not the network
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
	assert.EqualValues(t, 1, client.GetMetrics().CacheHits)
}

func TestClearCache_ForcesRefetch(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder(http.MethodGet,
		`=~^https://api\.ebird\.org/v2/ref/taxonomy/find/`,
		httpmock.NewStringResponder(http.StatusOK, `[
			{"comName":"European Robin","sciName":"Erithacus rubecula","speciesCode":"eurrob1"}
		]`))

	_, err := client.SearchSpecies(context.Background(), "robin")
	require.NoError(t, err)
	_, err = client.SearchSpecies(context.Background(), "robin")
	require.NoError(t, err)
	require.Equal(t, 1, httpmock.GetTotalCallCount())

	client.ClearCache()

	_, err = client.SearchSpecies(context.Background(), "robin")
	require.NoError(t, err)
	assert.Equal(t, 2, httpmock.GetTotalCallCount(), "cleared cache must refetch from the network")
}
