package settings

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/featherquest/featherquest-go/internal/datastore"
	"github.com/featherquest/featherquest-go/internal/errors"
	"github.com/featherquest/featherquest-go/internal/units"
)

// memoryDocs is an in-memory SettingsDocuments for tests.
type memoryDocs struct {
	docs    map[string]string
	loadErr error
}

func newMemoryDocs() *memoryDocs {
	return &memoryDocs{docs: make(map[string]string)}
}

func (m *memoryDocs) GetSettingsDocument(_ context.Context, userID string) (string, error) {
	if m.loadErr != nil {
		return "", m.loadErr
	}
	doc, ok := m.docs[userID]
	if !ok {
		return "", errors.New(datastore.ErrNotFound).Category(errors.CategoryNotFound).Build()
	}
	return doc, nil
}

func (m *memoryDocs) SaveSettingsDocument(_ context.Context, userID, document string) error {
	m.docs[userID] = document
	return nil
}

func TestLoad_AbsentDocumentYieldsDefaults(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(newMemoryDocs())

	s, err := resolver.Load(context.Background(), "alice")

	require.NoError(t, err)
	assert.Equal(t, units.Kilometers, s.UnitSystem)
	assert.Equal(t, DefaultMaxDistance, s.MaxDistance)
}

func TestLoad_PartialDocumentDefaultsPerField(t *testing.T) {
	t.Parallel()

	docs := newMemoryDocs()
	docs.docs["alice"] = `{"maxDistance": 10}`
	resolver := NewResolver(docs)

	s, err := resolver.Load(context.Background(), "alice")

	require.NoError(t, err)
	assert.Equal(t, units.Kilometers, s.UnitSystem, "absent unitSystem falls back to default")
	assert.Equal(t, 10, s.MaxDistance)
}

func TestLoad_MalformedFieldsDegradeToDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"not_json", `not a document`},
		{"wrong_types", `{"unitSystem": 7, "maxDistance": "far"}`},
		{"non_positive_distance", `{"unitSystem": "miles", "maxDistance": 0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := newMemoryDocs()
			docs.docs["alice"] = tt.doc
			resolver := NewResolver(docs)

			s, err := resolver.Load(context.Background(), "alice")

			require.NoError(t, err)
			assert.Equal(t, DefaultMaxDistance, s.MaxDistance)
		})
	}
}

func TestLoad_LooseUnitStringsAccepted(t *testing.T) {
	t.Parallel()

	docs := newMemoryDocs()
	docs.docs["alice"] = `{"unitSystem": "Miles", "maxDistance": 10}`
	resolver := NewResolver(docs)

	s, err := resolver.Load(context.Background(), "alice")

	require.NoError(t, err)
	assert.Equal(t, units.Miles, s.UnitSystem)
	assert.Equal(t, 10, s.MaxDistance)
}

func TestLoad_StoreFailureSurfacesWithDefaults(t *testing.T) {
	t.Parallel()

	docs := newMemoryDocs()
	docs.loadErr = errors.Newf("store unavailable").Category(errors.CategoryDatabase).Build()
	resolver := NewResolver(docs)

	s, err := resolver.Load(context.Background(), "alice")

	require.Error(t, err)
	assert.Equal(t, Defaults(), s)
}

func TestSave_RoundTrip(t *testing.T) {
	t.Parallel()

	docs := newMemoryDocs()
	resolver := NewResolver(docs)

	saved := Settings{UnitSystem: units.Miles, MaxDistance: 25}
	require.NoError(t, resolver.Save(context.Background(), "alice", saved))

	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(docs.docs["alice"]), &raw))
	assert.Equal(t, "miles", raw["unitSystem"])

	loaded, err := resolver.Load(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestSave_RejectsNonPositiveDistance(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(newMemoryDocs())

	err := resolver.Save(context.Background(), "alice", Settings{UnitSystem: units.Kilometers, MaxDistance: 0})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "maxDistance must be positive")
}
