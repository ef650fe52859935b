package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codyseavey/jeeves/internal/models"
)

func newTestResolver(t *testing.T, store *CatalogStore) *Resolver {
	t.Helper()
	r, err := NewResolver(store, 16)
	require.NoError(t, err)
	return r
}

func TestResolveAccentInsensitiveExactMatch(t *testing.T) {
	r := newTestResolver(t, loadTestCatalog(t))

	res, err := r.Resolve("deja vu")
	require.NoError(t, err)
	assert.Equal(t, "01002", res.Card.Code)
	assert.Equal(t, scoreExact, res.Score)
	assert.Equal(t, "deja vu", res.Normalized)
}

func TestResolveAliasBeatsCloserTitle(t *testing.T) {
	r := newTestResolver(t, loadTestCatalog(t))

	// without the alias "sc" prefers Scrubber
	res, err := r.Resolve("sc")
	require.NoError(t, err)
	assert.Equal(t, "Scrubber", res.Card.Title)

	r.SetAliases(map[string]string{"SC": "Sure Gamble"})

	res, err = r.Resolve("sc")
	require.NoError(t, err)
	assert.Equal(t, "Sure Gamble", res.Card.Title)
	assert.Equal(t, scoreAlias, res.Score)
}

func TestResolveAliasTargetIsNormalized(t *testing.T) {
	r := newTestResolver(t, loadTestCatalog(t))
	r.SetAliases(map[string]string{"dv": "DÉJÀ VU"})

	res, err := r.Resolve("dv")
	require.NoError(t, err)
	assert.Equal(t, "01002", res.Card.Code)
}

func TestResolveAliasCollisionIsDeterministic(t *testing.T) {
	store := loadTestCatalog(t)

	// all three normalize to "sc"; "SC" sorts first and owns the key
	for i := 0; i < 20; i++ {
		r := newTestResolver(t, store)
		r.SetAliases(map[string]string{"sc": "Scrubber", "Sç": "Ice Wall", "SC": "Sure Gamble"})

		res, err := r.Resolve("sc")
		require.NoError(t, err)
		require.Equal(t, "Sure Gamble", res.Card.Title, "iteration %d", i)
	}
}

func TestResolveIgnoresResultsScoredWithReplacedAliases(t *testing.T) {
	store := loadTestCatalog(t)
	r := newTestResolver(t, store)

	// a resolution that started before SetAliases finishes after it
	stale := r.aliases.Load()
	r.SetAliases(map[string]string{"sc": "Sure Gamble"})
	old, err := r.resolve("sc", store.Snapshot(), stale)
	require.NoError(t, err)
	require.Equal(t, "Scrubber", old.Card.Title)

	res, err := r.Resolve("sc")
	require.NoError(t, err)
	assert.Equal(t, "Sure Gamble", res.Card.Title)
	assert.Equal(t, scoreAlias, res.Score)
}

func TestResolveFuzzy(t *testing.T) {
	r := newTestResolver(t, loadTestCatalog(t))

	tests := []struct {
		query string
		want  string
	}{
		{"gamble", "Sure Gamble"},
		{"icewall", "Ice Wall"},
		{"scrub", "Scrubber"},
		{"Déjà", "Déjà Vu"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res, err := r.Resolve(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Card.Title)
			assert.Less(t, res.Score, scoreExact)
		})
	}
}

func TestResolveTieGoesToSmallestTitle(t *testing.T) {
	store := NewCatalogStore()
	_, err := store.Load([]models.Card{
		{Code: "b", Title: "Beta", Type: models.TypeEvent, Faction: models.FactionShaper, Stats: models.PlayStats{}},
		{Code: "a", Title: "Alpha", Type: models.TypeEvent, Faction: models.FactionShaper, Stats: models.PlayStats{}},
	}, nil, nil, nil)
	require.NoError(t, err)

	r := newTestResolver(t, store)
	res, err := r.Resolve("zzz")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, "Alpha", res.Card.Title)
}

func TestResolveEmptyCatalog(t *testing.T) {
	r := newTestResolver(t, NewCatalogStore())

	_, err := r.Resolve("anything")
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestResolveCacheFollowsReload(t *testing.T) {
	store := loadTestCatalog(t)
	r := newTestResolver(t, store)

	first, err := r.Resolve("sure gamble")
	require.NoError(t, err)
	again, err := r.Resolve("sure gamble")
	require.NoError(t, err)
	assert.Same(t, first.Card, again.Card)

	cards := testCards()
	cards[1].Code = "30075"
	_, err = store.Load(cards, testCycles(), testPacks(), nil)
	require.NoError(t, err)

	res, err := r.Resolve("sure gamble")
	require.NoError(t, err)
	assert.Equal(t, "30075", res.Card.Code)
	assert.Same(t, store.Snapshot(), res.Snapshot)
}

func TestScore(t *testing.T) {
	r := newTestResolver(t, NewCatalogStore())
	r.SetAliases(map[string]string{"sg": "sure gamble"})

	assert.Equal(t, scoreAlias, r.Score("sg", "sure gamble"))
	assert.Equal(t, scoreExact, r.Score("sure gamble", "sure gamble"))
	assert.Equal(t, 141, r.Score("gamble", "sure gamble"))
	// an alias only boosts its own target
	assert.Equal(t, fuzzyScore("sg", "scrubber"), r.Score("sg", "scrubber"))
}
