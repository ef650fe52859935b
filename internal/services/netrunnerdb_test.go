package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codyseavey/jeeves/internal/models"
)

var nrdbFixtures = map[string]string{
	"/cards": `{"success": true, "data": [
		{"code": "01002", "title": "Déjà Vu", "type_code": "event", "faction_code": "anarch", "faction_cost": 2,
		 "cost": 2, "pack_code": "core", "position": 2, "uniqueness": false,
		 "text": "Add 1 card (or up to 2 virus cards) from your heap to your grip."},
		{"code": "01103", "title": "Ice Wall", "type_code": "ice", "faction_code": "weyland-consortium", "faction_cost": 1,
		 "cost": 1, "strength": 1, "keywords": "Barrier", "pack_code": "core", "position": 103, "uniqueness": false,
		 "text": "[subroutine] End the run."},
		{"code": "01033", "title": "Kate \"Mac\" McCaffrey: Digital Tinker", "type_code": "identity", "faction_code": "shaper",
		 "base_link": 1, "minimum_deck_size": 45, "influence_limit": 15, "pack_code": "core", "position": 33, "uniqueness": false},
		{"code": "01081", "title": "Priority Requisition", "type_code": "agenda", "faction_code": "neutral-corp", "faction_cost": 0,
		 "advancement_cost": 5, "agenda_points": 3, "pack_code": "core", "position": 81, "uniqueness": false},
		{"code": "01005", "title": "Wyldside", "type_code": "resource", "faction_code": "anarch", "faction_cost": 3,
		 "cost": null, "pack_code": "core", "position": 5, "uniqueness": true, "flavor": "Home."}
	]}`,
	"/cycles": `{"success": true, "data": [{"code": "core", "name": "Core Set", "size": 1, "rotated": true, "position": 1}]}`,
	"/packs":  `{"success": true, "data": [{"code": "core", "name": "Core Set", "cycle_code": "core", "position": 1, "date_release": "2012-09-06"}]}`,
	"/mwl": `{"success": true, "data": [
		{"code": "napd", "name": "NAPD Most Wanted List", "cards": {"01002": {"global_penalty": 1}}},
		{"code": "sbl", "name": "Standard Ban List", "cards": {"01103": {"deck_limit": 0}}}
	]}`,
}

// nrdbFaults switches the /cards feed between healthy and broken responses.
type nrdbFaults struct {
	failCards  atomic.Bool
	emptyCards atomic.Bool
}

func newNRDBServer(t *testing.T, faults *nrdbFaults) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/cards" && faults != nil {
			if faults.failCards.Load() {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			if faults.emptyCards.Load() {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"success": true, "data": []}`))
				return
			}
		}
		body, ok := nrdbFixtures[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNetrunnerDBFetchCatalog(t *testing.T) {
	server := newNRDBServer(t, nil)
	svc := NewNetrunnerDBService(server.URL+"/", time.Second)

	data, err := svc.FetchCatalog(context.Background())
	require.NoError(t, err)

	require.Len(t, data.Cards, 5)
	assert.Len(t, data.Cycles, 1)
	assert.Len(t, data.Packs, 1)
	require.Len(t, data.BanLists, 2)

	byCode := map[string]models.Card{}
	for _, c := range data.Cards {
		byCode[c.Code] = c
	}

	assert.Equal(t, models.PlayStats{Cost: models.Int(2)}, byCode["01002"].Stats)
	assert.Equal(t, models.InstallStats{RezCost: models.Int(1), Strength: models.Int(1)}, byCode["01103"].Stats)
	assert.Equal(t, models.IdentityStats{
		BaseLink: models.Int(1), MinimumDeckSize: models.Int(45), InfluenceLimit: models.Int(15),
	}, byCode["01033"].Stats)
	assert.Equal(t, models.AgendaStats{AdvancementCost: models.Int(5), AgendaPoints: models.Int(3)}, byCode["01081"].Stats)
	assert.Equal(t, models.PlayStats{Cost: models.Null()}, byCode["01005"].Stats)

	assert.False(t, byCode["01033"].FactionCost.Set)
	assert.True(t, byCode["01005"].Unique)
	require.NotNil(t, byCode["01005"].Flavor)
	assert.Equal(t, "Home.", *byCode["01005"].Flavor)
	require.NotNil(t, byCode["01103"].Keywords)

	sbl := data.BanLists[1]
	assert.Equal(t, "Standard Ban List", sbl.Name)
	assert.True(t, sbl.Contains("01103"))
	assert.False(t, sbl.Contains("01002"))
}

func TestCatalogReloadFailureKeepsPreviousCatalog(t *testing.T) {
	var faults nrdbFaults
	server := newNRDBServer(t, &faults)

	store := NewCatalogStore()
	svc := NewCatalogService(store, NewNetrunnerDBService(server.URL, time.Second), nil)

	count, err := svc.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, count)
	assert.True(t, store.Snapshot().IsBanned("01103"))
	generation := store.Snapshot().Generation()

	faults.failCards.Store(true)
	_, err = svc.Reload(context.Background())

	var loadErr *CatalogLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "cards", loadErr.Collection)
	assert.Equal(t, 5, store.Snapshot().CardCount())
	assert.Equal(t, generation, store.Snapshot().Generation())
}

func TestCatalogReloadRejectsEmptyCardFeed(t *testing.T) {
	var faults nrdbFaults
	server := newNRDBServer(t, &faults)

	store := NewCatalogStore()
	svc := NewCatalogService(store, NewNetrunnerDBService(server.URL, time.Second), nil)
	resolver := newTestResolver(t, store)

	count, err := svc.Reload(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, count)
	generation := store.Snapshot().Generation()

	faults.emptyCards.Store(true)
	count, err = svc.Reload(context.Background())

	var loadErr *CatalogLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "cards", loadErr.Collection)
	assert.Zero(t, count)
	assert.Equal(t, 5, store.Snapshot().CardCount())
	assert.Equal(t, generation, store.Snapshot().Generation())

	res, err := resolver.Resolve("deja vu")
	require.NoError(t, err)
	assert.Equal(t, "01002", res.Card.Code)
}

func TestNetrunnerDBFetchMissingData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": false}`))
	}))
	defer server.Close()

	_, err := NewNetrunnerDBService(server.URL, time.Second).FetchCatalog(context.Background())

	var loadErr *CatalogLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestNetrunnerDBFetchHonorsContext(t *testing.T) {
	server := newNRDBServer(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewNetrunnerDBService(server.URL, time.Second).FetchCatalog(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
