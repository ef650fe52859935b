package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/codyseavey/jeeves/internal/metrics"
	"github.com/codyseavey/jeeves/internal/models"
)

// Snapshot is an immutable view of the catalog. A reload builds a new one;
// nothing mutates a snapshot after Load returns it.
type Snapshot struct {
	generation uint64
	loadedAt   time.Time

	cards   map[string]*models.Card // normalized title -> card
	byCode  map[string]*models.Card
	titles  []string // normalized, sorted
	packs   map[string]models.Pack
	cycles  map[string]models.Cycle
	banList *models.BanList
}

func (s *Snapshot) Generation() uint64  { return s.generation }
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }
func (s *Snapshot) CardCount() int      { return len(s.cards) }
func (s *Snapshot) PackCount() int      { return len(s.packs) }
func (s *Snapshot) CycleCount() int     { return len(s.cycles) }

func (s *Snapshot) Lookup(normalizedTitle string) (*models.Card, bool) {
	c, ok := s.cards[normalizedTitle]
	return c, ok
}

// CardByCode returns the card indexed under code. Only the printing that won
// its title's slot is reachable.
func (s *Snapshot) CardByCode(code string) (*models.Card, bool) {
	c, ok := s.byCode[code]
	return c, ok
}

// Titles returns the normalized titles in ascending order. Callers must not modify it.
func (s *Snapshot) Titles() []string {
	return s.titles
}

func (s *Snapshot) PackOf(card *models.Card) (models.Pack, bool) {
	p, ok := s.packs[card.PackCode]
	return p, ok
}

func (s *Snapshot) CycleOf(pack models.Pack) (models.Cycle, bool) {
	c, ok := s.cycles[pack.CycleCode]
	return c, ok
}

func (s *Snapshot) IsBanned(code string) bool {
	return s.banList.Contains(code)
}

// BanListName is empty when the feed carried no ban list.
func (s *Snapshot) BanListName() string {
	if s.banList == nil {
		return ""
	}
	return s.banList.Name
}

// CatalogStore owns the current snapshot and swaps it atomically on load.
type CatalogStore struct {
	current    atomic.Pointer[Snapshot]
	generation atomic.Uint64
}

func NewCatalogStore() *CatalogStore {
	s := &CatalogStore{}
	s.current.Store(&Snapshot{
		cards:  map[string]*models.Card{},
		byCode: map[string]*models.Card{},
		packs:  map[string]models.Pack{},
		cycles: map[string]models.Cycle{},
	})
	return s
}

// Snapshot returns the catalog as of now. Hold on to the result for the
// duration of a request so every lookup sees the same data.
func (s *CatalogStore) Snapshot() *Snapshot {
	return s.current.Load()
}

// Load replaces all catalog state. Cards later in the feed win over earlier
// cards with the same normalized title, so a feed ordered oldest to newest
// keeps the latest printing. Only the last ban list is kept.
// An empty card list is an error. On error the current snapshot is left
// untouched.
func (s *CatalogStore) Load(cards []models.Card, cycles []models.Cycle, packs []models.Pack, banLists []models.BanList) (*Snapshot, error) {
	if len(cards) == 0 {
		return nil, &CatalogLoadError{Collection: "cards", Err: errors.New("feed returned no cards")}
	}

	snap := &Snapshot{
		loadedAt: time.Now(),
		cards:    make(map[string]*models.Card, len(cards)),
		byCode:   make(map[string]*models.Card, len(cards)),
		packs:    make(map[string]models.Pack, len(packs)),
		cycles:   make(map[string]models.Cycle, len(cycles)),
	}

	for i := range cards {
		card := cards[i]
		if card.Title == "" {
			return nil, &CatalogLoadError{Collection: "cards", Err: fmt.Errorf("card at index %d has no title", i)}
		}
		if card.Code == "" {
			return nil, &CatalogLoadError{Collection: "cards", Err: fmt.Errorf("card %q has no code", card.Title)}
		}

		key := Normalize(card.Title)
		if prev, ok := snap.cards[key]; ok {
			delete(snap.byCode, prev.Code)
		}
		snap.cards[key] = &card
		snap.byCode[card.Code] = &card
	}

	snap.titles = make([]string, 0, len(snap.cards))
	for title := range snap.cards {
		snap.titles = append(snap.titles, title)
	}
	sort.Strings(snap.titles)

	for _, c := range cycles {
		snap.cycles[c.Code] = c
	}
	for _, p := range packs {
		snap.packs[p.Code] = p
	}
	if len(banLists) > 0 {
		last := banLists[len(banLists)-1]
		snap.banList = &last
	}

	snap.generation = s.generation.Add(1)
	s.current.Store(snap)
	return snap, nil
}

// CatalogFetcher retrieves the four catalog collections from a remote source.
type CatalogFetcher interface {
	FetchCatalog(ctx context.Context) (*CatalogData, error)
}

// CatalogData is one complete fetch of the remote feeds.
type CatalogData struct {
	Cards    []models.Card
	Cycles   []models.Cycle
	Packs    []models.Pack
	BanLists []models.BanList
}

// CatalogService refreshes the store from a fetcher. Reloads are serialized;
// lookups never wait on them.
type CatalogService struct {
	store   *CatalogStore
	fetcher CatalogFetcher
	logger  *zap.Logger

	reloadMu sync.Mutex
	onReload []func(*Snapshot)
}

func NewCatalogService(store *CatalogStore, fetcher CatalogFetcher, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		store:   store,
		fetcher: fetcher,
		logger:  logger,
	}
}

func (s *CatalogService) Store() *CatalogStore {
	return s.store
}

// OnReload registers fn to run after every successful reload. Not safe to
// call once reloads have started.
func (s *CatalogService) OnReload(fn func(*Snapshot)) {
	s.onReload = append(s.onReload, fn)
}

// Reload fetches the remote catalog and swaps it in, returning the number of
// cards now loaded. The previous catalog is kept on any failure.
func (s *CatalogService) Reload(ctx context.Context) (int, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := time.Now()
	data, err := s.fetcher.FetchCatalog(ctx)
	if err != nil {
		metrics.CatalogReloadsTotal.WithLabelValues("failed").Inc()
		s.logger.Warn("catalog reload failed, keeping previous catalog",
			zap.Error(err),
			zap.Int("cards", s.store.Snapshot().CardCount()))
		return 0, err
	}

	snap, err := s.store.Load(data.Cards, data.Cycles, data.Packs, data.BanLists)
	if err != nil {
		metrics.CatalogReloadsTotal.WithLabelValues("failed").Inc()
		s.logger.Warn("catalog rejected, keeping previous catalog", zap.Error(err))
		return 0, err
	}

	metrics.CatalogReloadsTotal.WithLabelValues("success").Inc()
	metrics.CatalogReloadDuration.Observe(time.Since(start).Seconds())
	metrics.CatalogCards.Set(float64(snap.CardCount()))
	metrics.CatalogPacks.Set(float64(snap.PackCount()))

	s.logger.Info("catalog loaded",
		zap.Int("cards", snap.CardCount()),
		zap.Int("packs", snap.PackCount()),
		zap.Int("cycles", snap.CycleCount()),
		zap.String("ban_list", snap.BanListName()),
		zap.Uint64("generation", snap.Generation()),
		zap.Duration("took", time.Since(start)))

	for _, fn := range s.onReload {
		fn(snap)
	}

	return snap.CardCount(), nil
}
