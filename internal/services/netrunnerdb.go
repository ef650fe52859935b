package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codyseavey/jeeves/internal/models"
)

const (
	netrunnerDBBaseURL        = "https://netrunnerdb.com/api/2.0/public"
	netrunnerDBDefaultTimeout = 30 * time.Second
)

// NetrunnerDBService fetches the public card, cycle, pack and ban-list feeds.
type NetrunnerDBService struct {
	client  *http.Client
	baseURL string
}

func NewNetrunnerDBService(baseURL string, timeout time.Duration) *NetrunnerDBService {
	if baseURL == "" {
		baseURL = netrunnerDBBaseURL
	}
	if timeout <= 0 {
		timeout = netrunnerDBDefaultTimeout
	}
	return &NetrunnerDBService{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type nrdbEnvelope[T any] struct {
	Data    []T  `json:"data"`
	Success bool `json:"success"`
}

type nrdbCard struct {
	Code            string             `json:"code"`
	Title           string             `json:"title"`
	TypeCode        string             `json:"type_code"`
	FactionCode     string             `json:"faction_code"`
	FactionCost     models.OptionalInt `json:"faction_cost"`
	Uniqueness      bool               `json:"uniqueness"`
	Text            string             `json:"text"`
	Flavor          *string            `json:"flavor"`
	Keywords        *string            `json:"keywords"`
	PackCode        string             `json:"pack_code"`
	Position        int                `json:"position"`
	Cost            models.OptionalInt `json:"cost"`
	AdvancementCost models.OptionalInt `json:"advancement_cost"`
	AgendaPoints    models.OptionalInt `json:"agenda_points"`
	MemoryCost      models.OptionalInt `json:"memory_cost"`
	Strength        models.OptionalInt `json:"strength"`
	TrashCost       models.OptionalInt `json:"trash_cost"`
	BaseLink        models.OptionalInt `json:"base_link"`
	MinimumDeckSize models.OptionalInt `json:"minimum_deck_size"`
	InfluenceLimit  models.OptionalInt `json:"influence_limit"`
}

type nrdbCycle struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Size    int    `json:"size"`
	Rotated bool   `json:"rotated"`
}

type nrdbPack struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	CycleCode string `json:"cycle_code"`
	Position  int    `json:"position"`
}

type nrdbBanList struct {
	Code  string                     `json:"code"`
	Name  string                     `json:"name"`
	Cards map[string]json.RawMessage `json:"cards"`
}

// FetchCatalog downloads all four feeds concurrently. Any failure fails the
// whole fetch so a caller never sees a partial catalog.
func (s *NetrunnerDBService) FetchCatalog(ctx context.Context) (*CatalogData, error) {
	var (
		cards    []nrdbCard
		cycles   []nrdbCycle
		packs    []nrdbPack
		banLists []nrdbBanList
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return fetchCollection(gctx, s, "cards", &cards) })
	g.Go(func() error { return fetchCollection(gctx, s, "cycles", &cycles) })
	g.Go(func() error { return fetchCollection(gctx, s, "packs", &packs) })
	g.Go(func() error { return fetchCollection(gctx, s, "mwl", &banLists) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data := &CatalogData{
		Cards:    make([]models.Card, len(cards)),
		Cycles:   make([]models.Cycle, len(cycles)),
		Packs:    make([]models.Pack, len(packs)),
		BanLists: make([]models.BanList, len(banLists)),
	}
	for i, c := range cards {
		data.Cards[i] = convertToCard(c)
	}
	for i, c := range cycles {
		data.Cycles[i] = models.Cycle(c)
	}
	for i, p := range packs {
		data.Packs[i] = models.Pack(p)
	}
	for i, b := range banLists {
		data.BanLists[i] = convertToBanList(b)
	}

	return data, nil
}

func fetchCollection[T any](ctx context.Context, s *NetrunnerDBService, name string, out *[]T) error {
	reqURL := fmt.Sprintf("%s/%s", s.baseURL, name)

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return &CatalogLoadError{Collection: name, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return &CatalogLoadError{Collection: name, Err: fmt.Errorf("failed to fetch: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &CatalogLoadError{Collection: name, Err: fmt.Errorf("netrunnerdb API returned status %d", resp.StatusCode)}
	}

	var envelope nrdbEnvelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return &CatalogLoadError{Collection: name, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if envelope.Data == nil {
		return &CatalogLoadError{Collection: name, Err: fmt.Errorf("response has no data")}
	}

	*out = envelope.Data
	return nil
}

// convertToCard picks the stats variant from the type code. Fields that the
// variant has no slot for are dropped.
func convertToCard(nc nrdbCard) models.Card {
	cardType := models.CardType(nc.TypeCode)

	var stats models.Stats
	switch {
	case cardType == models.TypeIdentity:
		stats = models.IdentityStats{
			BaseLink:        nc.BaseLink,
			MinimumDeckSize: nc.MinimumDeckSize,
			InfluenceLimit:  nc.InfluenceLimit,
		}
	case cardType == models.TypeAgenda:
		stats = models.AgendaStats{
			AdvancementCost: nc.AdvancementCost,
			AgendaPoints:    nc.AgendaPoints,
		}
	case cardType.IsRezzable():
		stats = models.InstallStats{
			RezCost:   nc.Cost,
			Strength:  nc.Strength,
			TrashCost: nc.TrashCost,
		}
	default:
		stats = models.PlayStats{
			Cost:       nc.Cost,
			MemoryCost: nc.MemoryCost,
			Strength:   nc.Strength,
			TrashCost:  nc.TrashCost,
		}
	}

	return models.Card{
		Code:        nc.Code,
		Title:       nc.Title,
		Type:        cardType,
		Faction:     models.Faction(nc.FactionCode),
		FactionCost: nc.FactionCost,
		Unique:      nc.Uniqueness,
		Text:        nc.Text,
		Flavor:      nc.Flavor,
		Keywords:    nc.Keywords,
		PackCode:    nc.PackCode,
		Position:    nc.Position,
		Stats:       stats,
	}
}

func convertToBanList(nb nrdbBanList) models.BanList {
	cards := make(map[string]struct{}, len(nb.Cards))
	for code := range nb.Cards {
		cards[code] = struct{}{}
	}
	return models.BanList{
		Code:  nb.Code,
		Name:  nb.Name,
		Cards: cards,
	}
}
