package services

import (
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/codyseavey/jeeves/internal/metrics"
	"github.com/codyseavey/jeeves/internal/models"
)

const defaultResolverCacheSize = 512

// Resolution is the single best match for a query.
type Resolution struct {
	Query      string       `json:"query"`
	Normalized string       `json:"normalized"`
	Card       *models.Card `json:"card"`
	Score      int          `json:"score"`
	Snapshot   *Snapshot    `json:"-"`
}

// Resolver picks the best catalog card for free-text queries.
type Resolver struct {
	store        *CatalogStore
	aliases      atomic.Pointer[aliasTable]
	aliasVersion atomic.Uint64
	cache        *lru.Cache[string, resolvedTitle]
}

// aliasTable maps normalized alias to normalized title. version is part of
// every cache key, so a resolution scored against an older table can never
// be served once the table is replaced.
type aliasTable struct {
	version uint64
	entries map[string]string
}

type resolvedTitle struct {
	title string
	score int
}

func NewResolver(store *CatalogStore, cacheSize int) (*Resolver, error) {
	if cacheSize <= 0 {
		cacheSize = defaultResolverCacheSize
	}
	cache, err := lru.New[string, resolvedTitle](cacheSize)
	if err != nil {
		return nil, err
	}

	r := &Resolver{store: store, cache: cache}
	r.aliases.Store(&aliasTable{entries: map[string]string{}})
	return r, nil
}

// SetAliases replaces the alias table. Both sides are normalized here so
// lookups compare normalized text only. When several aliases normalize to
// the same key, the one that sorts first wins.
func (r *Resolver) SetAliases(aliases map[string]string) {
	keys := make([]string, 0, len(aliases))
	for alias := range aliases {
		keys = append(keys, alias)
	}
	sort.Strings(keys)

	entries := make(map[string]string, len(aliases))
	for _, alias := range keys {
		key := Normalize(alias)
		if _, taken := entries[key]; taken {
			continue
		}
		entries[key] = Normalize(aliases[alias])
	}

	r.aliases.Store(&aliasTable{version: r.aliasVersion.Add(1), entries: entries})
	r.cache.Purge()
}

// Purge drops memoized resolutions, e.g. after a catalog reload.
func (r *Resolver) Purge() {
	r.cache.Purge()
}

// Score rates a normalized title against a normalized query. Alias targets
// score 300, exact titles 200, everything else the fuzzy ratio plus a 70
// point bonus when the query is a substring of the title.
func (r *Resolver) Score(query, title string) int {
	return scoreWith(r.aliases.Load(), query, title)
}

func scoreWith(aliases *aliasTable, query, title string) int {
	if target, ok := aliases.entries[query]; ok && target == title {
		return scoreAlias
	}
	if query == title {
		return scoreExact
	}
	return fuzzyScore(query, title)
}

// Resolve returns the highest-scoring card for query. Titles are scored in
// ascending order and only a strictly higher score replaces the current best,
// so ties go to the lexicographically smallest normalized title.
// There is no "no match": any non-empty catalog yields a card.
func (r *Resolver) Resolve(query string) (*Resolution, error) {
	start := time.Now()
	defer func() {
		metrics.ResolveDuration.Observe(time.Since(start).Seconds())
	}()

	return r.resolve(query, r.store.Snapshot(), r.aliases.Load())
}

// resolve scores against one snapshot and one alias table throughout.
func (r *Resolver) resolve(query string, snap *Snapshot, aliases *aliasTable) (*Resolution, error) {
	titles := snap.Titles()
	if len(titles) == 0 {
		return nil, ErrEmptyCatalog
	}

	normalized := Normalize(query)
	cacheKey := strconv.FormatUint(snap.Generation(), 10) + "\x00" +
		strconv.FormatUint(aliases.version, 10) + "\x00" + normalized

	if hit, ok := r.cache.Get(cacheKey); ok {
		if card, found := snap.Lookup(hit.title); found {
			metrics.ResolverCacheHits.Inc()
			return &Resolution{Query: query, Normalized: normalized, Card: card, Score: hit.score, Snapshot: snap}, nil
		}
	}
	metrics.ResolverCacheMisses.Inc()

	best, bestScore := titles[0], scoreWith(aliases, normalized, titles[0])
	for _, title := range titles[1:] {
		if bestScore == scoreAlias {
			break
		}
		if score := scoreWith(aliases, normalized, title); score > bestScore {
			best, bestScore = title, score
		}
	}

	r.cache.Add(cacheKey, resolvedTitle{title: best, score: bestScore})

	card, _ := snap.Lookup(best)
	return &Resolution{Query: query, Normalized: normalized, Card: card, Score: bestScore, Snapshot: snap}, nil
}
