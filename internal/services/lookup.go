package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/codyseavey/jeeves/internal/metrics"
	"github.com/codyseavey/jeeves/internal/models"
)

const defaultMaxSearches = 5

// Query groups in the order they are checked. Only the first kind present in
// a message is answered.
var queryPatterns = []struct {
	kind    models.QueryKind
	pattern *regexp.Regexp
}{
	{models.QueryCard, regexp.MustCompile(`\[\[(.*?)\]\]`)},
	{models.QueryImage, regexp.MustCompile(`\{\{(.*?)\}\}`)},
	{models.QueryFlavor, regexp.MustCompile(`<<(.*?)>>`)},
}

// ScanQueries finds the bracketed queries in a message. It returns the kind
// of the first group type found and every query of that kind, in order.
func ScanQueries(content string) (models.QueryKind, []string) {
	for _, qp := range queryPatterns {
		matches := qp.pattern.FindAllStringSubmatch(content, -1)
		if len(matches) == 0 {
			continue
		}
		queries := make([]string, len(matches))
		for i, m := range matches {
			queries[i] = m[1]
		}
		return qp.kind, queries
	}
	return "", nil
}

// LookupRecorder stores resolved lookups. Implementations must not block.
type LookupRecorder interface {
	Record(rec models.LookupRecord)
}

type LookupService struct {
	resolver    *Resolver
	builder     *DocumentBuilder
	recorder    LookupRecorder
	logger      *zap.Logger
	maxSearches atomic.Int64
}

func NewLookupService(resolver *Resolver, builder *DocumentBuilder, recorder LookupRecorder, logger *zap.Logger) *LookupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &LookupService{
		resolver: resolver,
		builder:  builder,
		recorder: recorder,
		logger:   logger,
	}
	s.maxSearches.Store(defaultMaxSearches)
	return s
}

// SetMaxSearches caps the number of queries answered per message.
func (s *LookupService) SetMaxSearches(n int) {
	if n <= 0 {
		n = defaultMaxSearches
	}
	s.maxSearches.Store(int64(n))
}

func (s *LookupService) MaxSearches() int {
	return int(s.maxSearches.Load())
}

// Lookup resolves one query and builds the document of the requested kind.
func (s *LookupService) Lookup(kind models.QueryKind, query string) (*Resolution, models.Document, error) {
	res, err := s.resolver.Resolve(query)
	if err != nil {
		metrics.LookupsTotal.WithLabelValues(string(kind), "error").Inc()
		return nil, models.Document{}, err
	}

	doc, err := s.builder.Build(kind, res.Snapshot, res.Card)
	if err != nil {
		metrics.LookupsTotal.WithLabelValues(string(kind), "malformed").Inc()
		return res, models.Document{}, err
	}

	metrics.LookupsTotal.WithLabelValues(string(kind), "success").Inc()
	return res, doc, nil
}

// ByCode builds the document of the requested kind for an exact card code.
func (s *LookupService) ByCode(kind models.QueryKind, code string) (*models.Card, models.Document, error) {
	snap := s.resolver.store.Snapshot()
	card, ok := snap.CardByCode(code)
	if !ok {
		return nil, models.Document{}, ErrCardNotFound
	}

	doc, err := s.builder.Build(kind, snap, card)
	if err != nil {
		return card, models.Document{}, err
	}
	return card, doc, nil
}

// HandleMessage answers every query in content up to the configured cap.
// A query that fails does not stop the rest; the failures are joined into the
// returned error alongside the documents that did build.
func (s *LookupService) HandleMessage(ctx context.Context, channel, content string) ([]models.Document, error) {
	kind, queries := ScanQueries(content)
	if len(queries) == 0 {
		return nil, nil
	}
	if limit := s.MaxSearches(); len(queries) > limit {
		queries = queries[:limit]
	}

	docs := make([]models.Document, 0, len(queries))
	var errs []error
	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		res, doc, err := s.Lookup(kind, q)
		s.record(kind, q, channel, res, err)
		if err != nil {
			s.logger.Warn("lookup failed",
				zap.String("kind", string(kind)),
				zap.String("query", q),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("query %q: %w", q, err))
			continue
		}

		s.logger.Debug("lookup resolved",
			zap.String("kind", string(kind)),
			zap.String("query", q),
			zap.String("code", res.Card.Code),
			zap.Int("score", res.Score))
		docs = append(docs, doc)
	}

	return docs, errors.Join(errs...)
}

func (s *LookupService) record(kind models.QueryKind, query, channel string, res *Resolution, err error) {
	if s.recorder == nil {
		return
	}

	rec := models.LookupRecord{
		ID:         uuid.New().String(),
		Kind:       kind,
		Query:      query,
		Normalized: Normalize(query),
		Channel:    channel,
		CreatedAt:  time.Now(),
	}
	if res != nil && res.Card != nil {
		rec.CardCode = res.Card.Code
		rec.Title = res.Card.Title
		rec.Score = res.Score
	}
	if err != nil {
		rec.Error = err.Error()
	}
	s.recorder.Record(rec)
}
