package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/Akshaybondre123/First-Startup/internal/domain"
	"github.com/Akshaybondre123/First-Startup/internal/engine"
	"github.com/Akshaybondre123/First-Startup/internal/geo"
)

// DiscoveryService answers GET /api/restaurants.
type DiscoveryService struct {
	backend     engine.Discoverer
	backendName string
	cache       ResponseCache
	metrics     *Metrics
	logger      *slog.Logger
}

// NewDiscoveryService creates a DiscoveryService over backend. cache and
// metrics may be nil.
func NewDiscoveryService(backend engine.Discoverer, backendName string, cache ResponseCache, metrics *Metrics, logger *slog.Logger) *DiscoveryService {
	return &DiscoveryService{
		backend:     backend,
		backendName: backendName,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
	}
}

// Discover returns up to domain.MaxResults restaurants matching q. When q
// has a location each result carries its distance in km and results are
// ordered verified first, then nearest. Otherwise they are ordered by
// rating, then verified. Equal keys keep backend order.
func (s *DiscoveryService) Discover(ctx context.Context, q domain.DiscoveryQuery) ([]domain.Restaurant, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	located := q.HasLocation()
	s.metrics.discoveryQuery(s.backendName, located)

	key := discoveryCacheKey(&q)
	if s.cache != nil {
		var cached []domain.Restaurant
		if s.cache.GetJSON(ctx, key, &cached) {
			return cached, nil
		}
	}

	rs, err := s.backend.Discover(ctx, &q)
	if err != nil {
		return nil, fmt.Errorf("discover restaurants: %w", err)
	}
	if len(rs) > domain.MaxResults {
		rs = rs[:domain.MaxResults]
	}
	Rank(rs, &q)

	if s.cache != nil {
		s.cache.SetJSON(ctx, key, rs)
	}

	s.logger.DebugContext(ctx, "discovery query served",
		slog.String("backend", s.backendName),
		slog.Bool("geo", located),
		slog.Int("results", len(rs)),
	)
	return rs, nil
}

// Rank attaches distances and orders rs in place for q.
func Rank(rs []domain.Restaurant, q *domain.DiscoveryQuery) {
	if !q.HasLocation() {
		for i := range rs {
			rs[i].Distance = nil
		}
		sort.SliceStable(rs, func(i, j int) bool {
			if rs[i].Rating != rs[j].Rating {
				return rs[i].Rating > rs[j].Rating
			}
			return rs[i].Verified && !rs[j].Verified
		})
		return
	}

	for i := range rs {
		d := geo.Distance(*q.Lat, *q.Lng, rs[i].Location.Lat(), rs[i].Location.Lng())
		rs[i].Distance = &d
	}
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Verified != rs[j].Verified {
			return rs[i].Verified
		}
		return *rs[i].Distance < *rs[j].Distance
	})
}

// discoveryCacheKey canonicalizes q so equivalent queries share an entry.
func discoveryCacheKey(q *domain.DiscoveryQuery) string {
	tags := append([]string(nil), q.Tags...)
	sort.Strings(tags)

	var b strings.Builder
	if q.HasLocation() {
		b.WriteString(strconv.FormatFloat(*q.Lat, 'f', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(*q.Lng, 'f', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(q.MaxDistanceMeters, 'f', -1, 64))
	}
	b.WriteByte('|')
	b.WriteString(strings.Join(tags, "\x1f"))
	b.WriteByte('|')
	b.WriteString(strconv.FormatBool(q.Verified))
	b.WriteByte('|')
	b.WriteString(strings.ToLower(q.Search))

	sum := sha256.Sum256([]byte(b.String()))
	return "discover:" + hex.EncodeToString(sum[:16])
}
