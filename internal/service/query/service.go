package query

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kirinyoku/tixmarket/internal/domain"
	redisx "github.com/kirinyoku/tixmarket/internal/redis"
	"github.com/kirinyoku/tixmarket/internal/repository"
	redisrepo "github.com/kirinyoku/tixmarket/internal/repository/redis"
	"github.com/samber/lo"
)

// LatestCount is how many tickets the landing page shows as latest.
const LatestCount = 6

var sortOrders = []string{"", "asc", "desc"}

type Config struct {
	ListTTL         time.Duration
	StatsTTL        time.Duration
	DefaultPageSize int
	MaxPageSize     int
}

// Service serves the read side: public listings and vendor statistics.
// Results are cached in Redis when a cache is configured.
type Service struct {
	store repository.Store
	cache *redisrepo.Cache
	cfg   Config
}

func New(store repository.Store, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.ListTTL <= 0 {
		cfg.ListTTL = 60 * time.Second
	}

	if cfg.StatsTTL <= 0 {
		cfg.StatsTTL = 30 * time.Second
	}

	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 6
	}

	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 60
	}

	return &Service{
		store: store,
		cache: cache,
		cfg:   cfg,
	}
}

type SearchParams struct {
	From  string
	To    string
	Type  string
	Sort  string
	Page  int
	Limit int
}

type SearchResult struct {
	Tickets    []domain.Ticket `json:"tickets"`
	Total      int             `json:"total"`
	TotalPages int             `json:"totalPages"`
}

// Search lists publicly visible tickets matching p.
//
// Parameters:
//   - ctx: request-scoped context.
//   - p: case-insensitive substring filters on from and to, an exact
//     transport type, price sort order and 1-based page.
//
// Returns:
//   - SearchResult: the page of tickets and the totals.
//   - error: domain.ValidationError if the type or sort order is unknown.
func (s *Service) Search(ctx context.Context, p SearchParams) (SearchResult, error) {
	const op = "service.query.Search"

	f, err := s.filter(p)
	if err != nil {
		return SearchResult{}, fmt.Errorf("%s: %w", op, err)
	}

	load := func(ctx context.Context) (SearchResult, error) {
		tickets, total, err := s.store.Tickets().ListPublic(ctx, f)
		if err != nil {
			return SearchResult{}, err
		}
		return SearchResult{
			Tickets:    tickets,
			Total:      total,
			TotalPages: (total + f.Limit - 1) / f.Limit,
		}, nil
	}

	res, err := cached(ctx, s, func(gen int64) string {
		return redisx.KeyTicketsSearch(gen, canonical(f))
	}, s.cfg.ListTTL, load)
	if err != nil {
		return SearchResult{}, fmt.Errorf("%s: %w", op, err)
	}

	return res, nil
}

// Latest returns the newest publicly visible tickets.
func (s *Service) Latest(ctx context.Context) ([]domain.Ticket, error) {
	const op = "service.query.Latest"

	out, err := cached(ctx, s, redisx.KeyTicketsLatest, s.cfg.ListTTL, func(ctx context.Context) ([]domain.Ticket, error) {
		tickets, _, err := s.store.Tickets().ListPublic(ctx, domain.TicketFilter{Limit: LatestCount})
		return tickets, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// Advertised returns the featured tickets.
func (s *Service) Advertised(ctx context.Context) ([]domain.Ticket, error) {
	const op = "service.query.Advertised"

	out, err := cached(ctx, s, redisx.KeyTicketsAdvertised, s.cfg.ListTTL, s.store.Tickets().ListAdvertised)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// VendorStats returns the revenue overview of the vendor owning email.
func (s *Service) VendorStats(ctx context.Context, actor domain.User, email string) (*domain.VendorStats, error) {
	const op = "service.query.VendorStats"

	if err := domain.CheckSelf(actor, email); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !actor.Role.CanSell() {
		return nil, fmt.Errorf("%s: %w", op, domain.ForbiddenError{Reason: "vendor privileges required"})
	}

	load := func(ctx context.Context) (domain.VendorStats, error) {
		st, err := s.store.Stats().VendorStats(ctx, actor.ID)
		if err != nil {
			return domain.VendorStats{}, err
		}
		return *st, nil
	}

	if s.cache == nil {
		st, err := load(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &st, nil
	}

	st, err := redisrepo.GetOrSetJSON(ctx, s.cache, redisx.KeyVendorStats(actor.ID.String()), s.cfg.StatsTTL, load)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &st, nil
}

func (s *Service) filter(p SearchParams) (domain.TicketFilter, error) {
	transport := domain.TransportType(strings.ToLower(strings.TrimSpace(p.Type)))
	if transport != "" && !transport.Valid() {
		return domain.TicketFilter{}, domain.ValidationError{Field: "type", Reason: "must be bus, train, launch or flight"}
	}

	sort := strings.ToLower(strings.TrimSpace(p.Sort))
	if !lo.Contains(sortOrders, sort) {
		return domain.TicketFilter{}, domain.ValidationError{Field: "sort", Reason: "must be asc or desc"}
	}

	limit := p.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultPageSize
	}
	limit = min(limit, s.cfg.MaxPageSize)

	page := max(p.Page, 1)

	return domain.TicketFilter{
		From:      strings.TrimSpace(p.From),
		To:        strings.TrimSpace(p.To),
		Transport: transport,
		SortPrice: sort,
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}, nil
}

// canonical renders f as a stable cache key suffix.
func canonical(f domain.TicketFilter) string {
	v := url.Values{}
	v.Set("from", strings.ToLower(f.From))
	v.Set("to", strings.ToLower(f.To))
	v.Set("type", string(f.Transport))
	v.Set("sort", f.SortPrice)
	v.Set("limit", strconv.Itoa(f.Limit))
	v.Set("offset", strconv.Itoa(f.Offset))
	return v.Encode()
}

// cached loads a listing through the generation-scoped cache. Bumping the
// generation on any listing change orphans every old entry at once.
func cached[T any](
	ctx context.Context,
	s *Service,
	key func(gen int64) string,
	ttl time.Duration,
	loader func(ctx context.Context) (T, error),
) (T, error) {
	if s.cache == nil {
		return loader(ctx)
	}

	gen, err := s.cache.Generation(ctx)
	if err != nil {
		return loader(ctx)
	}

	return redisrepo.GetOrSetJSON(ctx, s.cache, key(gen), ttl, loader)
}
