package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lifeflow/blood-bank/internal/core/ports"
	"github.com/lifeflow/blood-bank/internal/pkg/metrics"
)

// anyABOType matches every recognised blood type; used when the query does
// not restrict the ABO component.
const anyABOType = "(A|B|O|AB)"

// anyRhSign matches either Rh sign; used when the query does not restrict it.
const anyRhSign = "[+-]"

// SearchCache abstracts the short-TTL result-page cache (Redis). Lookups are
// best-effort: search reads only need to be eventually consistent with the
// latest committed writes, so a cached page within its TTL is acceptable.
type SearchCache interface {
	Get(ctx context.Context, filter ports.SearchFilter) ([]ports.DonorSummary, bool, error)
	Put(ctx context.Context, filter ports.SearchFilter, page []ports.DonorSummary) error
}

// SearchService compiles raw compatibility queries into safe store filters
// and returns ranked result pages.
type SearchService struct {
	repo   ports.DonorRepository
	cache  SearchCache
	logger zerolog.Logger
}

func NewSearchService(repo ports.DonorRepository, cache SearchCache, logger zerolog.Logger) *SearchService {
	return &SearchService{repo: repo, cache: cache, logger: logger}
}

// compileFilter turns loosely-structured client input into a deterministic
// filter. User-supplied fragments are escaped as literals so they can never
// alter query semantics; absent fields widen the match instead.
func compileFilter(in ports.SearchInput) ports.SearchFilter {
	blood := anyABOType
	if in.BloodType != "" {
		blood = regexp.QuoteMeta(strings.ToUpper(in.BloodType))
	}
	if in.RhFactor != "" {
		blood += regexp.QuoteMeta(in.RhFactor)
	} else {
		blood += anyRhSign
	}

	city := ""
	if in.City != "" {
		city = regexp.QuoteMeta(in.City)
	}

	page := in.Page
	if page < 1 {
		page = 1
	}

	return ports.SearchFilter{BloodGroupPattern: blood, CityPattern: city, Page: page}
}

// Search runs a compatibility query: compile the filter, try the cache, fall
// through to the store, cache the page on the way out. Cache failures are
// logged and never fail the query.
func (s *SearchService) Search(ctx context.Context, in ports.SearchInput) (*ports.SearchResult, error) {
	filter := compileFilter(in)
	started := time.Now()

	if page, ok, err := s.cache.Get(ctx, filter); err != nil {
		s.logger.Warn().Err(err).Msg("search cache lookup failed, querying store")
	} else if ok {
		metrics.SearchCacheTotal.WithLabelValues("hit").Inc()
		metrics.SearchDuration.Observe(time.Since(started).Seconds())
		return &ports.SearchResult{Donors: page, Page: filter.Page, Identified: in.Identified}, nil
	}
	metrics.SearchCacheTotal.WithLabelValues("miss").Inc()

	donors, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search donors: %w", err)
	}

	page := make([]ports.DonorSummary, len(donors))
	for i, d := range donors {
		page[i] = ports.DonorSummary{
			Name:       d.Name,
			BloodGroup: d.BloodGroup,
			City:       d.City,
			Phone:      d.Phone,
			Amount:     d.Amount,
		}
	}

	if err := s.cache.Put(ctx, filter, page); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache search page")
	}

	metrics.SearchDuration.Observe(time.Since(started).Seconds())
	return &ports.SearchResult{Donors: page, Page: filter.Page, Identified: in.Identified}, nil
}
