package reports

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/voltflow/crm/pkg/cache"
	"github.com/voltflow/crm/pkg/domain"
	"github.com/voltflow/crm/pkg/logger"
	"github.com/voltflow/crm/pkg/metrics"
	"github.com/voltflow/crm/pkg/models"
	"github.com/voltflow/crm/pkg/store"
)

// DefaultCacheTTL is how long a month of channel rows stays cached
const DefaultCacheTTL = 5 * time.Minute

const cachePrefix = "reports:channels:"

// ChannelSummary is a month of channel rows and their totals
type ChannelSummary struct {
	Month  string                 `json:"month"`
	Rows   []models.ChannelReport `json:"rows"`
	Totals Totals                 `json:"totals"`
}

// LeadSource counts leads per acquisition source
type LeadSource struct {
	Source    string `json:"source"`
	Total     int    `json:"total"`
	Qualified int    `json:"qualified"`
}

// Service reads and writes channel reports. The cache is optional.
type Service struct {
	store   *store.Store
	cache   *cache.Client
	ttl     time.Duration
	metrics *metrics.Metrics
	log     logger.Logger
}

// NewService creates a report service. A nil cache disables caching.
func NewService(st *store.Store, c *cache.Client, m *metrics.Metrics, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{store: st, cache: c, ttl: DefaultCacheTTL, metrics: m, log: log}
}

// WithCacheTTL overrides the cache lifetime
func (s *Service) WithCacheTTL(ttl time.Duration) *Service {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

func cacheKey(month string) string {
	if month == "" {
		return cachePrefix + "all"
	}
	return cachePrefix + month
}

// Channels returns the rows of a month ordered by channel, or every row when
// month is empty
func (s *Service) Channels(ctx context.Context, month string) ([]models.ChannelReport, error) {
	if month != "" && !ValidMonth(month) {
		return nil, domain.NewValidationError("month must be formatted as YYYY-MM")
	}

	key := cacheKey(month)
	if s.cache != nil {
		var rows []models.ChannelReport
		err := s.cache.GetJSON(ctx, key, &rows)
		if err == nil {
			s.metrics.RecordCacheHit("channels")
			return rows, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.log.Warn("channel report cache read failed", "key", key, "error", err)
		}
		s.metrics.RecordCacheMiss("channels")
	}

	rows, err := s.store.Channels().ListByMonth(ctx, month)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, rows, s.ttl); err != nil {
			s.log.Warn("channel report cache write failed", "key", key, "error", err)
		}
	}
	return rows, nil
}

// Summary returns a month of rows with totals
func (s *Service) Summary(ctx context.Context, month string) (*ChannelSummary, error) {
	rows, err := s.Channels(ctx, month)
	if err != nil {
		return nil, err
	}
	return &ChannelSummary{Month: month, Rows: rows, Totals: ComputeTotals(rows)}, nil
}

// Get returns one row
func (s *Service) Get(ctx context.Context, id int) (*models.ChannelReport, error) {
	return s.store.Channels().Get(ctx, id)
}

// Save creates the (month, channel) row or replaces the existing one
func (s *Service) Save(ctx context.Context, req models.ChannelReportRequest) (*models.ChannelReport, error) {
	row, err := fromRequest(req)
	if err != nil {
		return nil, err
	}
	out, err := s.store.Channels().Upsert(ctx, row)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return out, nil
}

// Update replaces a row by id
func (s *Service) Update(ctx context.Context, id int, req models.ChannelReportRequest) (*models.ChannelReport, error) {
	row, err := fromRequest(req)
	if err != nil {
		return nil, err
	}
	existing, err := s.store.Channels().FindByMonthChannel(ctx, row.Month, row.Channel)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != id {
		return nil, domain.NewConflictError(fmt.Sprintf("a %s report for %s already exists", row.Channel, row.Month))
	}
	out, err := s.store.Channels().Update(ctx, id, row)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return out, nil
}

// Delete removes a row
func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.store.Channels().Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, cachePrefix+"*"); err != nil {
		s.log.Warn("channel report cache invalidation failed", "error", err)
	}
}

// LeadSources counts leads per source. Blank sources are reported as
// "Unknown"; qualified counts qualified and converted leads.
func (s *Service) LeadSources(ctx context.Context) ([]LeadSource, error) {
	leads, err := s.store.Leads().List(ctx, store.LeadFilter{})
	if err != nil {
		return nil, err
	}

	bySource := map[string]*LeadSource{}
	for _, l := range leads {
		src := strings.TrimSpace(l.Source)
		if src == "" {
			src = "Unknown"
		}
		ls, ok := bySource[src]
		if !ok {
			ls = &LeadSource{Source: src}
			bySource[src] = ls
		}
		ls.Total++
		if l.Status == models.LeadStatusQualified || l.Status == models.LeadStatusConverted {
			ls.Qualified++
		}
	}

	out := make([]LeadSource, 0, len(bySource))
	for _, ls := range bySource {
		out = append(out, *ls)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Source < out[j].Source
	})
	return out, nil
}

func fromRequest(req models.ChannelReportRequest) (*models.ChannelReport, error) {
	if !ValidMonth(req.Month) {
		return nil, domain.NewValidationError("month must be formatted as YYYY-MM")
	}
	channel := strings.TrimSpace(req.Channel)
	if channel == "" {
		return nil, domain.NewValidationError("channel is required")
	}
	row := &models.ChannelReport{
		Month:   req.Month,
		Channel: channel,
		Cost:    req.Cost,
		Leads:   req.Leads,
		Jobs:    req.Jobs,
		Revenue: req.Revenue,
	}
	Derive(row)
	return row, nil
}
