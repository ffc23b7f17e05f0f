package store

import (
	"context"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/voltflow/crm/pkg/models"
)

var channelColumns = []string{
	"id", "month", "channel", "cost", "leads", "jobs", "revenue",
	"close_rate", "cost_per_lead", "roi", "created_at",
}

// ChannelStore persists monthly channel reports
type ChannelStore struct{ s *Store }

// ListByMonth returns the rows of a month ordered by channel. An empty
// month returns every row, newest month first.
func (r *ChannelStore) ListByMonth(ctx context.Context, month string) ([]models.ChannelReport, error) {
	sel := r.s.selectFrom("channels_report", channelColumns...)
	if month != "" {
		sel.Where(entsql.EQ("month", month)).OrderBy(entsql.Asc("channel"))
	} else {
		sel.OrderBy(entsql.Desc("month"), entsql.Asc("channel"))
	}
	out := []models.ChannelReport{}
	if err := r.s.scan(ctx, sel, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one row or NotFound
func (r *ChannelStore) Get(ctx context.Context, id int) (*models.ChannelReport, error) {
	return getOne[models.ChannelReport](ctx, r.s, r.s.selectFrom("channels_report", channelColumns...).Where(entsql.EQ("id", id)), "channel report")
}

// FindByMonthChannel returns the row for (month, channel) or nil
func (r *ChannelStore) FindByMonthChannel(ctx context.Context, month, channel string) (*models.ChannelReport, error) {
	var out []models.ChannelReport
	sel := r.s.selectFrom("channels_report", channelColumns...).
		Where(entsql.And(entsql.EQ("month", month), entsql.EQ("channel", channel))).
		Limit(1)
	if err := r.s.scan(ctx, sel, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

// Create inserts a row; derived metrics must already be computed
func (r *ChannelStore) Create(ctx context.Context, c *models.ChannelReport) (*models.ChannelReport, error) {
	now := r.s.now()
	id, err := r.s.insert(ctx, r.s.builder().Insert("channels_report").
		Columns("month", "channel", "cost", "leads", "jobs", "revenue", "close_rate", "cost_per_lead", "roi", "created_at").
		Values(c.Month, c.Channel, c.Cost, c.Leads, c.Jobs, c.Revenue, c.CloseRate, c.CostPerLead, c.ROI, now))
	if err != nil {
		return nil, err
	}
	out := *c
	out.ID, out.CreatedAt = id, now
	return &out, nil
}

// Update replaces a row
func (r *ChannelStore) Update(ctx context.Context, id int, c *models.ChannelReport) (*models.ChannelReport, error) {
	err := r.s.mustAffect(ctx, r.s.builder().Update("channels_report").
		Set("month", c.Month).
		Set("channel", c.Channel).
		Set("cost", c.Cost).
		Set("leads", c.Leads).
		Set("jobs", c.Jobs).
		Set("revenue", c.Revenue).
		Set("close_rate", c.CloseRate).
		Set("cost_per_lead", c.CostPerLead).
		Set("roi", c.ROI).
		Where(entsql.EQ("id", id)), "channel report")
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Upsert creates the (month, channel) row or replaces the existing one
func (r *ChannelStore) Upsert(ctx context.Context, c *models.ChannelReport) (*models.ChannelReport, error) {
	existing, err := r.FindByMonthChannel(ctx, c.Month, c.Channel)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return r.Create(ctx, c)
	}
	return r.Update(ctx, existing.ID, c)
}

// Delete removes a row
func (r *ChannelStore) Delete(ctx context.Context, id int) error {
	return r.s.mustAffect(ctx, r.s.builder().Delete("channels_report").Where(entsql.EQ("id", id)), "channel report")
}

type revenueTotal struct {
	Total *float64 `sql:"total"`
}

// RevenueForMonth sums revenue across channels of a month
func (r *ChannelStore) RevenueForMonth(ctx context.Context, month string) (float64, error) {
	var rows []revenueTotal
	sel := r.s.selectFrom("channels_report", entsql.As(entsql.Sum("revenue"), "total")).Where(entsql.EQ("month", month))
	if err := r.s.scan(ctx, sel, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 || rows[0].Total == nil {
		return 0, nil
	}
	return *rows[0].Total, nil
}
