// Package reports computes marketing channel performance and lead source
// summaries.
package reports

import (
	"fmt"
	"time"

	"github.com/voltflow/crm/pkg/models"
)

// MonthLayout is the YYYY-MM format of report months
const MonthLayout = "2006-01"

// Totals aggregates the rows of a month
type Totals struct {
	Cost      float64 `json:"cost"`
	Leads     int     `json:"leads"`
	Jobs      int     `json:"jobs"`
	Revenue   float64 `json:"revenue"`
	CloseRate float64 `json:"close_rate"`
	ROI       float64 `json:"roi"`
}

// CloseRate is jobs per lead as a percentage
func CloseRate(jobs, leads int) float64 {
	if leads == 0 {
		return 0
	}
	return float64(jobs) / float64(leads) * 100
}

// CostPerLead is spend divided by leads
func CostPerLead(cost float64, leads int) float64 {
	if leads == 0 {
		return 0
	}
	return cost / float64(leads)
}

// ROI is return on spend as a percentage
func ROI(revenue, cost float64) float64 {
	if cost == 0 {
		return 0
	}
	return (revenue - cost) / cost * 100
}

// Derive recomputes the stored metrics of a row from its raw inputs
func Derive(r *models.ChannelReport) {
	r.CloseRate = CloseRate(r.Jobs, r.Leads)
	r.CostPerLead = CostPerLead(r.Cost, r.Leads)
	r.ROI = ROI(r.Revenue, r.Cost)
}

// ComputeTotals sums rows and derives the overall close rate and ROI
func ComputeTotals(rows []models.ChannelReport) Totals {
	var t Totals
	for _, r := range rows {
		t.Cost += r.Cost
		t.Leads += r.Leads
		t.Jobs += r.Jobs
		t.Revenue += r.Revenue
	}
	t.CloseRate = CloseRate(t.Jobs, t.Leads)
	t.ROI = ROI(t.Revenue, t.Cost)
	return t
}

// ValidMonth reports whether s is a YYYY-MM month
func ValidMonth(s string) bool {
	_, err := time.Parse(MonthLayout, s)
	return err == nil
}

// ShiftMonth moves a YYYY-MM month by delta months
func ShiftMonth(month string, delta int) (string, error) {
	t, err := time.Parse(MonthLayout, month)
	if err != nil {
		return "", fmt.Errorf("invalid month %q: %w", month, err)
	}
	return t.AddDate(0, delta, 0).Format(MonthLayout), nil
}

// CurrentMonth formats t as a report month
func CurrentMonth(t time.Time) string {
	return t.Format(MonthLayout)
}
