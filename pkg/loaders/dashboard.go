package loaders

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/voltflow/crm/pkg/models"
)

// DeadlineWindow is how far ahead upcoming deadlines are listed
const DeadlineWindow = 30 * 24 * time.Hour

// DashboardStats are the headline figures of the dashboard
type DashboardStats struct {
	ActiveJobs     int     `json:"activeJobs"`
	PendingQuotes  int     `json:"pendingQuotes"`
	UnpaidInvoices int     `json:"unpaidInvoices"`
	TotalClients   int     `json:"totalClients"`
	TotalRevenue   float64 `json:"totalRevenue"`
}

// Dashboard loads the dashboard figures. Revenue is the current month's
// channel report total.
func (s *Service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var (
		out DashboardStats
		err error
	)
	if out.ActiveJobs, err = s.store.Jobs().CountByStatus(ctx, models.JobStatusPending, models.JobStatusInProgress); err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}
	if out.PendingQuotes, err = s.store.Quotes().CountByStatus(ctx, models.QuoteStatusDraft, models.QuoteStatusSent); err != nil {
		return nil, fmt.Errorf("failed to count quotes: %w", err)
	}
	if out.UnpaidInvoices, err = s.store.Invoices().CountByStatus(ctx, models.InvoiceStatusSent, models.InvoiceStatusOverdue); err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}
	if out.TotalClients, err = s.store.Clients().Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count clients: %w", err)
	}
	if out.TotalRevenue, err = s.store.Channels().RevenueForMonth(ctx, s.now().Format("2006-01")); err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return &out, nil
}

// Deadline is a job end date or invoice due date
type Deadline struct {
	Kind     string    `json:"kind"` // job | invoice
	ID       int       `json:"id"`
	Title    string    `json:"title"`
	Date     time.Time `json:"date"`
	Status   string    `json:"status"`
	ClientID int       `json:"client_id"`
}

// UpcomingDeadlines lists job end dates and invoice due dates in the next
// 30 days, soonest first
func (s *Service) UpcomingDeadlines(ctx context.Context) ([]Deadline, error) {
	from := s.now()
	to := from.Add(DeadlineWindow)

	jobs, err := s.store.Jobs().EndingBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load job deadlines: %w", err)
	}
	invoices, err := s.store.Invoices().DueBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice deadlines: %w", err)
	}

	out := make([]Deadline, 0, len(jobs)+len(invoices))
	for _, j := range jobs {
		out = append(out, Deadline{Kind: "job", ID: j.ID, Title: j.Title, Date: *j.EndDate, Status: string(j.Status), ClientID: j.ClientID})
	}
	for _, inv := range invoices {
		out = append(out, Deadline{
			Kind: "invoice", ID: inv.ID, Title: fmt.Sprintf("Invoice #%d", inv.ID),
			Date: *inv.DueDate, Status: string(inv.Status), ClientID: inv.ClientID,
		})
	}
	sort.SliceStable(out, func(i, k int) bool { return out[i].Date.Before(out[k].Date) })
	return out, nil
}
