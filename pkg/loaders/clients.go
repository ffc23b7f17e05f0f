package loaders

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/voltflow/crm/pkg/listview"
	"github.com/voltflow/crm/pkg/models"
	"github.com/voltflow/crm/pkg/store"
)

// Flow statuses shown on the clients page
const (
	FlowProspective = "Prospective"
	FlowActive      = "Active"
	FlowInactive    = "Inactive"
)

// ClientRow is a client enriched with job and revenue figures
type ClientRow struct {
	models.Client
	FlowStatus   string     `json:"flowStatus"`
	TotalJobs    int        `json:"totalJobs"`
	TotalRevenue float64    `json:"totalRevenue"`
	LastJobDate  *time.Time `json:"lastJobDate,omitempty"`
}

// ClientCounts feeds the metric cards of the clients page
type ClientCounts struct {
	Prospective int `json:"Prospective"`
	Active      int `json:"Active"`
	Inactive    int `json:"Inactive"`
	All         int `json:"All"`
}

// ClientsPage is the clients list with its counts
type ClientsPage struct {
	Clients []ClientRow  `json:"clients"`
	Counts  ClientCounts `json:"counts"`
}

// FlowStatus derives the display status of a client
func FlowStatus(s models.ClientStatus) string {
	switch s {
	case models.ClientStatusInactive:
		return FlowInactive
	case models.ClientStatusActive:
		return FlowActive
	default:
		return FlowProspective
	}
}

// ClientList builds the optimistic list backing the clients page
func (s *Service) ClientList(ctx context.Context) (*listview.List[ClientRow, int], error) {
	return listview.Load(ctx, listview.Config[ClientRow, int]{
		Key:    func(r ClientRow) int { return r.ID },
		Fetch:  s.clientRows,
		Status: func(r ClientRow) string { return r.FlowStatus },
		Search: func(r ClientRow) []string { return []string{r.Name, r.Email} },
	})
}

// Clients loads the clients page. Status filters on the flow status.
func (s *Service) Clients(ctx context.Context, q Query) (*ClientsPage, error) {
	list, err := s.ClientList(ctx)
	if err != nil {
		return nil, err
	}
	c := list.Counts()
	return &ClientsPage{
		Clients: list.Filter(q.Search, q.Status),
		Counts: ClientCounts{
			Prospective: c[FlowProspective],
			Active:      c[FlowActive],
			Inactive:    c[FlowInactive],
			All:         c["all"],
		},
	}, nil
}

func (s *Service) clientRows(ctx context.Context) ([]ClientRow, error) {
	clients, err := s.store.Clients().List(ctx, store.ClientFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load clients: %w", err)
	}
	jobStats, err := s.store.Jobs().StatsByClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load job stats: %w", err)
	}
	revenue, err := s.store.Invoices().SumPaidByClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load revenue: %w", err)
	}

	rows := make([]ClientRow, len(clients))
	for i, c := range clients {
		rows[i] = ClientRow{
			Client:       c,
			FlowStatus:   FlowStatus(c.Status),
			TotalRevenue: revenue[c.ID],
		}
		if st, ok := jobStats[c.ID]; ok {
			rows[i].TotalJobs = st.Count
			last := st.LastCreated
			rows[i].LastJobDate = &last
		}
	}
	return rows, nil
}

// ClientDetail is a client with its quotes, jobs and invoices
type ClientDetail struct {
	Client   *models.Client   `json:"client"`
	Quotes   []models.Quote   `json:"quotes"`
	Jobs     []models.Job     `json:"jobs"`
	Invoices []models.Invoice `json:"invoices"`
}

// Client loads the client detail page
func (s *Service) Client(ctx context.Context, id int) (*ClientDetail, error) {
	c, err := s.store.Clients().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	quotes, err := s.store.Quotes().ListByClient(ctx, id)
	if err != nil {
		return nil, err
	}
	jobs, err := s.store.Jobs().List(ctx, store.JobFilter{ClientID: id})
	if err != nil {
		return nil, err
	}
	invoices, err := s.store.Invoices().List(ctx, store.InvoiceFilter{ClientID: id})
	if err != nil {
		return nil, err
	}
	return &ClientDetail{Client: c, Quotes: quotes, Jobs: jobs, Invoices: invoices}, nil
}

func itoa(id int) string { return strconv.Itoa(id) }
