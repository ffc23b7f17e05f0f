package loaders

import (
	"context"
	"fmt"

	"github.com/voltflow/crm/pkg/listview"
	"github.com/voltflow/crm/pkg/models"
	"github.com/voltflow/crm/pkg/store"
)

// LeadCounts feeds the status tabs of the leads page
type LeadCounts struct {
	New       int `json:"new"`
	Contacted int `json:"contacted"`
	Qualified int `json:"qualified"`
	Lost      int `json:"lost"`
	Converted int `json:"converted"`
	All       int `json:"all"`
}

// LeadsPage is the leads list with its counts
type LeadsPage struct {
	Leads  []models.Lead `json:"leads"`
	Counts LeadCounts    `json:"counts"`
}

// LeadList builds the optimistic list backing the leads page
func (s *Service) LeadList(ctx context.Context) (*listview.List[models.Lead, int], error) {
	return listview.Load(ctx, listview.Config[models.Lead, int]{
		Key: func(l models.Lead) int { return l.ID },
		Fetch: func(ctx context.Context) ([]models.Lead, error) {
			rows, err := s.store.Leads().List(ctx, store.LeadFilter{})
			if err != nil {
				return nil, fmt.Errorf("failed to load leads: %w", err)
			}
			return rows, nil
		},
		Status: func(l models.Lead) string { return string(l.Status) },
		Search: func(l models.Lead) []string { return []string{l.Name, l.Email, l.Phone} },
	})
}

// Leads loads the leads page
func (s *Service) Leads(ctx context.Context, q Query) (*LeadsPage, error) {
	list, err := s.LeadList(ctx)
	if err != nil {
		return nil, err
	}
	return leadsPage(list, q), nil
}

func leadsPage(list *listview.List[models.Lead, int], q Query) *LeadsPage {
	c := list.Counts()
	return &LeadsPage{
		Leads: list.Filter(q.Search, q.Status),
		Counts: LeadCounts{
			New:       c[string(models.LeadStatusNew)],
			Contacted: c[string(models.LeadStatusContacted)],
			Qualified: c[string(models.LeadStatusQualified)],
			Lost:      c[string(models.LeadStatusLost)],
			Converted: c[string(models.LeadStatusConverted)],
			All:       c["all"],
		},
	}
}
