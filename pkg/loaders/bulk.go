package loaders

import (
	"context"
	"errors"

	"github.com/voltflow/crm/pkg/listview"
	"github.com/voltflow/crm/pkg/models"
)

// BulkFailure is a row a bulk action could not apply
type BulkFailure struct {
	ID    int    `json:"id"`
	Error string `json:"error"`
}

// LeadsBulkResult is the leads page after a bulk action
type LeadsBulkResult struct {
	LeadsPage
	Failed []BulkFailure `json:"failed"`
}

// StatusFunc stores a status change for one row and returns the status the
// row ended up in
type StatusFunc func(ctx context.Context, id int) (string, error)

// BulkLeadStatus moves each lead to status, updating the page rows before
// change runs. A failed row is reported and the rows are re-fetched, so the
// returned page matches what is stored.
func (s *Service) BulkLeadStatus(ctx context.Context, ids []int, status string, change StatusFunc) (*LeadsBulkResult, error) {
	list, err := s.LeadList(ctx)
	if err != nil {
		return nil, err
	}

	var failed []BulkFailure
	settled := true
	for _, id := range ids {
		err := list.Apply(ctx, id,
			func(l models.Lead) models.Lead {
				l.Status = models.LeadStatus(status)
				return l
			},
			func(ctx context.Context) error {
				got, err := change(ctx, id)
				if err == nil && got != status {
					settled = false
				}
				return err
			})
		if err != nil {
			failed = append(failed, bulkFailure(id, err))
		}
	}
	// auto conversion moves qualified leads on to converted
	if !settled {
		if err := list.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	return &LeadsBulkResult{LeadsPage: *leadsPage(list, Query{}), Failed: failed}, nil
}

// BulkDeleteLeads removes each lead from the page and the store
func (s *Service) BulkDeleteLeads(ctx context.Context, ids []int) (*LeadsBulkResult, error) {
	list, err := s.LeadList(ctx)
	if err != nil {
		return nil, err
	}

	var failed []BulkFailure
	for _, id := range ids {
		err := list.Remove(ctx, id, func(ctx context.Context) error {
			return s.store.Leads().Delete(ctx, id)
		})
		if err != nil {
			failed = append(failed, bulkFailure(id, err))
		}
	}
	return &LeadsBulkResult{LeadsPage: *leadsPage(list, Query{}), Failed: failed}, nil
}

func bulkFailure(id int, err error) BulkFailure {
	if errors.Is(err, listview.ErrRowNotFound) {
		return BulkFailure{ID: id, Error: "lead not found"}
	}
	return BulkFailure{ID: id, Error: err.Error()}
}
