package loaders

import (
	"context"
	"fmt"

	"github.com/voltflow/crm/pkg/listview"
	"github.com/voltflow/crm/pkg/models"
	"github.com/voltflow/crm/pkg/store"
)

// JobRow is a job with its client and technician names
type JobRow struct {
	models.Job
	ClientName      string   `json:"clientName"`
	ClientAddress   string   `json:"clientAddress,omitempty"`
	TechnicianNames []string `json:"technicianNames"`
}

// JobCounts feeds the status tabs of the jobs page
type JobCounts struct {
	All        int `json:"all"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
}

// JobsPage is the jobs list with its counts
type JobsPage struct {
	Jobs   []JobRow  `json:"jobs"`
	Counts JobCounts `json:"counts"`
}

// JobList builds the optimistic list backing the jobs page
func (s *Service) JobList(ctx context.Context) (*listview.List[JobRow, int], error) {
	return listview.Load(ctx, listview.Config[JobRow, int]{
		Key:    func(r JobRow) int { return r.ID },
		Fetch:  s.jobRows,
		Status: func(r JobRow) string { return string(r.Status) },
		Search: func(r JobRow) []string { return []string{itoa(r.ID), r.ClientName, r.Title} },
	})
}

// Jobs loads the jobs page
func (s *Service) Jobs(ctx context.Context, q Query) (*JobsPage, error) {
	list, err := s.JobList(ctx)
	if err != nil {
		return nil, err
	}
	c := list.Counts()

	rows := list.Filter(q.Search, q.Status)
	if q.Priority != "" && q.Priority != "all" {
		filtered := rows[:0]
		for _, r := range rows {
			if string(r.Priority) == q.Priority {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	return &JobsPage{
		Jobs: rows,
		Counts: JobCounts{
			All:        c["all"],
			Pending:    c[string(models.JobStatusPending)],
			InProgress: c[string(models.JobStatusInProgress)],
			Completed:  c[string(models.JobStatusCompleted)],
			Cancelled:  c[string(models.JobStatusCancelled)],
		},
	}, nil
}

func (s *Service) jobRows(ctx context.Context) ([]JobRow, error) {
	jobs, err := s.store.Jobs().ListWithClient(ctx, store.JobFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load jobs: %w", err)
	}
	techs, err := s.store.Technicians().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load technicians: %w", err)
	}
	names := make(map[string]string, len(techs))
	for _, t := range techs {
		names[itoa(t.ID)] = t.Name
	}

	rows := make([]JobRow, len(jobs))
	for i, j := range jobs {
		rows[i] = JobRow{Job: j.Job, TechnicianNames: make([]string, 0, len(j.AssignedTechnicians))}
		if j.Client != nil {
			rows[i].ClientName = j.Client.Name
			rows[i].ClientAddress = j.Client.Address
		}
		for _, id := range j.AssignedTechnicians {
			if n, ok := names[id]; ok {
				rows[i].TechnicianNames = append(rows[i].TechnicianNames, n)
			}
		}
	}
	return rows, nil
}

// Technicians loads the technicians page
func (s *Service) Technicians(ctx context.Context) ([]models.Technician, error) {
	return s.store.Technicians().List(ctx)
}
