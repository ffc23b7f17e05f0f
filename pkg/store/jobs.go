package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/voltflow/crm/pkg/domain"
	"github.com/voltflow/crm/pkg/models"
)

var jobColumns = []string{
	"id", "client_id", "title", "description", "status", "priority", "assigned_technicians",
	"budget", "start_date", "end_date", "service_address", "created_at", "updated_at",
}

// JobFilter narrows List results
type JobFilter struct {
	ClientID int
	Status   models.JobStatus
	Priority models.JobPriority
}

// JobStats aggregates jobs per client
type JobStats struct {
	Count       int
	LastCreated time.Time
}

// JobStore persists jobs
type JobStore struct{ s *Store }

// Create inserts a job after checking the client exists. Status defaults to
// pending and priority to medium.
func (r *JobStore) Create(ctx context.Context, j *models.Job) (*models.Job, error) {
	if j.Status == "" {
		j.Status = models.JobStatusPending
	}
	if err := r.normalize(j); err != nil {
		return nil, err
	}
	if err := r.s.requireClient(ctx, j.ClientID); err != nil {
		return nil, err
	}

	now := r.s.now()
	id, err := r.s.insert(ctx, r.s.builder().Insert("jobs").
		Columns("client_id", "title", "description", "status", "priority", "assigned_technicians",
			"budget", "start_date", "end_date", "service_address", "created_at", "updated_at").
		Values(j.ClientID, j.Title, j.Description, j.Status, j.Priority, j.AssignedTechnicians,
			j.Budget, utc(j.StartDate), utc(j.EndDate), j.ServiceAddress, now, now))
	if err != nil {
		return nil, err
	}

	out := *j
	out.ID, out.CreatedAt, out.UpdatedAt = id, now, now
	out.StartDate, out.EndDate = utc(j.StartDate), utc(j.EndDate)
	return &out, nil
}

func (r *JobStore) normalize(j *models.Job) error {
	if j.Priority == "" {
		j.Priority = models.JobPriorityMedium
	}
	if j.AssignedTechnicians == nil {
		j.AssignedTechnicians = models.TechnicianIDs{}
	}
	if j.Status != "" {
		if err := validStatus(models.EntityJob, string(j.Status)); err != nil {
			return err
		}
	}
	if !j.Priority.Valid() {
		return domain.NewValidationError(fmt.Sprintf("invalid job priority: %q", j.Priority))
	}
	return nil
}

// Get returns one job or NotFound
func (r *JobStore) Get(ctx context.Context, id int) (*models.Job, error) {
	return getOne[models.Job](ctx, r.s, r.s.selectFrom("jobs", jobColumns...).Where(entsql.EQ("id", id)), "job")
}

// List returns jobs newest first
func (r *JobStore) List(ctx context.Context, f JobFilter) ([]models.Job, error) {
	sel := r.s.selectFrom("jobs", jobColumns...).OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	if f.ClientID != 0 {
		sel.Where(entsql.EQ("client_id", f.ClientID))
	}
	if f.Status != "" {
		sel.Where(entsql.EQ("status", f.Status))
	}
	if f.Priority != "" {
		sel.Where(entsql.EQ("priority", f.Priority))
	}
	out := []models.Job{}
	if err := r.s.scan(ctx, sel, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMany returns the jobs with the given ids keyed by id
func (r *JobStore) GetMany(ctx context.Context, ids []int) (map[int]models.Job, error) {
	out := make(map[int]models.Job, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Job
	if err := r.s.scan(ctx, r.s.selectFrom("jobs", jobColumns...).Where(entsql.In("id", intsToAny(ids)...)), &rows); err != nil {
		return nil, err
	}
	for _, j := range rows {
		out[j.ID] = j
	}
	return out, nil
}

// Update replaces the editable fields of a job. An empty status keeps the
// stored one.
func (r *JobStore) Update(ctx context.Context, id int, j *models.Job) (*models.Job, error) {
	if err := r.normalize(j); err != nil {
		return nil, err
	}
	if err := r.s.requireClient(ctx, j.ClientID); err != nil {
		return nil, err
	}

	upd := r.s.builder().Update("jobs").
		Set("client_id", j.ClientID).
		Set("title", j.Title).
		Set("description", j.Description).
		Set("priority", j.Priority).
		Set("assigned_technicians", j.AssignedTechnicians).
		Set("budget", j.Budget).
		Set("start_date", utc(j.StartDate)).
		Set("end_date", utc(j.EndDate)).
		Set("service_address", j.ServiceAddress).
		Set("updated_at", r.s.now())
	if j.Status != "" {
		upd.Set("status", j.Status)
	}
	if err := r.s.mustAffect(ctx, upd.Where(entsql.EQ("id", id)), "job"); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// UpdateStatus writes only the status column
func (r *JobStore) UpdateStatus(ctx context.Context, id int, status models.JobStatus) error {
	if err := validStatus(models.EntityJob, string(status)); err != nil {
		return err
	}
	return r.s.mustAffect(ctx, r.s.builder().Update("jobs").
		Set("status", status).
		Set("updated_at", r.s.now()).
		Where(entsql.EQ("id", id)), "job")
}

// UpdateSchedule writes the start and end dates of a job
func (r *JobStore) UpdateSchedule(ctx context.Context, id int, start, end time.Time) error {
	return r.s.mustAffect(ctx, r.s.builder().Update("jobs").
		Set("start_date", start.UTC()).
		Set("end_date", end.UTC()).
		Set("updated_at", r.s.now()).
		Where(entsql.EQ("id", id)), "job")
}

// Delete removes a job. Quotes and invoices pointing at it keep their rows.
func (r *JobStore) Delete(ctx context.Context, id int) error {
	return r.s.mustAffect(ctx, r.s.builder().Delete("jobs").Where(entsql.EQ("id", id)), "job")
}

// CountByStatus counts jobs in any of the given statuses, all jobs when none
func (r *JobStore) CountByStatus(ctx context.Context, statuses ...models.JobStatus) (int, error) {
	raw := make([]string, len(statuses))
	for i, s := range statuses {
		raw[i] = string(s)
	}
	return r.s.countIn(ctx, "jobs", raw...)
}

// EndingBetween returns jobs whose end date falls in [from, to], soonest first
func (r *JobStore) EndingBetween(ctx context.Context, from, to time.Time) ([]models.Job, error) {
	sel := r.s.selectFrom("jobs", jobColumns...).
		Where(entsql.And(
			entsql.NotNull("end_date"),
			entsql.GTE("end_date", from.UTC()),
			entsql.LTE("end_date", to.UTC()),
		)).
		OrderBy(entsql.Asc("end_date"))
	out := []models.Job{}
	if err := r.s.scan(ctx, sel, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type jobStatsRow struct {
	ClientID  int       `sql:"client_id"`
	CreatedAt time.Time `sql:"created_at"`
}

// StatsByClient returns job count and most recent creation time per client
func (r *JobStore) StatsByClient(ctx context.Context) (map[int]JobStats, error) {
	var rows []jobStatsRow
	if err := r.s.scan(ctx, r.s.selectFrom("jobs", "client_id", "created_at"), &rows); err != nil {
		return nil, err
	}
	out := make(map[int]JobStats)
	for _, row := range rows {
		st := out[row.ClientID]
		st.Count++
		if row.CreatedAt.After(st.LastCreated) {
			st.LastCreated = row.CreatedAt
		}
		out[row.ClientID] = st
	}
	return out, nil
}
