package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/voltflow/crm/pkg/api/errors"
	"github.com/voltflow/crm/pkg/calendar"
	"github.com/voltflow/crm/pkg/domain"
	"github.com/voltflow/crm/pkg/lifecycle"
	"github.com/voltflow/crm/pkg/loaders"
	"github.com/voltflow/crm/pkg/models"
	"github.com/voltflow/crm/pkg/notify"
	"github.com/voltflow/crm/pkg/store"
)

// JobHandler handles job and scheduling endpoints
type JobHandler struct {
	store     *store.Store
	loaders   *loaders.Service
	lifecycle *lifecycle.Service
	notify    *notify.Service
}

// NewJobHandler creates a new job handler
func NewJobHandler(st *store.Store, ld *loaders.Service, lc *lifecycle.Service, n *notify.Service) *JobHandler {
	return &JobHandler{store: st, loaders: ld, lifecycle: lc, notify: n}
}

func jobFromRequest(req models.JobRequest) *models.Job {
	return &models.Job{
		ClientID:            req.ClientID,
		Title:               req.Title,
		Description:         req.Description,
		Status:              models.JobStatus(req.Status),
		Priority:            models.JobPriority(req.Priority),
		AssignedTechnicians: models.TechnicianIDs(req.AssignedTechnicians),
		Budget:              req.Budget,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		ServiceAddress:      req.ServiceAddress,
	}
}

// List godoc
// @Summary List jobs
// @Description Jobs page with client names and counts.
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Param search query string false "Free text search"
// @Param status query string false "pending, in_progress, completed, cancelled or all"
// @Param priority query string false "low, medium, high or urgent"
// @Success 200 {object} loaders.JobsPage
// @Router /jobs [get]
func (h *JobHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.loaders.Jobs(ctx, pageQuery(c))
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// Create godoc
// @Summary Create a job
// @Tags Jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.JobRequest true "Job"
// @Success 201 {object} models.Job
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Router /jobs [post]
func (h *JobHandler) Create(c echo.Context) error {
	var req models.JobRequest
	if err := bind(c, &req); err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	job, err := h.store.Jobs().Create(ctx, jobFromRequest(req))
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusCreated, job)
}

// Get godoc
// @Summary Get job by ID
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Job ID"
// @Success 200 {object} models.Job
// @Failure 404 {object} models.ErrorResponse "Job not found"
// @Router /jobs/{id} [get]
func (h *JobHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	job, err := h.store.Jobs().Get(ctx, id)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, job)
}

// Update godoc
// @Summary Update a job
// @Description Omitting status keeps the stored one; a new status goes through the transition policy.
// @Tags Jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Job ID"
// @Param request body models.JobRequest true "Job"
// @Success 200 {object} models.Job
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 404 {object} models.ErrorResponse "Job not found"
// @Failure 409 {object} models.ErrorResponse "Transition not allowed"
// @Router /jobs/{id} [put]
func (h *JobHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}
	var req models.JobRequest
	if err := bind(c, &req); err != nil {
		return errors.FromDomain(c, err)
	}

	j := jobFromRequest(req)
	j.Status = ""
	return updateEntity(c, h.lifecycle, models.EntityJob, id, req.Status, func(ctx context.Context) error {
		_, err := h.store.Jobs().Update(ctx, id, j)
		return err
	}, h.store.Jobs().Get)
}

// Delete godoc
// @Summary Delete a job
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Job ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse "Job not found"
// @Router /jobs/{id} [delete]
func (h *JobHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.store.Jobs().Delete(ctx, id); err != nil {
		return errors.FromDomain(c, err)
	}
	return deleted(c, "Job")
}

// UpdateStatus godoc
// @Summary Change a job's status
// @Tags Jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Job ID"
// @Param request body models.StatusUpdateRequest true "New status"
// @Success 200 {object} lifecycle.Change
// @Failure 400 {object} models.ErrorResponse "Invalid status"
// @Failure 404 {object} models.ErrorResponse "Job not found"
// @Failure 409 {object} models.ErrorResponse "Transition not allowed"
// @Router /jobs/{id}/status [patch]
func (h *JobHandler) UpdateStatus(c echo.Context) error {
	return changeStatus(c, h.lifecycle, models.EntityJob)
}

// Schedule godoc
// @Summary Schedule a job
// @Description Writes the job window and mirrors it into the calendar. Calendar failures do not fail the request.
// @Tags Jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path integer true "Job ID"
// @Param request body models.ScheduleRequest true "Window"
// @Success 200 {object} notify.ScheduleResult
// @Router /jobs/{id}/schedule [post]
func (h *JobHandler) Schedule(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return errors.FromDomain(c, err)
	}
	var req models.ScheduleRequest
	if err := bind(c, &req); err != nil {
		return errors.FromDomain(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.notify.ScheduleJob(ctx, id, req.StartDate, req.EndDate)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// scheduleJobBody accepts both a job window and a free-standing event
type scheduleJobBody struct {
	JobID       int        `json:"jobId"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Start       *time.Time `json:"start"`
}

// UpcomingEvents godoc
// @Summary Upcoming calendar events
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]calendar.Event
// @Failure 502 {object} models.ErrorResponse "Calendar failed"
// @Router /schedule-job [get]
func (h *JobHandler) UpcomingEvents(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	events, err := h.notify.UpcomingEvents(ctx)
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, map[string][]calendar.Event{"events": events})
}

// ScheduleJob godoc
// @Summary Schedule a job or create an event
// @Description Schedules the job when jobId is set, otherwise creates a one-hour event from title and start.
// @Tags Jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body handlers.scheduleJobBody true "Job window or event"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 404 {object} models.ErrorResponse "Job not found"
// @Router /schedule-job [post]
func (h *JobHandler) ScheduleJob(c echo.Context) error {
	var body scheduleJobBody
	if err := c.Bind(&body); err != nil {
		return errors.FromDomain(c, domain.NewBadRequestError("Invalid request body"))
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if body.JobID > 0 {
		req := models.ScheduleJobRequest{JobID: body.JobID}
		if body.StartDate != nil {
			req.StartDate = *body.StartDate
		}
		if body.EndDate != nil {
			req.EndDate = *body.EndDate
		}
		if err := c.Validate(&req); err != nil {
			return errors.FromDomain(c, err)
		}
		res, err := h.notify.ScheduleJob(ctx, req.JobID, req.StartDate, req.EndDate)
		if err != nil {
			return errors.FromDomain(c, err)
		}
		return c.JSON(http.StatusOK, map[string]any{"success": true, "job": res.Job, "eventId": res.EventID})
	}

	req := models.CalendarEventRequest{Title: body.Title, Description: body.Description}
	if body.Start != nil {
		req.Start = *body.Start
	}
	if err := c.Validate(&req); err != nil {
		return errors.FromDomain(c, err)
	}
	ev, err := h.notify.CreateEvent(ctx, calendar.Event{Summary: req.Title, Description: req.Description, Start: req.Start})
	if err != nil {
		return errors.FromDomain(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "eventId": ev.ID})
}
