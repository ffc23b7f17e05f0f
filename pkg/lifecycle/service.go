package lifecycle

import (
	"context"

	"github.com/voltflow/crm/pkg/domain"
	"github.com/voltflow/crm/pkg/logger"
	"github.com/voltflow/crm/pkg/metrics"
	"github.com/voltflow/crm/pkg/models"
	"github.com/voltflow/crm/pkg/store"
)

// LeadConverter turns a lead into a client
type LeadConverter interface {
	ConvertLeadToClient(ctx context.Context, leadID int) (*models.Client, error)
}

// Change describes an applied status change
type Change struct {
	Entity string         `json:"entity"`
	ID     int            `json:"id"`
	From   string         `json:"from"`
	To     string         `json:"to"`
	Client *models.Client `json:"client,omitempty"` // set when a lead was converted
}

// Service applies status changes through a TransitionPolicy
type Service struct {
	store       *store.Store
	policy      TransitionPolicy
	converter   LeadConverter
	autoConvert bool
	metrics     *metrics.Metrics
	log         logger.Logger
}

// Option configures a Service
type Option func(*Service)

// WithPolicy replaces the default permissive policy
func WithPolicy(p TransitionPolicy) Option {
	return func(s *Service) { s.policy = p }
}

// WithAutoConvert converts leads to clients when they become qualified
func WithAutoConvert(c LeadConverter) Option {
	return func(s *Service) {
		s.converter = c
		s.autoConvert = c != nil
	}
}

// WithMetrics records status changes
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the service logger
func WithLogger(l logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService creates a lifecycle service
func NewService(st *store.Store, opts ...Option) *Service {
	s := &Service{
		store:  st,
		policy: PermissivePolicy{},
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the active transition policy
func (s *Service) Policy() TransitionPolicy {
	return s.policy
}

// ChangeStatus moves an entity to a new status. Setting the current status
// again is a no-op. A lead set to qualified is converted to a client when
// auto conversion is enabled and ends up converted.
func (s *Service) ChangeStatus(ctx context.Context, entity string, id int, status string) (*Change, error) {
	from, err := s.currentStatus(ctx, entity, id)
	if err != nil {
		return nil, err
	}

	change := &Change{Entity: entity, ID: id, From: from, To: status}
	if from == status {
		return change, nil
	}
	if err := s.policy.Allow(entity, from, status); err != nil {
		return nil, err
	}

	if entity == models.EntityLead && status == string(models.LeadStatusQualified) && s.autoConvert {
		client, err := s.converter.ConvertLeadToClient(ctx, id)
		if err != nil {
			return nil, err
		}
		change.To = string(models.LeadStatusConverted)
		change.Client = client
		s.metrics.RecordStatusChange(entity)
		s.log.Info("lead qualified and converted", "lead_id", id, "client_id", client.ID)
		return change, nil
	}

	if err := s.write(ctx, entity, id, status); err != nil {
		return nil, err
	}

	s.metrics.RecordStatusChange(entity)
	s.log.Debug("status changed", "entity", entity, "id", id, "from", from, "to", status)
	return change, nil
}

// Update applies an edit of the non-status fields and then moves the entity
// to status through ChangeStatus. The transition is checked against the
// policy before apply runs, so a rejected status leaves the row untouched.
// An empty status only runs apply.
func (s *Service) Update(ctx context.Context, entity string, id int, status string, apply func(context.Context) error) (*Change, error) {
	if status != "" {
		from, err := s.currentStatus(ctx, entity, id)
		if err != nil {
			return nil, err
		}
		if from != status {
			if err := s.policy.Allow(entity, from, status); err != nil {
				return nil, err
			}
		}
	}

	if err := apply(ctx); err != nil {
		return nil, err
	}
	if status == "" {
		return nil, nil
	}
	return s.ChangeStatus(ctx, entity, id, status)
}

func (s *Service) currentStatus(ctx context.Context, entity string, id int) (string, error) {
	switch entity {
	case models.EntityLead:
		l, err := s.store.Leads().Get(ctx, id)
		if err != nil {
			return "", err
		}
		return string(l.Status), nil
	case models.EntityClient:
		c, err := s.store.Clients().Get(ctx, id)
		if err != nil {
			return "", err
		}
		return string(c.Status), nil
	case models.EntityQuote:
		q, err := s.store.Quotes().Get(ctx, id)
		if err != nil {
			return "", err
		}
		return string(q.Status), nil
	case models.EntityJob:
		j, err := s.store.Jobs().Get(ctx, id)
		if err != nil {
			return "", err
		}
		return string(j.Status), nil
	case models.EntityInvoice:
		inv, err := s.store.Invoices().Get(ctx, id)
		if err != nil {
			return "", err
		}
		return string(inv.Status), nil
	case models.EntityTechnician:
		t, err := s.store.Technicians().Get(ctx, id)
		if err != nil {
			return "", err
		}
		return string(t.Status), nil
	}
	return "", domain.NewBadRequestError("unknown entity: " + entity)
}

func (s *Service) write(ctx context.Context, entity string, id int, status string) error {
	switch entity {
	case models.EntityLead:
		return s.store.Leads().UpdateStatus(ctx, id, models.LeadStatus(status))
	case models.EntityClient:
		return s.store.Clients().UpdateStatus(ctx, id, models.ClientStatus(status))
	case models.EntityQuote:
		return s.store.Quotes().UpdateStatus(ctx, id, models.QuoteStatus(status))
	case models.EntityJob:
		return s.store.Jobs().UpdateStatus(ctx, id, models.JobStatus(status))
	case models.EntityInvoice:
		return s.store.Invoices().UpdateStatus(ctx, id, models.InvoiceStatus(status))
	case models.EntityTechnician:
		t, err := s.store.Technicians().Get(ctx, id)
		if err != nil {
			return err
		}
		t.Status = models.TechnicianStatus(status)
		_, err = s.store.Technicians().Update(ctx, id, t)
		return err
	}
	return domain.NewBadRequestError("unknown entity: " + entity)
}
