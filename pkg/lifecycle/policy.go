package lifecycle

import (
	"fmt"
	"strings"

	"github.com/voltflow/crm/pkg/domain"
	"github.com/voltflow/crm/pkg/models"
)

// Policy names accepted by NewPolicy
const (
	PolicyPermissive = "permissive"
	PolicyStrict     = "strict"
)

// TransitionPolicy decides whether an entity may move between two statuses
type TransitionPolicy interface {
	Allow(entity, from, to string) error
}

// NewPolicy returns the policy registered under name. Unknown names fall
// back to the permissive policy.
func NewPolicy(name string) TransitionPolicy {
	if strings.EqualFold(name, PolicyStrict) {
		return StrictPolicy()
	}
	return PermissivePolicy{}
}

// PermissivePolicy allows any move inside the entity's status set
type PermissivePolicy struct{}

// Allow implements TransitionPolicy
func (PermissivePolicy) Allow(entity, _, to string) error {
	return checkMember(entity, to)
}

// TablePolicy allows only the listed edges. Entities without a table are
// permissive.
type TablePolicy struct {
	edges map[string]map[string][]string
}

// NewTablePolicy builds a policy from entity → from → allowed targets
func NewTablePolicy(edges map[string]map[string][]string) *TablePolicy {
	return &TablePolicy{edges: edges}
}

// StrictPolicy walks each pipeline forward only
func StrictPolicy() *TablePolicy {
	return NewTablePolicy(map[string]map[string][]string{
		models.EntityLead: {
			"new":       {"contacted", "lost"},
			"contacted": {"qualified", "lost"},
			"qualified": {"converted", "lost"},
		},
		models.EntityQuote: {
			"draft": {"sent"},
			"sent":  {"accepted", "rejected"},
		},
		models.EntityJob: {
			"pending":     {"in_progress", "cancelled"},
			"in_progress": {"completed", "cancelled"},
		},
		models.EntityInvoice: {
			"draft":   {"sent"},
			"sent":    {"paid", "overdue"},
			"overdue": {"paid"},
		},
	})
}

// Allow implements TransitionPolicy
func (p *TablePolicy) Allow(entity, from, to string) error {
	if err := checkMember(entity, to); err != nil {
		return err
	}
	table, ok := p.edges[entity]
	if !ok {
		return nil
	}
	for _, next := range table[from] {
		if next == to {
			return nil
		}
	}
	return domain.NewConflictError(fmt.Sprintf("%s cannot move from %s to %s", entity, from, to))
}

func checkMember(entity, status string) error {
	if !models.ValidStatus(entity, status) {
		return domain.NewValidationError(fmt.Sprintf("invalid %s status: %q", entity, status))
	}
	return nil
}
