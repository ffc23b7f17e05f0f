package models

import "strings"

// Entity names used by the lifecycle policy and metrics labels
const (
	EntityLead       = "lead"
	EntityClient     = "client"
	EntityQuote      = "quote"
	EntityJob        = "job"
	EntityInvoice    = "invoice"
	EntityTechnician = "technician"
)

// LeadStatus is the lifecycle state of a lead
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusLost      LeadStatus = "lost"
	LeadStatusConverted LeadStatus = "converted"
)

// AllLeadStatuses returns the closed set of lead statuses in pipeline order
func AllLeadStatuses() []LeadStatus {
	return []LeadStatus{LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusLost, LeadStatusConverted}
}

func (s LeadStatus) Valid() bool {
	for _, v := range AllLeadStatuses() {
		if s == v {
			return true
		}
	}
	return false
}

// ClientStatus is deliberately coarser than LeadStatus
type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive"
)

func AllClientStatuses() []ClientStatus {
	return []ClientStatus{ClientStatusActive, ClientStatusInactive}
}

func (s ClientStatus) Valid() bool {
	return s == ClientStatusActive || s == ClientStatusInactive
}

// QuoteStatus is the lifecycle state of a quote
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRejected QuoteStatus = "rejected"
)

func AllQuoteStatuses() []QuoteStatus {
	return []QuoteStatus{QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusRejected}
}

func (s QuoteStatus) Valid() bool {
	for _, v := range AllQuoteStatuses() {
		if s == v {
			return true
		}
	}
	return false
}

// JobStatus is the lifecycle state of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

func AllJobStatuses() []JobStatus {
	return []JobStatus{JobStatusPending, JobStatusInProgress, JobStatusCompleted, JobStatusCancelled}
}

func (s JobStatus) Valid() bool {
	for _, v := range AllJobStatuses() {
		if s == v {
			return true
		}
	}
	return false
}

// JobPriority ranks jobs on the board
type JobPriority string

const (
	JobPriorityLow    JobPriority = "low"
	JobPriorityMedium JobPriority = "medium"
	JobPriorityHigh   JobPriority = "high"
)

func (p JobPriority) Valid() bool {
	return p == JobPriorityLow || p == JobPriorityMedium || p == JobPriorityHigh
}

// InvoiceStatus is the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

func AllInvoiceStatuses() []InvoiceStatus {
	return []InvoiceStatus{InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue}
}

func (s InvoiceStatus) Valid() bool {
	for _, v := range AllInvoiceStatuses() {
		if s == v {
			return true
		}
	}
	return false
}

// TechnicianStatus mirrors ClientStatus
type TechnicianStatus string

const (
	TechnicianStatusActive   TechnicianStatus = "active"
	TechnicianStatusInactive TechnicianStatus = "inactive"
)

func (s TechnicianStatus) Valid() bool {
	return s == TechnicianStatusActive || s == TechnicianStatusInactive
}

// StatusesFor lists the allowed status values of an entity
func StatusesFor(entity string) []string {
	var out []string
	switch entity {
	case EntityLead:
		for _, s := range AllLeadStatuses() {
			out = append(out, string(s))
		}
	case EntityClient:
		for _, s := range AllClientStatuses() {
			out = append(out, string(s))
		}
	case EntityQuote:
		for _, s := range AllQuoteStatuses() {
			out = append(out, string(s))
		}
	case EntityJob:
		for _, s := range AllJobStatuses() {
			out = append(out, string(s))
		}
	case EntityInvoice:
		for _, s := range AllInvoiceStatuses() {
			out = append(out, string(s))
		}
	case EntityTechnician:
		out = []string{string(TechnicianStatusActive), string(TechnicianStatusInactive)}
	}
	return out
}

// ValidStatus reports whether status belongs to the entity's closed set
func ValidStatus(entity, status string) bool {
	for _, s := range StatusesFor(entity) {
		if s == status {
			return true
		}
	}
	return false
}

// Role is a user profile role. Stored values may be capitalised
// ("Admin", "Technician"); comparisons always use the normalised form.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleTechnician Role = "technician"
	RoleUser       Role = "user"
)

// NormalizeRole lowercases and trims a stored role
func NormalizeRole(r string) Role {
	return Role(strings.ToLower(strings.TrimSpace(r)))
}
