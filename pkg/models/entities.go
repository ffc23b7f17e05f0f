package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Row types map 1:1 to table columns; the json tag doubles as the column
// name when rows are scanned.

// Lead is an inbound prospect
type Lead struct {
	ID             int        `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	Source         string     `json:"source"`
	Status         LeadStatus `json:"status"`
	EstimatedValue float64    `json:"estimated_value"`
	Notes          string     `json:"notes"`
	AssignedTo     string     `json:"assigned_to"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Client is a customer, optionally created from a lead
type Client struct {
	ID             int          `json:"id"`
	Name           string       `json:"name"`
	Email          string       `json:"email"`
	Phone          string       `json:"phone"`
	Address        string       `json:"address"`
	Status         ClientStatus `json:"status"`
	EstimatedValue float64      `json:"estimated_value"`
	Source         string       `json:"source"`
	AssignedTo     string       `json:"assigned_to"`
	Notes          string       `json:"notes"`
	LeadID         *int         `json:"lead_id"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Technician works jobs
type Technician struct {
	ID        int              `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Phone     string           `json:"phone"`
	Status    TechnicianStatus `json:"status"`
	Notes     string           `json:"notes"`
	CreatedAt time.Time        `json:"created_at"`
}

// Job is scheduled field work for a client
type Job struct {
	ID                  int           `json:"id"`
	ClientID            int           `json:"client_id"`
	Title               string        `json:"title"`
	Description         string        `json:"description"`
	Status              JobStatus     `json:"status"`
	Priority            JobPriority   `json:"priority"`
	AssignedTechnicians TechnicianIDs `json:"assigned_technicians"`
	Budget              float64       `json:"budget"`
	StartDate           *time.Time    `json:"start_date"`
	EndDate             *time.Time    `json:"end_date"`
	ServiceAddress      string        `json:"service_address"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// Quote is a priced offer to a client
type Quote struct {
	ID         int         `json:"id"`
	ClientID   int         `json:"client_id"`
	JobID      *int        `json:"job_id"`
	Amount     float64     `json:"amount"`
	Status     QuoteStatus `json:"status"`
	ValidUntil *time.Time  `json:"valid_until"`
	Terms      string      `json:"terms"`
	Notes      string      `json:"notes"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Invoice bills a client, optionally for a job and/or quote
type Invoice struct {
	ID           int           `json:"id"`
	ClientID     int           `json:"client_id"`
	JobID        *int          `json:"job_id"`
	QuoteID      *int          `json:"quote_id"`
	Amount       float64       `json:"amount"`
	Status       InvoiceStatus `json:"status"`
	InvoiceDate  time.Time     `json:"invoice_date"`
	DueDate      *time.Time    `json:"due_date"`
	PaymentTerms string        `json:"payment_terms"`
	Notes        string        `json:"notes"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// ChannelReport is a manually maintained monthly marketing aggregate
type ChannelReport struct {
	ID          int       `json:"id"`
	Month       string    `json:"month"`
	Channel     string    `json:"channel"`
	Cost        float64   `json:"cost"`
	Leads       int       `json:"leads"`
	Jobs        int       `json:"jobs"`
	Revenue     float64   `json:"revenue"`
	CloseRate   float64   `json:"close_rate"`
	CostPerLead float64   `json:"cost_per_lead"`
	ROI         float64   `json:"roi"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserProfile is an application user and its role
type UserProfile struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `sql:"password_hash" json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// NormalizedRole returns the lowercased role used by guards
func (u *UserProfile) NormalizedRole() Role {
	return NormalizeRole(u.Role)
}

// TechnicianIDs is the set of technician ids assigned to a job, stored as a
// JSON array. No referential constraint is enforced.
type TechnicianIDs []string

// Value implements driver.Valuer
func (t TechnicianIDs) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (t *TechnicianIDs) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = TechnicianIDs{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("technician ids: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*t = TechnicianIDs{}
		return nil
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return fmt.Errorf("technician ids: %w", err)
	}
	*t = ids
	return nil
}
