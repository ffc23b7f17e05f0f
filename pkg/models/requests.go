package models

import "time"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// StatusUpdateRequest changes the status of any entity. The value is
// checked against the entity's closed set by the lifecycle service.
type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

// BulkStatusRequest moves several rows to one status
type BulkStatusRequest struct {
	IDs    []int  `json:"ids" validate:"required,min=1,dive,gt=0"`
	Status string `json:"status" validate:"required"`
}

// BulkDeleteRequest removes several rows
type BulkDeleteRequest struct {
	IDs []int `json:"ids" validate:"required,min=1,dive,gt=0"`
}

// LeadRequest creates or replaces a lead
type LeadRequest struct {
	Name           string  `json:"name" validate:"required"`
	Email          string  `json:"email" validate:"omitempty,email"`
	Phone          string  `json:"phone"`
	Source         string  `json:"source"`
	Status         string  `json:"status" validate:"omitempty,oneof=new contacted qualified lost converted"`
	EstimatedValue float64 `json:"estimated_value" validate:"gte=0"`
	Notes          string  `json:"notes"`
	AssignedTo     string  `json:"assigned_to"`
}

// ClientRequest creates or replaces a client
type ClientRequest struct {
	Name           string  `json:"name" validate:"required"`
	Email          string  `json:"email" validate:"omitempty,email"`
	Phone          string  `json:"phone"`
	Address        string  `json:"address"`
	Status         string  `json:"status" validate:"omitempty,oneof=active inactive"`
	EstimatedValue float64 `json:"estimated_value" validate:"gte=0"`
	Source         string  `json:"source"`
	AssignedTo     string  `json:"assigned_to"`
	Notes          string  `json:"notes"`
}

// TechnicianRequest creates or replaces a technician
type TechnicianRequest struct {
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"omitempty,email"`
	Phone  string `json:"phone"`
	Status string `json:"status" validate:"omitempty,oneof=active inactive"`
	Notes  string `json:"notes"`
}

// JobRequest creates or replaces a job
type JobRequest struct {
	ClientID            int        `json:"client_id" validate:"required,gt=0"`
	Title               string     `json:"title" validate:"required"`
	Description         string     `json:"description"`
	Status              string     `json:"status" validate:"omitempty,oneof=pending in_progress completed cancelled"`
	Priority            string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	AssignedTechnicians []string   `json:"assigned_technicians"`
	Budget              float64    `json:"budget" validate:"gte=0"`
	StartDate           *time.Time `json:"start_date"`
	EndDate             *time.Time `json:"end_date"`
	ServiceAddress      string     `json:"service_address"`
}

// QuoteRequest creates or replaces a quote
type QuoteRequest struct {
	ClientID   int        `json:"client_id" validate:"required,gt=0"`
	JobID      *int       `json:"job_id"`
	Amount     float64    `json:"amount" validate:"gte=0"`
	Status     string     `json:"status" validate:"omitempty,oneof=draft sent accepted rejected"`
	ValidUntil *time.Time `json:"valid_until"`
	Terms      string     `json:"terms"`
	Notes      string     `json:"notes"`
}

// InvoiceRequest creates or replaces an invoice
type InvoiceRequest struct {
	ClientID     int        `json:"client_id" validate:"required,gt=0"`
	JobID        *int       `json:"job_id"`
	QuoteID      *int       `json:"quote_id"`
	Amount       float64    `json:"amount" validate:"gte=0"`
	Status       string     `json:"status" validate:"omitempty,oneof=draft sent paid overdue"`
	DueDate      *time.Time `json:"due_date"`
	PaymentTerms string     `json:"payment_terms"`
	Notes        string     `json:"notes"`
	LineItems    []LineItem `json:"line_items" validate:"omitempty,dive"`
}

// LineItem is a priced row on the invoice form; only the total is persisted
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity" validate:"gte=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
}

// Total returns the invoice amount, preferring line items when present
func (r InvoiceRequest) Total() float64 {
	if len(r.LineItems) == 0 {
		return r.Amount
	}
	var sum float64
	for _, li := range r.LineItems {
		sum += li.Quantity * li.UnitPrice
	}
	return sum
}

// ChannelReportRequest creates or updates a channel report row
type ChannelReportRequest struct {
	Month   string  `json:"month" validate:"required,month"`
	Channel string  `json:"channel" validate:"required"`
	Cost    float64 `json:"cost" validate:"gte=0"`
	Leads   int     `json:"leads" validate:"gte=0"`
	Jobs    int     `json:"jobs" validate:"gte=0"`
	Revenue float64 `json:"revenue" validate:"gte=0"`
}

// ScheduleJobRequest schedules a job window and syncs it to the calendar
type ScheduleJobRequest struct {
	JobID     int       `json:"jobId" validate:"required,gt=0"`
	StartDate time.Time `json:"startDate" validate:"required"`
	EndDate   time.Time `json:"endDate" validate:"required"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents an authentication response
type AuthResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
}

// UserInfo is the public view of a profile
type UserInfo struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
}

// SendResponse acknowledges an e-mail or SMS delivery
type SendResponse struct {
	OK         bool   `json:"ok"`
	MessageSID string `json:"messageSid,omitempty"`
	To         string `json:"to,omitempty"`
}

// ScheduleRequest sets the window of a job addressed by the URL
type ScheduleRequest struct {
	StartDate time.Time `json:"startDate" validate:"required"`
	EndDate   time.Time `json:"endDate" validate:"required"`
}

// CalendarEventRequest creates a free-standing one-hour calendar event
type CalendarEventRequest struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Start       time.Time `json:"start" validate:"required"`
}
