package store

import (
	"context"

	"github.com/voltflow/crm/pkg/models"
)

// ClientRef is the client summary joined onto child rows
type ClientRef struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// JobRef is the job summary joined onto invoices
type JobRef struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// JobWithClient is a job plus its client
type JobWithClient struct {
	models.Job
	Client *ClientRef `json:"client,omitempty"`
}

// QuoteWithClient is a quote plus its client
type QuoteWithClient struct {
	models.Quote
	Client *ClientRef `json:"client,omitempty"`
}

// InvoiceWithRelations is an invoice plus its client, job and quote refs
type InvoiceWithRelations struct {
	models.Invoice
	Client *ClientRef `json:"client,omitempty"`
	Job    *JobRef    `json:"job,omitempty"`
}

func clientRef(c models.Client) *ClientRef {
	return &ClientRef{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone, Address: c.Address}
}

// ListWithClient returns jobs newest first with their client attached
func (r *JobStore) ListWithClient(ctx context.Context, f JobFilter) ([]JobWithClient, error) {
	jobs, err := r.List(ctx, f)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ClientID)
	}
	clients, err := r.s.Clients().GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]JobWithClient, len(jobs))
	for i, j := range jobs {
		out[i].Job = j
		if c, ok := clients[j.ClientID]; ok {
			out[i].Client = clientRef(c)
		}
	}
	return out, nil
}

// ListWithClient returns quotes newest first with their client attached
func (r *QuoteStore) ListWithClient(ctx context.Context, f QuoteFilter) ([]QuoteWithClient, error) {
	quotes, err := r.List(ctx, f)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(quotes))
	for _, q := range quotes {
		ids = append(ids, q.ClientID)
	}
	clients, err := r.s.Clients().GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]QuoteWithClient, len(quotes))
	for i, q := range quotes {
		out[i].Quote = q
		if c, ok := clients[q.ClientID]; ok {
			out[i].Client = clientRef(c)
		}
	}
	return out, nil
}

// ListWithRelations returns invoices newest first with client and job attached
func (r *InvoiceStore) ListWithRelations(ctx context.Context, f InvoiceFilter) ([]InvoiceWithRelations, error) {
	invoices, err := r.List(ctx, f)
	if err != nil {
		return nil, err
	}
	clientIDs := make([]int, 0, len(invoices))
	var jobIDs []int
	for _, inv := range invoices {
		clientIDs = append(clientIDs, inv.ClientID)
		if inv.JobID != nil {
			jobIDs = append(jobIDs, *inv.JobID)
		}
	}
	clients, err := r.s.Clients().GetMany(ctx, clientIDs)
	if err != nil {
		return nil, err
	}
	jobs, err := r.s.Jobs().GetMany(ctx, jobIDs)
	if err != nil {
		return nil, err
	}

	out := make([]InvoiceWithRelations, len(invoices))
	for i, inv := range invoices {
		out[i].Invoice = inv
		if c, ok := clients[inv.ClientID]; ok {
			out[i].Client = clientRef(c)
		}
		if inv.JobID != nil {
			if j, ok := jobs[*inv.JobID]; ok {
				out[i].Job = &JobRef{ID: j.ID, Title: j.Title}
			}
		}
	}
	return out, nil
}

// GetWithClient loads an invoice and its client in one call
func (r *InvoiceStore) GetWithClient(ctx context.Context, id int) (*models.Invoice, *models.Client, error) {
	inv, err := r.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	c, err := r.s.Clients().Get(ctx, inv.ClientID)
	if err != nil {
		return nil, nil, err
	}
	return inv, c, nil
}

// GetWithClient loads a quote and its client in one call
func (r *QuoteStore) GetWithClient(ctx context.Context, id int) (*models.Quote, *models.Client, error) {
	q, err := r.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	c, err := r.s.Clients().Get(ctx, q.ClientID)
	if err != nil {
		return nil, nil, err
	}
	return q, c, nil
}

// GetWithClient loads a job and its client in one call
func (r *JobStore) GetWithClient(ctx context.Context, id int) (*models.Job, *models.Client, error) {
	j, err := r.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	c, err := r.s.Clients().Get(ctx, j.ClientID)
	if err != nil {
		return nil, nil, err
	}
	return j, c, nil
}
