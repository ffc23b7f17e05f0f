package conversion

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltflow/crm/pkg/domain"
	"github.com/voltflow/crm/pkg/logger"
	"github.com/voltflow/crm/pkg/metrics"
	"github.com/voltflow/crm/pkg/models"
	"github.com/voltflow/crm/pkg/store"
	"github.com/voltflow/crm/pkg/testdata"
)

func setupService(t *testing.T) (*Service, *store.Store, *metrics.Metrics) {
	st := testdata.OpenStore(t)
	m := metrics.New(prometheus.NewRegistry())
	return NewService(st, m, logger.Nop()), st, m
}

func createTestLead(t *testing.T, st *store.Store, l *models.Lead) *models.Lead {
	out, err := st.Leads().Create(context.Background(), l)
	require.NoError(t, err)
	return out
}

func createAcceptedQuote(t *testing.T, st *store.Store, amount float64) (*models.Client, *models.Quote) {
	ctx := context.Background()
	client, err := st.Clients().Create(ctx, testdata.GenerateClient())
	require.NoError(t, err)
	quote, err := st.Quotes().Create(ctx, &models.Quote{
		ClientID: client.ID,
		Amount:   amount,
		Status:   models.QuoteStatusAccepted,
		Notes:    "Includes permit fees",
	})
	require.NoError(t, err)
	return client, quote
}

func TestConvertLeadToClient(t *testing.T) {
	svc, st, m := setupService(t)
	ctx := context.Background()

	lead := createTestLead(t, st, &models.Lead{
		Name:           "Acme",
		Email:          "a@x.com",
		Phone:          "555-0100",
		Source:         "Yelp",
		Status:         models.LeadStatusNew,
		EstimatedValue: 4200,
		Notes:          "Wants a quote for a panel upgrade",
		AssignedTo:     "Sam",
	})

	t.Run("Success - Client copies the lead", func(t *testing.T) {
		client, err := svc.ConvertLeadToClient(ctx, lead.ID)
		require.NoError(t, err)

		assert.Equal(t, "Acme", client.Name)
		assert.Equal(t, "a@x.com", client.Email)
		assert.Equal(t, "555-0100", client.Phone)
		assert.Equal(t, "", client.Address)
		assert.Equal(t, models.ClientStatusActive, client.Status)
		assert.Equal(t, 4200.0, client.EstimatedValue)
		assert.Equal(t, "Yelp", client.Source)
		assert.Equal(t, "Sam", client.AssignedTo)
		assert.Equal(t, "Converted from lead. Source: Yelp. Original notes: Wants a quote for a panel upgrade", client.Notes)
		require.NotNil(t, client.LeadID)
		assert.Equal(t, lead.ID, *client.LeadID)

		got, err := st.Leads().Get(ctx, lead.ID)
		require.NoError(t, err)
		assert.Equal(t, models.LeadStatusConverted, got.Status)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.Conversions.WithLabelValues("lead_to_client")))
	})

	t.Run("Success - Converting twice creates a second client", func(t *testing.T) {
		_, err := svc.ConvertLeadToClient(ctx, lead.ID)
		require.NoError(t, err)

		clients, err := st.Clients().List(ctx, store.ClientFilter{})
		require.NoError(t, err)
		count := 0
		for _, c := range clients {
			if c.LeadID != nil && *c.LeadID == lead.ID {
				count++
			}
		}
		assert.Equal(t, 2, count)
	})

	t.Run("Error - Missing lead", func(t *testing.T) {
		_, err := svc.ConvertLeadToClient(ctx, 9999)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestConvertLeadToClient_RollsBack(t *testing.T) {
	db := testdata.OpenClient(t)
	st := store.New(db.Driver)
	svc := NewService(st, nil, nil)
	ctx := context.Background()

	lead := createTestLead(t, st, &models.Lead{Name: "Fragile"})

	// Fail the second write of the conversion
	err := db.Driver.Exec(ctx, `CREATE TRIGGER block_convert BEFORE UPDATE OF status ON leads
		WHEN NEW.status = 'converted' BEGIN SELECT RAISE(ABORT, 'lead locked'); END`, []any{}, nil)
	require.NoError(t, err)

	_, err = svc.ConvertLeadToClient(ctx, lead.ID)
	require.Error(t, err)

	clients, err := st.Clients().List(ctx, store.ClientFilter{})
	require.NoError(t, err)
	assert.Empty(t, clients, "client insert must roll back with the failed lead update")

	got, err := st.Leads().Get(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusNew, got.Status)
}

func TestDeleteClientByLeadID(t *testing.T) {
	svc, st, _ := setupService(t)
	ctx := context.Background()

	lead := createTestLead(t, st, &models.Lead{Name: "Beta"})
	_, err := svc.ConvertLeadToClient(ctx, lead.ID)
	require.NoError(t, err)

	deleted, err := svc.DeleteClientByLeadID(ctx, lead.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.DeleteClientByLeadID(ctx, lead.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestConversionStats(t *testing.T) {
	svc, st, _ := setupService(t)
	ctx := context.Background()

	t.Run("Empty funnel has zero rate", func(t *testing.T) {
		stats, err := svc.ConversionStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.Total)
		assert.Zero(t, stats.ConversionRate)
	})

	for _, status := range []models.LeadStatus{
		models.LeadStatusNew, models.LeadStatusContacted, models.LeadStatusQualified, models.LeadStatusConverted,
	} {
		createTestLead(t, st, &models.Lead{Name: string(status), Status: status})
	}

	stats, err := svc.ConversionStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Converted)
	assert.Equal(t, 1, stats.New)
	assert.Equal(t, 0, stats.Lost)
	assert.InDelta(t, 25.0, stats.ConversionRate, 0.001)
}

func TestCreateInvoiceFromQuote(t *testing.T) {
	svc, st, _ := setupService(t)
	ctx := context.Background()
	client, quote := createAcceptedQuote(t, st, 500)

	t.Run("Success - Invoice mirrors the quote", func(t *testing.T) {
		has, err := svc.HasInvoice(ctx, quote.ID)
		require.NoError(t, err)
		assert.False(t, has)

		inv, err := svc.CreateInvoiceFromQuote(ctx, quote.ID)
		require.NoError(t, err)

		assert.Equal(t, client.ID, inv.ClientID)
		require.NotNil(t, inv.QuoteID)
		assert.Equal(t, quote.ID, *inv.QuoteID)
		assert.Nil(t, inv.JobID)
		assert.Equal(t, 500.0, inv.Amount)
		assert.Equal(t, models.InvoiceStatusDraft, inv.Status)
		assert.Equal(t, DefaultPaymentTerms, inv.PaymentTerms)
		assert.Equal(t, "Includes permit fees", inv.Notes)
		require.NotNil(t, inv.DueDate)
		assert.WithinDuration(t, inv.InvoiceDate.Add(30*24*time.Hour), *inv.DueDate, time.Second)

		has, err = svc.HasInvoice(ctx, quote.ID)
		require.NoError(t, err)
		assert.True(t, has)

		q, err := st.Quotes().Get(ctx, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, models.QuoteStatusAccepted, q.Status)
	})

	t.Run("Error - Second invoice is a conflict", func(t *testing.T) {
		_, err := svc.CreateInvoiceFromQuote(ctx, quote.ID)
		assert.True(t, domain.IsConflict(err))
	})

	t.Run("Error - Draft quote is a conflict", func(t *testing.T) {
		draft, err := st.Quotes().Create(ctx, &models.Quote{ClientID: client.ID, Amount: 10})
		require.NoError(t, err)
		_, err = svc.CreateInvoiceFromQuote(ctx, draft.ID)
		assert.True(t, domain.IsConflict(err))
	})

	t.Run("Error - Missing quote", func(t *testing.T) {
		_, err := svc.CreateInvoiceFromQuote(ctx, 9999)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestConvertQuoteToJob(t *testing.T) {
	svc, st, _ := setupService(t)
	ctx := context.Background()
	client, quote := createAcceptedQuote(t, st, 1800)

	job, err := svc.ConvertQuoteToJob(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, client.ID, job.ClientID)
	assert.Equal(t, "Job for quote #"+itoa(quote.ID), job.Title)
	assert.Equal(t, models.JobStatusPending, job.Status)
	assert.Equal(t, models.JobPriorityMedium, job.Priority)
	assert.Equal(t, 1800.0, job.Budget)

	q, err := st.Quotes().Get(ctx, quote.ID)
	require.NoError(t, err)
	require.NotNil(t, q.JobID)
	assert.Equal(t, job.ID, *q.JobID)

	t.Run("Invoice after job carries the job", func(t *testing.T) {
		inv, err := svc.CreateInvoiceFromQuote(ctx, quote.ID)
		require.NoError(t, err)
		require.NotNil(t, inv.JobID)
		assert.Equal(t, job.ID, *inv.JobID)
	})

	t.Run("Error - Already linked", func(t *testing.T) {
		_, err := svc.ConvertQuoteToJob(ctx, quote.ID)
		assert.True(t, domain.IsConflict(err))
	})
}

func itoa(n int) string {
	return fmt.Sprint(n)
}
