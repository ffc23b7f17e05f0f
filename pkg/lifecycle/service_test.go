package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltflow/crm/pkg/conversion"
	"github.com/voltflow/crm/pkg/domain"
	"github.com/voltflow/crm/pkg/metrics"
	"github.com/voltflow/crm/pkg/models"
	"github.com/voltflow/crm/pkg/store"
	"github.com/voltflow/crm/pkg/testdata"
)

type MockConverter struct {
	ConvertFunc func(ctx context.Context, leadID int) (*models.Client, error)
}

func (m *MockConverter) ConvertLeadToClient(ctx context.Context, leadID int) (*models.Client, error) {
	return m.ConvertFunc(ctx, leadID)
}

func TestChangeStatus(t *testing.T) {
	st := testdata.OpenStore(t)
	ctx := context.Background()
	m := metrics.New(prometheus.NewRegistry())
	svc := NewService(st, WithMetrics(m))

	client, err := st.Clients().Create(ctx, testdata.GenerateClient())
	require.NoError(t, err)
	quote, err := st.Quotes().Create(ctx, &models.Quote{ClientID: client.ID, Amount: 100, Status: models.QuoteStatusRejected})
	require.NoError(t, err)

	t.Run("Success - Backward move is allowed by default", func(t *testing.T) {
		change, err := svc.ChangeStatus(ctx, models.EntityQuote, quote.ID, "accepted")
		require.NoError(t, err)
		assert.Equal(t, "rejected", change.From)
		assert.Equal(t, "accepted", change.To)

		got, err := st.Quotes().Get(ctx, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, models.QuoteStatusAccepted, got.Status)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.StatusChanges.WithLabelValues(models.EntityQuote)))
	})

	t.Run("Success - Same status is a no-op", func(t *testing.T) {
		change, err := svc.ChangeStatus(ctx, models.EntityQuote, quote.ID, "accepted")
		require.NoError(t, err)
		assert.Equal(t, change.From, change.To)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.StatusChanges.WithLabelValues(models.EntityQuote)))
	})

	t.Run("Error - Invalid status leaves row unchanged", func(t *testing.T) {
		_, err := svc.ChangeStatus(ctx, models.EntityQuote, quote.ID, "approved")
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("Error - Missing row", func(t *testing.T) {
		_, err := svc.ChangeStatus(ctx, models.EntityJob, 9999, "completed")
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("Error - Unknown entity", func(t *testing.T) {
		_, err := svc.ChangeStatus(ctx, "widget", 1, "new")
		assert.True(t, domain.IsBadRequest(err))
	})

	t.Run("Success - Technician status", func(t *testing.T) {
		tech, err := st.Technicians().Create(ctx, &models.Technician{Name: "Lee"})
		require.NoError(t, err)
		_, err = svc.ChangeStatus(ctx, models.EntityTechnician, tech.ID, "inactive")
		require.NoError(t, err)

		got, err := st.Technicians().Get(ctx, tech.ID)
		require.NoError(t, err)
		assert.Equal(t, models.TechnicianStatusInactive, got.Status)
	})
}

func TestChangeStatus_StrictPolicy(t *testing.T) {
	st := testdata.OpenStore(t)
	ctx := context.Background()
	svc := NewService(st, WithPolicy(StrictPolicy()))

	client, err := st.Clients().Create(ctx, testdata.GenerateClient())
	require.NoError(t, err)
	inv, err := st.Invoices().Create(ctx, &models.Invoice{ClientID: client.ID, Amount: 50, Status: models.InvoiceStatusPaid})
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, models.EntityInvoice, inv.ID, "draft")
	assert.True(t, domain.IsConflict(err))

	got, err := st.Invoices().Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, got.Status)
}

func TestChangeStatus_QualifiedConvertsLead(t *testing.T) {
	st := testdata.OpenStore(t)
	ctx := context.Background()
	conv := conversion.NewService(st, nil, nil)
	svc := NewService(st, WithAutoConvert(conv))

	lead, err := st.Leads().Create(ctx, &models.Lead{Name: "Acme", Email: "a@x.com", Status: models.LeadStatusNew})
	require.NoError(t, err)

	change, err := svc.ChangeStatus(ctx, models.EntityLead, lead.ID, "qualified")
	require.NoError(t, err)
	assert.Equal(t, "converted", change.To)
	require.NotNil(t, change.Client)
	require.NotNil(t, change.Client.LeadID)
	assert.Equal(t, lead.ID, *change.Client.LeadID)

	clients, err := st.Clients().List(ctx, store.ClientFilter{})
	require.NoError(t, err)
	assert.Len(t, clients, 1)

	got, err := st.Leads().Get(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusConverted, got.Status)
}

func TestChangeStatus_ConversionFailure(t *testing.T) {
	st := testdata.OpenStore(t)
	ctx := context.Background()
	boom := errors.New("boom")
	svc := NewService(st, WithAutoConvert(&MockConverter{
		ConvertFunc: func(ctx context.Context, leadID int) (*models.Client, error) {
			return nil, boom
		},
	}))

	lead, err := st.Leads().Create(ctx, &models.Lead{Name: "Beta"})
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, models.EntityLead, lead.ID, "qualified")
	assert.ErrorIs(t, err, boom)

	got, err := st.Leads().Get(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusNew, got.Status)
}

func TestChangeStatus_QualifiedWithoutAutoConvert(t *testing.T) {
	st := testdata.OpenStore(t)
	ctx := context.Background()
	svc := NewService(st)

	lead, err := st.Leads().Create(ctx, &models.Lead{Name: "Gamma"})
	require.NoError(t, err)

	change, err := svc.ChangeStatus(ctx, models.EntityLead, lead.ID, "qualified")
	require.NoError(t, err)
	assert.Equal(t, "qualified", change.To)
	assert.Nil(t, change.Client)
}

func TestUpdate(t *testing.T) {
	st := testdata.OpenStore(t)
	ctx := context.Background()

	client, err := st.Clients().Create(ctx, testdata.GenerateClient())
	require.NoError(t, err)

	t.Run("Success - No status runs only the edit", func(t *testing.T) {
		svc := NewService(st)
		inv, err := st.Invoices().Create(ctx, &models.Invoice{ClientID: client.ID, Amount: 80, Status: models.InvoiceStatusSent})
		require.NoError(t, err)

		change, err := svc.Update(ctx, models.EntityInvoice, inv.ID, "", func(ctx context.Context) error {
			_, err := st.Invoices().Update(ctx, inv.ID, &models.Invoice{ClientID: client.ID, Amount: 90, Notes: "edited"})
			return err
		})
		require.NoError(t, err)
		assert.Nil(t, change)

		got, err := st.Invoices().Get(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, models.InvoiceStatusSent, got.Status)
		assert.Equal(t, 90.0, got.Amount)
	})

	t.Run("Error - Strict policy rejects before the edit runs", func(t *testing.T) {
		svc := NewService(st, WithPolicy(StrictPolicy()))
		inv, err := st.Invoices().Create(ctx, &models.Invoice{ClientID: client.ID, Amount: 50, Status: models.InvoiceStatusPaid})
		require.NoError(t, err)

		applied := false
		_, err = svc.Update(ctx, models.EntityInvoice, inv.ID, "draft", func(ctx context.Context) error {
			applied = true
			return nil
		})
		assert.True(t, domain.IsConflict(err))
		assert.False(t, applied)
	})

	t.Run("Success - Qualified lead is converted", func(t *testing.T) {
		svc := NewService(st, WithAutoConvert(conversion.NewService(st, nil, nil)))
		lead, err := st.Leads().Create(ctx, &models.Lead{Name: "Delta"})
		require.NoError(t, err)

		change, err := svc.Update(ctx, models.EntityLead, lead.ID, "qualified", func(ctx context.Context) error {
			_, err := st.Leads().Update(ctx, lead.ID, &models.Lead{Name: "Delta Electric"})
			return err
		})
		require.NoError(t, err)
		require.NotNil(t, change.Client)
		assert.Equal(t, "converted", change.To)

		got, err := st.Leads().Get(ctx, lead.ID)
		require.NoError(t, err)
		assert.Equal(t, "Delta Electric", got.Name)
		assert.Equal(t, models.LeadStatusConverted, got.Status)
	})
}
