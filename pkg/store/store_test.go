package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltflow/crm/pkg/domain"
	"github.com/voltflow/crm/pkg/models"
	"github.com/voltflow/crm/pkg/store"
	"github.com/voltflow/crm/pkg/testdata"
)

func createTestClient(t *testing.T, st *store.Store, name string) *models.Client {
	c := testdata.GenerateClient()
	c.Name = name
	out, err := st.Clients().Create(context.Background(), c)
	require.NoError(t, err)
	return out
}

func TestLeadStore(t *testing.T) {
	st := testdata.OpenStore(t)
	ctx := context.Background()

	t.Run("Success - Create defaults status to new", func(t *testing.T) {
		l, err := st.Leads().Create(ctx, &models.Lead{Name: "Jane Smith", Email: "jane@example.com", Source: "Referral"})
		require.NoError(t, err)
		assert.NotZero(t, l.ID)
		assert.Equal(t, models.LeadStatusNew, l.Status)

		got, err := st.Leads().Get(ctx, l.ID)
		require.NoError(t, err)
		assert.Equal(t, "Jane Smith", got.Name)
		assert.Equal(t, "jane@example.com", got.Email)
		assert.Equal(t, l.CreatedAt.Unix(), got.CreatedAt.Unix())
	})

	t.Run("Error - Invalid status rejected", func(t *testing.T) {
		_, err := st.Leads().Create(ctx, &models.Lead{Name: "Bad", Status: "won"})
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("Error - Get missing lead", func(t *testing.T) {
		_, err := st.Leads().Get(ctx, 9999)
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("Success - UpdateStatus and CountByStatus", func(t *testing.T) {
		l, err := st.Leads().Create(ctx, &models.Lead{Name: "Bob"})
		require.NoError(t, err)
		require.NoError(t, st.Leads().UpdateStatus(ctx, l.ID, models.LeadStatusContacted))

		counts, err := st.Leads().CountByStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, counts[models.LeadStatusNew])
		assert.Equal(t, 1, counts[models.LeadStatusContacted])

		assert.True(t, domain.IsNotFound(st.Leads().UpdateStatus(ctx, 9999, models.LeadStatusLost)))
	})

	t.Run("Success - List filters by status", func(t *testing.T) {
		leads, err := st.Leads().List(ctx, store.LeadFilter{Status: models.LeadStatusContacted})
		require.NoError(t, err)
		require.Len(t, leads, 1)
		assert.Equal(t, "Bob", leads[0].Name)
	})

	t.Run("Success - Update and Delete", func(t *testing.T) {
		l, err := st.Leads().Create(ctx, &models.Lead{Name: "Temp"})
		require.NoError(t, err)

		updated, err := st.Leads().Update(ctx, l.ID, &models.Lead{Name: "Temp Renamed", Phone: "555-0100", Status: models.LeadStatusQualified})
		require.NoError(t, err)
		assert.Equal(t, "Temp Renamed", updated.Name)
		assert.Equal(t, models.LeadStatusQualified, updated.Status)

		require.NoError(t, st.Leads().Delete(ctx, l.ID))
		assert.True(t, domain.IsNotFound(st.Leads().Delete(ctx, l.ID)))
	})

	t.Run("Success - Update without status keeps the stored one", func(t *testing.T) {
		l, err := st.Leads().Create(ctx, &models.Lead{Name: "Keeper", Status: models.LeadStatusConverted})
		require.NoError(t, err)

		updated, err := st.Leads().Update(ctx, l.ID, &models.Lead{Name: "Keeper", Notes: "called back"})
		require.NoError(t, err)
		assert.Equal(t, models.LeadStatusConverted, updated.Status)
		assert.Equal(t, "called back", updated.Notes)
	})
}

func TestClientStore(t *testing.T) {
	st := testdata.OpenStore(t)
	ctx := context.Background()

	lead, err := st.Leads().Create(ctx, &models.Lead{Name: "Origin"})
	require.NoError(t, err)

	t.Run("Success - FindByLeadID returns first match", func(t *testing.T) {
		first, err := st.Clients().Create(ctx, &models.Client{Name: "First", LeadID: &lead.ID})
		require.NoError(t, err)
		_, err = st.Clients().Create(ctx, &models.Client{Name: "Second", LeadID: &lead.ID})
		require.NoError(t, err)

		found, err := st.Clients().FindByLeadID(ctx, lead.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, first.ID, found.ID)
		assert.Equal(t, models.ClientStatusActive, found.Status)
	})

	t.Run("Success - FindByLeadID nil when none", func(t *testing.T) {
		found, err := st.Clients().FindByLeadID(ctx, 4242)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("Success - Deleting the lead clears lead_id", func(t *testing.T) {
		require.NoError(t, st.Leads().Delete(ctx, lead.ID))

		clients, err := st.Clients().List(ctx, store.ClientFilter{})
		require.NoError(t, err)
		require.Len(t, clients, 2)
		for _, c := range clients {
			assert.Nil(t, c.LeadID)
		}
	})

	t.Run("Success - GetMany", func(t *testing.T) {
		clients, err := st.Clients().List(ctx, store.ClientFilter{})
		require.NoError(t, err)

		byID, err := st.Clients().GetMany(ctx, []int{clients[0].ID, 777})
		require.NoError(t, err)
		assert.Len(t, byID, 1)
		assert.Equal(t, clients[0].Name, byID[clients[0].ID].Name)
	})
}

func TestChildRowsRequireClient(t *testing.T) {
	st := testdata.OpenStore(t)
	ctx := context.Background()

	_, err := st.Jobs().Create(ctx, &models.Job{ClientID: 123, Title: "Orphan"})
	assert.True(t, domain.IsNotFound(err))

	_, err = st.Quotes().Create(ctx, &models.Quote{ClientID: 123, Amount: 10})
	assert.True(t, domain.IsNotFound(err))

	_, err = st.Invoices().Create(ctx, &models.Invoice{ClientID: 123, Amount: 10})
	assert.True(t, domain.IsNotFound(err))
}

func TestJobStore(t *testing.T) {
	st := testdata.OpenStore(t)
	ctx := context.Background()
	client := createTestClient(t, st, "Acme Dental")

	t.Run("Success - Technician ids round trip", func(t *testing.T) {
		j, err := st.Jobs().Create(ctx, &models.Job{
			ClientID:            client.ID,
			Title:               "Panel upgrade",
			AssignedTechnicians: models.TechnicianIDs{"3", "7"},
		})
		require.NoError(t, err)
		assert.Equal(t, models.JobStatusPending, j.Status)
		assert.Equal(t, models.JobPriorityMedium, j.Priority)

		got, err := st.Jobs().Get(ctx, j.ID)
		require.NoError(t, err)
		assert.Equal(t, models.TechnicianIDs{"3", "7"}, got.AssignedTechnicians)
		assert.Nil(t, got.StartDate)
	})

	t.Run("Error - Invalid priority", func(t *testing.T) {
		_, err := st.Jobs().Create(ctx, &models.Job{ClientID: client.ID, Title: "x", Priority: "urgent"})
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("Success - Schedule and EndingBetween", func(t *testing.T) {
		j, err := st.Jobs().Create(ctx, &models.Job{ClientID: client.ID, Title: "EV charger"})
		require.NoError(t, err)

		start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
		require.NoError(t, st.Jobs().UpdateSchedule(ctx, j.ID, start, start.Add(time.Hour)))

		got, err := st.Jobs().Get(ctx, j.ID)
		require.NoError(t, err)
		require.NotNil(t, got.StartDate)
		assert.True(t, start.Equal(*got.StartDate))

		ending, err := st.Jobs().EndingBetween(ctx, time.Now(), time.Now().Add(30*24*time.Hour))
		require.NoError(t, err)
		require.Len(t, ending, 1)
		assert.Equal(t, j.ID, ending[0].ID)
	})

	t.Run("Success - Counts and stats", func(t *testing.T) {
		n, err := st.Jobs().CountByStatus(ctx, models.JobStatusPending, models.JobStatusInProgress)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		stats, err := st.Jobs().StatsByClient(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, stats[client.ID].Count)
		assert.False(t, stats[client.ID].LastCreated.IsZero())
	})

	t.Run("Success - Deleting the client cascades", func(t *testing.T) {
		require.NoError(t, st.Clients().Delete(ctx, client.ID))
		jobs, err := st.Jobs().List(ctx, store.JobFilter{})
		require.NoError(t, err)
		assert.Empty(t, jobs)
	})
}

func TestInvoiceStore(t *testing.T) {
	st := testdata.OpenStore(t)
	ctx := context.Background()
	client := createTestClient(t, st, "Harbor Bakery")

	quote, err := st.Quotes().Create(ctx, &models.Quote{ClientID: client.ID, Amount: 1500, Status: models.QuoteStatusAccepted})
	require.NoError(t, err)

	past := time.Now().UTC().Add(-72 * time.Hour)
	future := time.Now().UTC().Add(72 * time.Hour)

	sentLate, err := st.Invoices().Create(ctx, &models.Invoice{ClientID: client.ID, QuoteID: &quote.ID, Amount: 1500, Status: models.InvoiceStatusSent, DueDate: &past})
	require.NoError(t, err)
	_, err = st.Invoices().Create(ctx, &models.Invoice{ClientID: client.ID, Amount: 200, Status: models.InvoiceStatusPaid, DueDate: &future})
	require.NoError(t, err)
	_, err = st.Invoices().Create(ctx, &models.Invoice{ClientID: client.ID, Amount: 300, Status: models.InvoiceStatusPaid})
	require.NoError(t, err)

	t.Run("Success - Invoice date defaults to today", func(t *testing.T) {
		assert.False(t, sentLate.InvoiceDate.IsZero())
	})

	t.Run("Success - Quote lookups", func(t *testing.T) {
		ok, err := st.Invoices().ExistsForQuote(ctx, quote.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		set, err := st.Invoices().QuoteIDsWithInvoice(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[int]bool{quote.ID: true}, set)

		byQuote, err := st.Invoices().List(ctx, store.InvoiceFilter{QuoteID: quote.ID})
		require.NoError(t, err)
		assert.Len(t, byQuote, 1)
	})

	t.Run("Success - SumPaidByClient", func(t *testing.T) {
		sums, err := st.Invoices().SumPaidByClient(ctx)
		require.NoError(t, err)
		assert.InDelta(t, 500.0, sums[client.ID], 0.001)
	})

	t.Run("Success - DueBetween", func(t *testing.T) {
		due, err := st.Invoices().DueBetween(ctx, time.Now(), time.Now().Add(30*24*time.Hour))
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, models.InvoiceStatusPaid, due[0].Status)
	})

	t.Run("Success - MarkOverdue only touches sent invoices", func(t *testing.T) {
		n, err := st.Invoices().MarkOverdue(ctx, time.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		got, err := st.Invoices().Get(ctx, sentLate.ID)
		require.NoError(t, err)
		assert.Equal(t, models.InvoiceStatusOverdue, got.Status)
	})

	t.Run("Success - Deleting the quote keeps the invoice", func(t *testing.T) {
		require.NoError(t, st.Quotes().Delete(ctx, quote.ID))
		got, err := st.Invoices().Get(ctx, sentLate.ID)
		require.NoError(t, err)
		assert.Nil(t, got.QuoteID)
	})
}

func TestChannelStore(t *testing.T) {
	st := testdata.OpenStore(t)
	ctx := context.Background()

	_, err := st.Channels().Upsert(ctx, &models.ChannelReport{Month: "2024-01", Channel: "Yelp", Cost: 100, Revenue: 400})
	require.NoError(t, err)
	_, err = st.Channels().Upsert(ctx, &models.ChannelReport{Month: "2024-01", Channel: "Google Ads", Cost: 500, Revenue: 2000})
	require.NoError(t, err)
	_, err = st.Channels().Upsert(ctx, &models.ChannelReport{Month: "2024-01", Channel: "Yelp", Cost: 150, Revenue: 600})
	require.NoError(t, err)

	rows, err := st.Channels().ListByMonth(ctx, "2024-01")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Google Ads", rows[0].Channel)
	assert.Equal(t, 150.0, rows[1].Cost)

	total, err := st.Channels().RevenueForMonth(ctx, "2024-01")
	require.NoError(t, err)
	assert.InDelta(t, 2600.0, total, 0.001)

	total, err = st.Channels().RevenueForMonth(ctx, "1999-01")
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestProfileStore(t *testing.T) {
	st := testdata.OpenStore(t)
	ctx := context.Background()

	p, err := st.Profiles().Create(ctx, &models.UserProfile{Email: "Owner@VoltFlow.io", PasswordHash: "x", Role: "Admin"})
	require.NoError(t, err)
	assert.Equal(t, "owner@voltflow.io", p.Email)

	got, err := st.Profiles().GetByEmail(ctx, "OWNER@voltflow.io")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, models.RoleAdmin, got.NormalizedRole())

	_, err = st.Profiles().Create(ctx, &models.UserProfile{Email: "owner@voltflow.io", PasswordHash: "y"})
	assert.Error(t, err)
}

func TestWithTx(t *testing.T) {
	st := testdata.OpenStore(t)
	ctx := context.Background()

	t.Run("Error - Rollback leaves no rows", func(t *testing.T) {
		boom := errors.New("boom")
		err := st.WithTx(ctx, func(tx *store.Store) error {
			if _, err := tx.Leads().Create(ctx, &models.Lead{Name: "Ghost"}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		leads, err := st.Leads().List(ctx, store.LeadFilter{})
		require.NoError(t, err)
		assert.Empty(t, leads)
	})

	t.Run("Success - Commit persists", func(t *testing.T) {
		err := st.WithTx(ctx, func(tx *store.Store) error {
			_, err := tx.Leads().Create(ctx, &models.Lead{Name: "Kept"})
			return err
		})
		require.NoError(t, err)

		leads, err := st.Leads().List(ctx, store.LeadFilter{})
		require.NoError(t, err)
		assert.Len(t, leads, 1)
	})

	t.Run("Success - Bulk insert in batches", func(t *testing.T) {
		leads := testdata.GenerateLeads(testdata.GeneratorConfig{Count: 7, EmailChance: 1, PhoneChance: 1})
		require.NoError(t, testdata.BulkInsertLeads(ctx, st, leads, 3))

		all, err := st.Leads().List(ctx, store.LeadFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 8)
	})
}
