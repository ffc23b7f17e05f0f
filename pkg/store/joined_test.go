package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltflow/crm/pkg/models"
	"github.com/voltflow/crm/pkg/store"
	"github.com/voltflow/crm/pkg/testdata"
)

func TestJoinedLists(t *testing.T) {
	st := testdata.OpenStore(t)
	ctx := context.Background()
	client := createTestClient(t, st, "Pine Street Dental")

	job, err := st.Jobs().Create(ctx, &models.Job{ClientID: client.ID, Title: "Panel upgrade"})
	require.NoError(t, err)
	_, err = st.Quotes().Create(ctx, &models.Quote{ClientID: client.ID, Amount: 900})
	require.NoError(t, err)
	_, err = st.Invoices().Create(ctx, &models.Invoice{ClientID: client.ID, JobID: &job.ID, Amount: 900})
	require.NoError(t, err)
	_, err = st.Invoices().Create(ctx, &models.Invoice{ClientID: client.ID, Amount: 50})
	require.NoError(t, err)

	t.Run("Success - Jobs carry client", func(t *testing.T) {
		rows, err := st.Jobs().ListWithClient(ctx, store.JobFilter{})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.NotNil(t, rows[0].Client)
		assert.Equal(t, "Pine Street Dental", rows[0].Client.Name)
	})

	t.Run("Success - Quotes carry client", func(t *testing.T) {
		rows, err := st.Quotes().ListWithClient(ctx, store.QuoteFilter{})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, client.ID, rows[0].Client.ID)
	})

	t.Run("Success - Invoices carry client and optional job", func(t *testing.T) {
		rows, err := st.Invoices().ListWithRelations(ctx, store.InvoiceFilter{})
		require.NoError(t, err)
		require.Len(t, rows, 2)

		var withJob, withoutJob int
		for _, r := range rows {
			require.NotNil(t, r.Client)
			if r.Job != nil {
				withJob++
				assert.Equal(t, "Panel upgrade", r.Job.Title)
			} else {
				withoutJob++
			}
		}
		assert.Equal(t, 1, withJob)
		assert.Equal(t, 1, withoutJob)
	})

	t.Run("Success - GetWithClient", func(t *testing.T) {
		j, c, err := st.Jobs().GetWithClient(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, job.ID, j.ID)
		assert.Equal(t, client.ID, c.ID)
	})
}
