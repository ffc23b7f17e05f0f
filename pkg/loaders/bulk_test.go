package loaders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltflow/crm/pkg/models"
)

func TestBulkLeadStatus(t *testing.T) {
	svc, st := setupTestLoader(t)
	ctx := context.Background()

	a, err := st.Leads().Create(ctx, &models.Lead{Name: "Ann"})
	require.NoError(t, err)
	b, err := st.Leads().Create(ctx, &models.Lead{Name: "Ben"})
	require.NoError(t, err)

	write := func(ctx context.Context, id int) (string, error) {
		if id == b.ID {
			return "", errors.New("write failed")
		}
		return "contacted", st.Leads().UpdateStatus(ctx, id, models.LeadStatusContacted)
	}

	t.Run("Success - Failed rows are reported and rolled back", func(t *testing.T) {
		res, err := svc.BulkLeadStatus(ctx, []int{a.ID, b.ID, 9999}, "contacted", write)
		require.NoError(t, err)

		require.Len(t, res.Failed, 2)
		assert.Equal(t, b.ID, res.Failed[0].ID)
		assert.Equal(t, BulkFailure{ID: 9999, Error: "lead not found"}, res.Failed[1])
		assert.Equal(t, LeadCounts{New: 1, Contacted: 1, All: 2}, res.Counts)
	})

	t.Run("Success - Refetches when the stored status differs", func(t *testing.T) {
		res, err := svc.BulkLeadStatus(ctx, []int{a.ID}, "qualified", func(ctx context.Context, id int) (string, error) {
			return "converted", st.Leads().UpdateStatus(ctx, id, models.LeadStatusConverted)
		})
		require.NoError(t, err)
		assert.Empty(t, res.Failed)
		assert.Equal(t, 1, res.Counts.Converted)
		assert.Equal(t, 0, res.Counts.Qualified)
	})
}

func TestBulkDeleteLeads(t *testing.T) {
	svc, st := setupTestLoader(t)
	ctx := context.Background()

	a, err := st.Leads().Create(ctx, &models.Lead{Name: "Ann"})
	require.NoError(t, err)
	_, err = st.Leads().Create(ctx, &models.Lead{Name: "Ben"})
	require.NoError(t, err)

	res, err := svc.BulkDeleteLeads(ctx, []int{a.ID, 9999})
	require.NoError(t, err)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, 9999, res.Failed[0].ID)
	assert.Equal(t, 1, res.Counts.All)
	require.Len(t, res.Leads, 1)
	assert.Equal(t, "Ben", res.Leads[0].Name)

	_, err = st.Leads().Get(ctx, a.ID)
	assert.Error(t, err)
}
