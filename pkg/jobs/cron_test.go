package jobs

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltflow/crm/pkg/metrics"
	"github.com/voltflow/crm/pkg/models"
	"github.com/voltflow/crm/pkg/testdata"
)

func TestSweepOverdue(t *testing.T) {
	ctx := context.Background()
	st := testdata.OpenStore(t)
	m := metrics.New(prometheus.NewRegistry())

	client, err := st.Clients().Create(ctx, testdata.GenerateClient())
	require.NoError(t, err)

	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -3)
	future := now.AddDate(0, 0, 10)

	create := func(status models.InvoiceStatus, due *time.Time) *models.Invoice {
		inv, err := st.Invoices().Create(ctx, &models.Invoice{ClientID: client.ID, Amount: 100, Status: status, DueDate: due})
		require.NoError(t, err)
		return inv
	}

	pastSent := create(models.InvoiceStatusSent, &past)
	futureSent := create(models.InvoiceStatusSent, &future)
	pastDraft := create(models.InvoiceStatusDraft, &past)
	pastPaid := create(models.InvoiceStatusPaid, &past)
	noDue := create(models.InvoiceStatusSent, nil)

	cm := NewCronManager(st, m, log.New(io.Discard, "", 0))
	cm.now = func() time.Time { return now }

	n, err := cm.SweepOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OverdueInvoicesMarked))

	expect := map[int]models.InvoiceStatus{
		pastSent.ID:   models.InvoiceStatusOverdue,
		futureSent.ID: models.InvoiceStatusSent,
		pastDraft.ID:  models.InvoiceStatusDraft,
		pastPaid.ID:   models.InvoiceStatusPaid,
		noDue.ID:      models.InvoiceStatusSent,
	}
	for id, want := range expect {
		inv, err := st.Invoices().Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, inv.Status, "invoice %d", id)
	}

	n, err = cm.SweepOverdue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSetupJobs(t *testing.T) {
	st := testdata.OpenStore(t)
	cm := NewCronManager(st, nil, log.New(io.Discard, "", 0))

	require.NoError(t, cm.SetupJobs(""))
	assert.Len(t, cm.cron.Entries(), 1)

	assert.Error(t, NewCronManager(st, nil, nil).SetupJobs("not a schedule"))

	cm.Start()
	cm.Stop()
}
