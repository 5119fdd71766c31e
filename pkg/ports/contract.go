package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/tally/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunRecordStoreContract runs a suite of tests to verify that a RecordStore
// implementation adheres to the interface contract. triggers, when non-nil,
// must receive every trigger the store publishes.
func RunRecordStoreContract(t *testing.T, store RecordStore, triggers <-chan domain.Trigger) {
	ctx := context.Background()

	expectTrigger := func(t *testing.T, kind domain.TriggerKind) {
		t.Helper()
		if triggers == nil {
			return
		}
		select {
		case got := <-triggers:
			assert.Equal(t, kind, got.Kind)
		case <-time.After(2 * time.Second):
			t.Fatalf("expected %s trigger", kind)
		}
	}

	t.Run("Empty Snapshot", func(t *testing.T) {
		snap, err := store.Snapshot(ctx)
		require.NoError(t, err)
		require.NotNil(t, snap)
		assert.Empty(t, snap.Leads)
		assert.Empty(t, snap.Projects)
		assert.Empty(t, snap.Payments)
	})

	t.Run("Replace Leads", func(t *testing.T) {
		leads := []domain.Lead{
			{ID: "l1", Name: "Acme", Status: domain.LeadNew},
			{ID: "l2", Name: "Globex", Status: domain.LeadWon},
		}
		require.NoError(t, store.ReplaceLeads(ctx, leads))
		expectTrigger(t, domain.TriggerLeadsChanged)

		snap, err := store.Snapshot(ctx)
		require.NoError(t, err)
		require.Len(t, snap.Leads, 2)
		assert.Equal(t, "Acme", snap.Leads[0].Name)
	})

	t.Run("Replace Projects", func(t *testing.T) {
		require.NoError(t, store.ReplaceProjects(ctx, []domain.Project{
			{ID: "p1", Name: "Website", Status: domain.ProjectActive, Budget: 1200},
		}))
		expectTrigger(t, domain.TriggerProjectsChanged)

		snap, err := store.Snapshot(ctx)
		require.NoError(t, err)
		require.Len(t, snap.Projects, 1)
		assert.Equal(t, 1200.0, snap.Projects[0].Budget)
	})

	t.Run("Replace Payments", func(t *testing.T) {
		paidAt := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
		require.NoError(t, store.ReplacePayments(ctx, []domain.Payment{
			{ID: "pay1", Amount: 99.5, Status: domain.PaymentPaid, PaidAt: paidAt},
		}))
		expectTrigger(t, domain.TriggerPaymentsChanged)

		snap, err := store.Snapshot(ctx)
		require.NoError(t, err)
		require.Len(t, snap.Payments, 1)
		assert.True(t, paidAt.Equal(snap.Payments[0].PaidAt))
	})

	t.Run("Replace With Empty Clears", func(t *testing.T) {
		require.NoError(t, store.ReplaceLeads(ctx, nil))
		expectTrigger(t, domain.TriggerLeadsChanged)

		snap, err := store.Snapshot(ctx)
		require.NoError(t, err)
		assert.Empty(t, snap.Leads)
		assert.Len(t, snap.Projects, 1, "other collections are untouched")
	})
}

// RunRendererContract verifies that a Renderer creates instances bound to
// their slot, applies updates in place and releases them exactly once.
// Every instance it creates is destroyed before it returns.
func RunRendererContract(t *testing.T, r Renderer) {
	ctx := context.Background()

	for _, slot := range domain.Slots() {
		t.Run("Lifecycle "+string(slot), func(t *testing.T) {
			cfg := domain.ChartConfig{Slot: slot, Type: domain.ChartBar, Title: "before"}
			inst, err := r.Create(ctx, cfg)
			require.NoError(t, err)
			require.NotNil(t, inst)
			assert.Equal(t, slot, inst.Slot())
			assert.Equal(t, "before", inst.Config().Title)

			cfg.Title = "after"
			require.NoError(t, inst.Update(cfg))
			assert.Equal(t, "after", inst.Config().Title)

			require.NoError(t, inst.Destroy())
			assert.Error(t, inst.Destroy(), "second destroy must fail")
		})
	}
}
