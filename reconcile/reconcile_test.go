package reconcile

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pgrel/internal/testutil"
	"github.com/roach88/pgrel/relation"
	"github.com/roach88/pgrel/store"
)

func newTestReconciler(t *testing.T) *Reconciler {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "pgrel.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return New(st,
		WithTokenGenerator(NewFixedGenerator("pass-1", "pass-2", "pass-3", "pass-4")),
		WithMaxParallel(2),
	)
}

func kinds(events []relation.Event) []relation.EventKind {
	out := make([]relation.EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func TestRun_FirstPass(t *testing.T) {
	r := newTestReconciler(t)

	results, err := r.Run(context.Background(), map[string]relation.Bags{
		"db:0": testutil.ReadyBags("db:0"),
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, "db:0", res.RelationID)
	require.NoError(t, res.Err)
	assert.True(t, res.Readiness.Ready)
	assert.Equal(t,
		[]relation.EventKind{relation.EventRelationJoined, relation.EventMasterChanged},
		kinds(res.Events))
}

func TestRun_SecondPassQuiet(t *testing.T) {
	r := newTestReconciler(t)
	ctx := context.Background()
	batch := map[string]relation.Bags{"db:0": testutil.ReadyBags("db:0")}

	_, err := r.Run(ctx, batch)
	require.NoError(t, err)

	// Unchanged input: no events on the next pass.
	results, err := r.Run(ctx, batch)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Events)
	assert.True(t, results[0].Readiness.Ready)
}

func TestRun_MasterChangeBetweenPasses(t *testing.T) {
	r := newTestReconciler(t)
	ctx := context.Background()

	_, err := r.Run(ctx, map[string]relation.Bags{"db:0": testutil.ReadyBags("db:0")})
	require.NoError(t, err)

	moved := testutil.ReadyBags("db:0")
	moved.ServerApp[relation.KeyMaster] = "dbname=foo user=u host=prod2"
	results, err := r.Run(ctx, map[string]relation.Bags{"db:0": moved})
	require.NoError(t, err)

	require.Len(t, results, 1)
	require.Equal(t, []relation.EventKind{relation.EventMasterChanged}, kinds(results[0].Events))
	assert.Equal(t, "prod2", results[0].Events[0].Master.Host())
}

func TestRun_DepartedRelation(t *testing.T) {
	r := newTestReconciler(t)
	ctx := context.Background()

	_, err := r.Run(ctx, map[string]relation.Bags{
		"db:0": testutil.ReadyBags("db:0"),
		"db:1": testutil.ReadyBags("db:1"),
	})
	require.NoError(t, err)

	// db:1 disappears from the batch.
	results, err := r.Run(ctx, map[string]relation.Bags{"db:0": testutil.ReadyBags("db:0")})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "db:0", results[0].RelationID)
	assert.Empty(t, results[0].Events)

	assert.Equal(t, "db:1", results[1].RelationID)
	assert.Nil(t, results[1].Snapshot)
	assert.Equal(t,
		[]relation.EventKind{relation.EventMasterChanged, relation.EventRelationDeparted},
		kinds(results[1].Events))

	// A third pass sees no trace of db:1.
	results, err = r.Run(ctx, map[string]relation.Bags{"db:0": testutil.ReadyBags("db:0")})
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestRun_BadRelationDoesNotAbortBatch(t *testing.T) {
	r := newTestReconciler(t)
	ctx := context.Background()

	bad := testutil.ReadyBags("db:bad")
	bad.ServerApp[relation.KeyMaster] = "dbname='broken host=h"

	results, err := r.Run(ctx, map[string]relation.Bags{
		"db:bad":  bad,
		"db:good": testutil.ReadyBags("db:good"),
	})
	require.NoError(t, err, "per-relation protocol errors must not abort the pass")
	require.Len(t, results, 2)

	require.Error(t, results[0].Err)
	assert.True(t, relation.IsProtocolError(results[0].Err))

	require.NoError(t, results[1].Err)
	assert.True(t, results[1].Readiness.Ready)
}

func TestRun_BadRelationKeepsPreviousSnapshot(t *testing.T) {
	r := newTestReconciler(t)
	ctx := context.Background()

	_, err := r.Run(ctx, map[string]relation.Bags{"db:0": testutil.ReadyBags("db:0")})
	require.NoError(t, err)

	bad := testutil.ReadyBags("db:0")
	bad.ServerApp[relation.KeyMaster] = "dbname='broken host=h"
	_, err = r.Run(ctx, map[string]relation.Bags{"db:0": bad})
	require.NoError(t, err)

	// The server fixes its data: the next diff runs against the last
	// known-good snapshot, so the unchanged master fires no event.
	results, err := r.Run(ctx, map[string]relation.Bags{"db:0": testutil.ReadyBags("db:0")})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Empty(t, results[0].Events)
}

func TestRun_ManyRelationsParallel(t *testing.T) {
	r := newTestReconciler(t)
	ctx := context.Background()

	batch := make(map[string]relation.Bags)
	for _, id := range []string{"db:a", "db:b", "db:c", "db:d", "db:e"} {
		batch[id] = testutil.ReadyBags(id)
	}

	results, err := r.Run(ctx, batch)
	require.NoError(t, err)
	require.Len(t, results, 5)

	// Sorted by relation id regardless of evaluation order.
	for i, id := range []string{"db:a", "db:b", "db:c", "db:d", "db:e"} {
		assert.Equal(t, id, results[i].RelationID)
		assert.True(t, results[i].Readiness.Ready)
	}
}

func TestRun_PendingRelation(t *testing.T) {
	r := newTestReconciler(t)

	results, err := r.Run(context.Background(), map[string]relation.Bags{
		"db:0": testutil.PendingBags("db:0"),
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	require.NoError(t, res.Err)
	assert.False(t, res.Readiness.Ready)
	assert.Equal(t, "no server response", res.Readiness.Reason)
	assert.Empty(t, res.Events, "indeterminate version does not join yet")
}
