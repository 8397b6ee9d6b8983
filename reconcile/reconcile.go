// Package reconcile drives the relation engine over a batch of
// relations and a snapshot store.
//
// One Run is one hook invocation's worth of work: for every relation in
// the batch it loads the previously persisted snapshot, classifies and
// normalizes the current bus data, derives change events, and persists
// the new snapshot. Relations persisted in the store but absent from
// the batch are reported as departed and removed.
//
// Relations share no state, so their evaluations run concurrently; all
// store writes happen after the parallel phase, on the single SQLite
// writer.
package reconcile

import (
	"context"
	"log/slog"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/pgrel/relation"
	"github.com/roach88/pgrel/store"
)

// Result is the outcome of reconciling one relation.
type Result struct {
	// RelationID identifies the relation.
	RelationID string

	// Snapshot is the newly built snapshot, nil for departed relations
	// and for relations whose bus data failed normalization.
	Snapshot *relation.Snapshot

	// Readiness is the evaluation verdict; zero when Err is set or the
	// relation departed.
	Readiness relation.Readiness

	// Events are the derived change events, in delivery order.
	Events []relation.Event

	// Err is set when this relation's data was malformed (a
	// ProtocolError); other relations in the batch are unaffected. The
	// previously persisted snapshot is kept so the next pass diffs
	// against known-good state.
	Err error
}

// Reconciler runs reconcile passes against a snapshot store.
type Reconciler struct {
	st          *store.Store
	tokens      TokenGenerator
	maxParallel int
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithTokenGenerator replaces the pass token generator. Tests use
// NewFixedGenerator for deterministic log output.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(r *Reconciler) { r.tokens = g }
}

// WithMaxParallel bounds the number of relations evaluated
// concurrently. Defaults to GOMAXPROCS.
func WithMaxParallel(n int) Option {
	return func(r *Reconciler) {
		if n > 0 {
			r.maxParallel = n
		}
	}
}

// New creates a Reconciler backed by the given snapshot store.
func New(st *store.Store, opts ...Option) *Reconciler {
	r := &Reconciler{
		st:          st,
		tokens:      UUIDv7Generator{},
		maxParallel: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs one reconcile pass over the batch, keyed by relation id.
// Results are sorted by relation id for deterministic output, departed
// relations included.
//
// Per-relation protocol errors are reported in the Result and do not
// abort the pass; the error return is reserved for store failures.
func (r *Reconciler) Run(ctx context.Context, batch map[string]relation.Bags) ([]Result, error) {
	token := r.tokens.Generate()
	log := slog.With("pass", token)
	log.Debug("reconcile pass starting", "relations", len(batch))

	ids := make([]string, 0, len(batch))
	for id := range batch {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// Load phase: all reads up front, before fanning out.
	previous := make(map[string]*relation.Snapshot, len(ids))
	for _, id := range ids {
		prev, found, err := r.st.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		if found {
			previous[id] = prev
		}
	}

	stored, err := r.st.List(ctx)
	if err != nil {
		return nil, err
	}
	var departed []string
	for _, id := range stored {
		if _, ok := batch[id]; !ok {
			departed = append(departed, id)
		}
	}

	// Evaluation phase: pure per-relation work, no shared state.
	results := make([]Result, len(ids))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(r.maxParallel)
	for i, id := range ids {
		g.Go(func() error {
			results[i] = evaluateOne(previous[id], batch[id])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Persist phase: single writer.
	for _, res := range results {
		if res.Err != nil {
			log.Warn("relation left unpersisted",
				"relation", res.RelationID,
				"error", res.Err)
			continue
		}
		if err := r.st.Save(ctx, res.Snapshot); err != nil {
			return nil, err
		}
	}
	for _, id := range departed {
		prev, _, err := r.st.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		events, diffErr := relation.Diff(prev, nil)
		if err := r.st.Delete(ctx, id); err != nil {
			return nil, err
		}
		results = append(results, Result{RelationID: id, Events: events, Err: diffErr})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].RelationID < results[j].RelationID
	})

	log.Debug("reconcile pass finished", "results", len(results))
	return results, nil
}

// evaluateOne runs the engine for a single relation: classify,
// normalize, evaluate, diff.
func evaluateOne(prev *relation.Snapshot, bags relation.Bags) Result {
	version := relation.DetectVersion(bags)
	snap, err := relation.BuildSnapshot(version, bags)
	if err != nil {
		return Result{RelationID: bags.RelationID, Err: err}
	}

	readiness, err := relation.Evaluate(snap)
	if err != nil {
		return Result{RelationID: bags.RelationID, Snapshot: snap, Err: err}
	}

	events, err := relation.Diff(prev, snap)
	if err != nil {
		return Result{RelationID: bags.RelationID, Snapshot: snap, Err: err}
	}

	return Result{
		RelationID: bags.RelationID,
		Snapshot:   snap,
		Readiness:  readiness,
		Events:     events,
	}
}
