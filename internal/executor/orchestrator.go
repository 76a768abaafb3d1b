package executor

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/spachava753/cargo-install/internal/config"
	"github.com/spachava753/cargo-install/internal/models"
)

// PlanEntry is one resolved crate of a plan.
type PlanEntry struct {
	Spec     models.CrateSpec
	Resolved *Resolved
	Notices  []models.Notice
}

// PlanOrchestrator resolves every crate of a plan.
type PlanOrchestrator struct {
	Resolver *Resolver
	// Concurrency bounds the number of crates resolved at once.
	Concurrency int
}

// NewPlanOrchestrator creates a new plan orchestrator.
func NewPlanOrchestrator(resolver *Resolver, concurrency int) *PlanOrchestrator {
	return &PlanOrchestrator{Resolver: resolver, Concurrency: concurrency}
}

// Resolve resolves all crates of plan concurrently. Entries are returned in
// plan order. The first failure cancels the remaining resolutions.
func (o *PlanOrchestrator) Resolve(ctx context.Context, plan models.Plan) ([]PlanEntry, error) {
	entries := make([]PlanEntry, len(plan.Crates))

	nWorkers := o.Concurrency
	if nWorkers <= 0 {
		nWorkers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(nWorkers)

	for idx, spec := range plan.Crates {
		g.Go(func() error {
			in, notices, err := config.ParseInput(spec)
			if err != nil {
				return fmt.Errorf("crates[%d] %s: %w", idx, spec.Crate, err)
			}

			slog.Debug("resolving crate", "crate", spec.Crate)
			resolved, err := o.Resolver.Resolve(ctx, in)
			if err != nil {
				return fmt.Errorf("crates[%d] %s: %w", idx, spec.Crate, err)
			}

			entries[idx] = PlanEntry{
				Spec:     spec,
				Resolved: resolved,
				Notices:  append(notices, resolved.Notices...),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}
