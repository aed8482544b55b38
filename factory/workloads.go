package factory

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/warp/workload-engine/workload"
)

// Observer is notified after every calculation.
type Observer interface {
	ObserveCalculation(mode string, d time.Duration, err error)
}

// BuildOptions tune BuildWorkloads. The zero value is usable.
type BuildOptions struct {
	Logger   *zap.Logger
	Observer Observer
	// Concurrency limits parallel calculations; <= 0 means 4.
	Concurrency int
}

// BuildWorkloads calculates every employment of a school year. Calculations
// run in parallel; they share no state. Any error aborts the whole build and
// no Workloads are returned.
func BuildWorkloads(ctx context.Context, src workload.Source, schoolYearID string, opts BuildOptions) (*workload.Workloads, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = 4
	}

	sy, err := src.SchoolYear(ctx, schoolYearID)
	if err != nil {
		return nil, err
	}
	if _, err := NewMode(sy); err != nil {
		return nil, err
	}
	inputs, err := src.Employments(ctx, schoolYearID)
	if err != nil {
		return nil, err
	}

	results := make([]*workload.Workload, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			w, err := CalculateObserved(in, opts.Observer, workload.WithLogger(logger))
			if err != nil {
				return fmt.Errorf("employment %q: %w", in.Employment.ID, err)
			}
			results[i] = w
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("school year calculation failed",
			zap.String("school_year_id", schoolYearID), zap.Error(err))
		return nil, err
	}

	ws := workload.NewWorkloads(sy)
	for _, w := range results {
		ws.Put(w)
	}
	logger.Info("school year calculated",
		zap.String("school_year_id", schoolYearID),
		zap.Int("workloads", ws.Len()),
	)
	return ws, nil
}

// CalculateObserved is Calculate reporting its duration to obs (may be nil).
func CalculateObserved(in *workload.EmploymentInput, obs Observer, opts ...workload.Option) (*workload.Workload, error) {
	start := time.Now()
	w, err := Calculate(in, opts...)
	if obs != nil {
		mode := fmt.Sprintf("%d", in.Employment.SchoolYear.CalculationMode)
		obs.ObserveCalculation(mode, time.Since(start), err)
	}
	return w, err
}
