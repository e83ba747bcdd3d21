package diagnostics

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"recommend-service/metrics"
	"recommend-service/model"
)

// Aggregator fans probes out concurrently and merges the results into one
// report. Each probe runs under its own timeout, so total wall time is
// bounded by the slowest single probe, not the sum.
type Aggregator struct {
	prober  *Prober
	targets []Target
}

func NewAggregator(prober *Prober, targets []Target) *Aggregator {
	return &Aggregator{prober: prober, targets: targets}
}

func (a *Aggregator) Run(ctx context.Context) model.DiagnosticsReport {
	results := make([]model.HealthCheckResult, len(a.targets))

	var g errgroup.Group
	for i, t := range a.targets {
		i, t := i, t
		g.Go(func() error {
			results[i] = a.prober.Check(ctx, t)
			return nil
		})
	}
	// Probes encode failures as data, so Wait never yields an error.
	_ = g.Wait()

	overall := model.StatusOK
	for _, r := range results {
		metrics.ProbesTotal.WithLabelValues(r.Name, string(r.Status)).Inc()
		if r.Status == model.StatusSkipped {
			continue
		}
		if r.Status.WorseThan(overall) {
			overall = r.Status
		}
	}

	log.Printf("Diagnostics run complete: overall=%s components=%d", overall, len(results))

	return model.DiagnosticsReport{
		OverallStatus: overall,
		Components:    results,
	}
}
