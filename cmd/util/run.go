package util

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/wright-cemrc-projects/sync-scripts/pkg/errors"
	"github.com/wright-cemrc-projects/sync-scripts/pkg/metrics"
	"github.com/wright-cemrc-projects/sync-scripts/pkg/sync"
)

// RunSync processes `units` with an orchestrator configured by `opts`. If
// `metricsPath` is set, the run's metrics are written there afterwards, even
// if the run was interrupted.
func RunSync(ctx context.Context, opts sync.Options, units []sync.Unit, metricsPath string) (*sync.RunLog, error) {
	runMetrics := metrics.New()
	opts.Recorder = runMetrics

	runLog, runErr := sync.New(opts).Run(ctx, units)
	runMetrics.MarkRunFinished(time.Now())

	if metricsPath != "" {
		if err := runMetrics.WriteTextfile(metricsPath); err != nil {
			if runErr != nil {
				log.WithError(err).Warn("Failed to write metrics")
			} else {
				return runLog, err
			}
		}
	}

	if runErr != nil {
		return runLog, errors.WithContext(runErr, "sync interrupted")
	}
	return runLog, nil
}
