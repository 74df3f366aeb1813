package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/doctran/doctran/internal/repo"
)

type inFlightLister interface {
	InFlightIDs() []string
}

// StaleSweepJob fails units stuck in TRANSLATING, which happens when
// the process dies mid-run. Documents with a live run are skipped.
type StaleSweepJob struct {
	units    *repo.UnitRepo
	inflight inFlightLister
	maxAge   time.Duration
}

func NewStaleSweepJob(units *repo.UnitRepo, inflight inFlightLister, maxAge time.Duration) *StaleSweepJob {
	return &StaleSweepJob{units: units, inflight: inflight, maxAge: maxAge}
}

func (j *StaleSweepJob) Name() string {
	return "stale_sweep"
}

func (j *StaleSweepJob) Run(ctx context.Context) error {
	if j.units == nil {
		return nil
	}
	maxAge := j.maxAge
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	var exclude []string
	if j.inflight != nil {
		exclude = j.inflight.InFlightIDs()
	}
	cutoff := time.Now().Add(-maxAge).Unix()
	changed, err := j.units.MarkStale(ctx, cutoff, exclude)
	if err != nil {
		return err
	}
	if changed > 0 {
		logutil.GetLogger(ctx).Warn("stale translating units failed by sweeper",
			zap.Int64("count", changed), zap.Int("inflight_excluded", len(exclude)))
	}
	return nil
}
