package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rentkeeper/internal/common"
	"github.com/dmitrijs2005/rentkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/rentkeeper/internal/server/models"
)

const sweepBatchSize = 100

// SweepExpired marks pending uploads whose credential has expired as
// expired and deletes anything written under their keys. It returns how
// many uploads it retired.
func (s *FileService) SweepExpired(ctx context.Context) (int, error) {
	uploads := s.repos.Uploads(s.db)

	expired, err := uploads.ListExpired(ctx, s.now(), sweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("list expired uploads: %w", err)
	}

	swept := 0
	for _, u := range expired {
		err := uploads.Transition(ctx, u.UploadToken, models.UploadPending, models.UploadExpired)
		if errors.Is(err, common.ErrorConflict) {
			continue
		}
		if err != nil {
			return swept, fmt.Errorf("expire upload %s: %w", u.UploadToken, err)
		}
		s.removeBlob(ctx, u.StorageKey)
		s.metrics.Upload(metrics.OutcomeExpired)
		swept++
	}

	if swept > 0 {
		s.log.Info(ctx, "expired uploads swept", "count", swept)
	}
	return swept, nil
}

// RunSweeper calls SweepExpired every interval until ctx is done. Sweep
// failures are logged and retried on the next tick.
func (s *FileService) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.SweepExpired(ctx); err != nil && ctx.Err() == nil {
				s.log.Error(ctx, "sweep failed", "error", err)
			}
		}
	}
}
