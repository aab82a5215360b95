package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunExpirySweep expires lapsed memberships immediately and then every
// interval until ctx is cancelled. Errors are logged and the loop continues.
func RunExpirySweep(ctx context.Context, members MemberService, interval time.Duration, logger *zap.Logger) {
	sweep := func() {
		if _, err := members.ExpireLapsed(ctx); err != nil && ctx.Err() == nil {
			logger.Error("expiry sweep failed", zap.Error(err))
		}
	}

	sweep()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("expiry sweep stopped")
			return
		case <-ticker.C:
			sweep()
		}
	}
}
