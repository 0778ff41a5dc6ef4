package cron

import (
	"time"

	"tempobook/services/session"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StartSessionJanitor sweeps idle sessions out of the cache every minute.
// GetOrCreate also evicts lazily; this keeps memory bounded even when a
// quiet period means no inbound messages trigger the lazy path.
func StartSessionJanitor(cache *session.Cache, logger *zap.Logger) *cron.Cron {
	c := cron.New()
	_, err := c.AddFunc("* * * * *", func() {
		if evicted := cache.EvictIdle(time.Now()); evicted > 0 {
			logger.Info("janitor evicted idle sessions",
				zap.Int("count", evicted),
				zap.Int("live", cache.Len()))
		}
	})
	if err != nil {
		logger.Fatal("failed to schedule session janitor", zap.Error(err))
	}
	c.Start()
	return c
}
