package collector

import (
	"context"
	"time"
)

// Run starts scheduled collection and blocks until ctx is done.
// A pass runs immediately and then every configured interval while collection is enabled.
// Pass failures are logged and never stop the loop.
// Passes started by any caller are cancelled once ctx is done.
func (c *Collector) Run(ctx context.Context) {
	c.mu.Lock()
	c.lifetime = ctx
	c.mu.Unlock()

	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	c.logger.Infow("Collection scheduler started", "interval", c.cfg.Interval)
	c.runScheduled(ctx)

	for {
		select {
		case <-ctx.Done():
			c.logger.Infow("Collection scheduler stopped")
			return
		case <-ticker.C:
			c.runScheduled(ctx)
		}
	}
}

func (c *Collector) runScheduled(ctx context.Context) {
	if !c.Enabled() {
		return
	}
	if err := c.CollectAll(ctx); err != nil {
		c.logger.Warnw("Scheduled collection failed", "error", err)
	}
}
