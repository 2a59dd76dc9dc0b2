package controller

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// ticker lets tests drive the refresh loop by hand.
type ticker interface {
	C() <-chan time.Time
	Stop()
}

type tickerFactory func(d time.Duration) ticker

type timeTicker struct {
	*time.Ticker
}

func (t *timeTicker) C() <-chan time.Time {
	return t.Ticker.C
}

// Refresh reloads a page unless a load is already running, in which case it
// returns false without queueing anything.
func (c *Controller) Refresh(ctx context.Context, page Page) (bool, error) {
	if c.Loading() || !c.refreshing.CompareAndSwap(false, true) {
		log.Debug().Str("page", string(page)).Msg("Refresh skipped, load in progress")
		return false, nil
	}
	defer c.refreshing.Store(false)

	if err := c.LoadPage(ctx, page); err != nil {
		return true, err
	}
	return true, nil
}

// StartAutoRefresh reloads page every interval until ctx is done. Ticks that
// arrive while a load is running are skipped.
func (c *Controller) StartAutoRefresh(ctx context.Context, page Page, interval time.Duration) {
	if interval <= 0 {
		log.Warn().Dur("interval", interval).Msg("Auto refresh disabled")
		return
	}

	t := c.newTicker(interval)
	defer t.Stop()

	log.Info().Str("page", string(page)).Dur("interval", interval).Msg("Auto refresh started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("page", string(page)).Msg("Auto refresh stopped")
			return
		case <-t.C():
			ran, err := c.Refresh(ctx, page)
			if err != nil {
				log.Error().Err(err).Str("page", string(page)).Msg("Auto refresh failed")
				continue
			}
			if ran {
				log.Debug().Str("page", string(page)).Msg("Content refreshed")
			}
		}
	}
}
