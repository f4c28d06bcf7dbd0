package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/smartcity/trafficsim/internal/domain"
)

// Refresher produces a new dashboard state
type Refresher interface {
	Refresh(ctx context.Context) (domain.DashboardData, error)
}

// Poller refreshes the dashboard on a fixed interval
type Poller struct {
	refresher Refresher
	interval  time.Duration
	log       logrus.FieldLogger
}

// NewPoller creates a poller
func NewPoller(refresher Refresher, interval time.Duration, log logrus.FieldLogger) *Poller {
	return &Poller{
		refresher: refresher,
		interval:  interval,
		log:       log,
	}
}

// Run refreshes once immediately and then every interval until ctx is done
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			p.log.Info("Traffic poller stopped")
			return nil
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	data, err := p.refresher.Refresh(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			p.log.WithError(err).Error("Traffic refresh failed")
		}
		return
	}

	p.log.WithFields(logrus.Fields{
		"snapshot_id":   data.Snapshot.ID,
		"roads":         data.Stats.TotalRoads,
		"average_speed": data.Stats.AverageSpeed,
	}).Debug("Traffic refreshed")
}
