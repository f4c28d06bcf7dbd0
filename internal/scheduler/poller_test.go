package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/smartcity/trafficsim/internal/domain"
	"github.com/stretchr/testify/assert"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) Refresh(ctx context.Context) (domain.DashboardData, error) {
	r.calls.Add(1)
	return domain.DashboardData{}, r.err
}

func TestPoller_Run(t *testing.T) {
	refresher := &countingRefresher{}
	logger, _ := logtest.NewNullLogger()
	poller := NewPoller(refresher, 10*time.Millisecond, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- poller.Run(ctx) }()

	assert.Eventually(t, func() bool { return refresher.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}

func TestPoller_RefreshesImmediately(t *testing.T) {
	refresher := &countingRefresher{}
	logger, _ := logtest.NewNullLogger()
	poller := NewPoller(refresher, time.Hour, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = poller.Run(ctx) }()
	defer cancel()

	assert.Eventually(t, func() bool { return refresher.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestPoller_LogsErrors(t *testing.T) {
	refresher := &countingRefresher{err: errors.New("boom")}
	logger, hook := logtest.NewNullLogger()
	poller := NewPoller(refresher, time.Hour, logger)

	poller.tick(context.Background())

	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "Traffic refresh failed", hook.LastEntry().Message)

	hook.Reset()
	refresher.err = context.Canceled
	poller.tick(context.Background())
	assert.Empty(t, hook.Entries)
}
