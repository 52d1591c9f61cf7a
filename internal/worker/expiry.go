package worker

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"

	"casino_platform/internal/bonus"
)

// ExpirySweeper periodically flips bonus claims past their expiry to the
// expired status.
type ExpirySweeper struct {
	bonuses   *bonus.Service
	interval  time.Duration
	scheduler gocron.Scheduler
}

func NewExpirySweeper(bonuses *bonus.Service, interval time.Duration) *ExpirySweeper {
	return &ExpirySweeper{bonuses: bonuses, interval: interval}
}

func (w *ExpirySweeper) Start() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	w.scheduler = sched

	_, err = sched.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(func() {
			w.Sweep(context.Background())
		}),
	)
	if err != nil {
		return err
	}

	sched.Start()
	logrus.WithField("interval", w.interval.String()).Info("claim expiry sweeper started")
	return nil
}

// Sweep runs one expiry pass.
func (w *ExpirySweeper) Sweep(ctx context.Context) {
	expired, err := w.bonuses.ExpireDue(ctx)
	if err != nil {
		logrus.WithError(err).Error("claim expiry sweep failed")
		return
	}
	if expired > 0 {
		logrus.WithField("expired", expired).Info("expired bonus claims")
	}
}

func (w *ExpirySweeper) Stop() error {
	if w.scheduler == nil {
		return nil
	}
	return w.scheduler.Shutdown()
}
