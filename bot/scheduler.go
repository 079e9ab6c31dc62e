package bot

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ServingSetter receives the gateway readiness computed by the status job.
type ServingSetter interface {
	SetServing(serving bool)
}

// startScheduler starts the cron job that reports gateway status.
func (b *Bot) startScheduler() error {
	b.cron = cron.New()
	_, err := b.cron.AddFunc(b.Config.StatusSchedule, b.checkStatus)
	if err != nil {
		return fmt.Errorf("could not set up status job %q: %w", b.Config.StatusSchedule, err)
	}
	b.cron.Start()
	logrus.WithField("module", "scheduler").WithField("schedule", b.Config.StatusSchedule).Info("Status job scheduled")
	return nil
}

// stopScheduler stops the cron jobs and waits for a running one to finish.
func (b *Bot) stopScheduler() {
	if b.cron != nil {
		<-b.cron.Stop().Done()
		logrus.WithField("module", "scheduler").Info("Scheduler stopped")
	}
}

// checkStatus samples the session once and reports it.
func (b *Bot) checkStatus() {
	b.Session.RLock()
	ready := b.Session.DataReady
	b.Session.RUnlock()
	reportStatus(ready, b.Session.HeartbeatLatency(), b.servingSetter())
}

func reportStatus(ready bool, latency time.Duration, status ServingSetter) {
	log := logrus.WithFields(logrus.Fields{
		"module":     "scheduler",
		"ready":      ready,
		"latency_ms": latency.Milliseconds(),
	})
	if ready {
		log.Debug("Gateway status")
	} else {
		log.Warn("Gateway is not ready")
	}

	if status != nil {
		status.SetServing(ready)
	}
}
