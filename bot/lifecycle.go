package bot

import (
	"fmt"
	"os"
	"os/exec"
	"sync"

	"mian-bot/models"

	"github.com/sirupsen/logrus"
)

// Lifecycle is the one-shot termination signal shared by shutdown and restart.
// The first request wins; later ones are ignored.
type Lifecycle struct {
	once   sync.Once
	done   chan struct{}
	spawn  func() error
	reason models.Action
}

// NewLifecycle creates a Lifecycle. spawn starts the replacement process on restart.
func NewLifecycle(spawn func() error) *Lifecycle {
	return &Lifecycle{
		done:  make(chan struct{}),
		spawn: spawn,
	}
}

// Shutdown requests process termination.
func (l *Lifecycle) Shutdown() {
	l.once.Do(func() {
		l.reason = models.ActionShutdown
		close(l.done)
	})
}

// Restart spawns a replacement process and then requests termination. The
// replacement is not awaited; if it cannot be started the bot still shuts down.
func (l *Lifecycle) Restart() {
	l.once.Do(func() {
		if err := l.spawn(); err != nil {
			logrus.WithField("module", "lifecycle").WithError(err).Error("Cannot spawn replacement process, shutting down only")
		}
		l.reason = models.ActionRestart
		close(l.done)
	})
}

// Done is closed once termination was requested.
func (l *Lifecycle) Done() <-chan struct{} {
	return l.done
}

// Reason reports which request won. Only meaningful after Done is closed.
func (l *Lifecycle) Reason() models.Action {
	select {
	case <-l.done:
		return l.reason
	default:
		return models.ActionNone
	}
}

// SpawnSelf starts the current executable again with the same arguments and environment.
func SpawnSelf() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving executable: %w", err)
	}

	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Env = os.Environ()
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", exe, err)
	}

	logrus.WithFields(logrus.Fields{
		"module": "lifecycle",
		"pid":    cmd.Process.Pid,
	}).Info("Replacement process started")
	return cmd.Process.Release()
}
