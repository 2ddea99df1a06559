package utils

import (
	"fmt"
	"log/slog"

	cron "github.com/robfig/cron/v3"
)

// Job is one recurring background task.
type Job struct {
	Name string
	Spec string
	Run  func()
}

// StartScheduler runs jobs on their cron schedules and returns the running
// scheduler so the caller can stop it on shutdown.
func StartScheduler(logger *slog.Logger, jobs ...Job) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.Recover(cronLogger{logger})))
	for _, job := range jobs {
		job := job
		if _, err := c.AddFunc(job.Spec, func() {
			logger.Debug("running job", "job", job.Name)
			job.Run()
		}); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", job.Name, err)
		}
	}
	c.Start()
	return c, nil
}

// cronLogger adapts slog to cron's logger.
type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append([]any{"err", err}, keysAndValues...)...)
}
