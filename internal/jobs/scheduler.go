package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
)

const defaultLeaderboardCron = "*/5 * * * *"

// Scheduler registers periodic tasks and drives their enqueueing.
type Scheduler interface {
	RegisterTasks(cronSpec string, leaderboardLimit int) error
	Run()
	Shutdown()
}

type scheduler struct {
	asynqScheduler *asynq.Scheduler
	log            *slog.Logger
}

func NewScheduler(redisOpt asynq.RedisConnOpt, log *slog.Logger) Scheduler {
	return &scheduler{
		asynqScheduler: asynq.NewScheduler(redisOpt, nil),
		log:            log,
	}
}

// RegisterTasks wires the recurring leaderboard refresh on the configured
// cadence. Player rows change constantly, so a tight cadence buys little and
// costs a directory scan.
func (s *scheduler) RegisterTasks(cronSpec string, leaderboardLimit int) error {
	if cronSpec == "" {
		cronSpec = defaultLeaderboardCron
	}

	task, err := NewLeaderboardRefreshTask(leaderboardLimit)
	if err != nil {
		return err
	}

	if _, err := s.asynqScheduler.Register(cronSpec, task); err != nil {
		return err
	}

	if s.log != nil {
		s.log.InfoContext(context.Background(), "scheduler: registered leaderboard refresh task")
	}

	return nil
}

func (s *scheduler) Run() {
	if s.log != nil {
		s.log.InfoContext(context.Background(), "scheduler: starting")
	}

	go func() {
		if err := s.asynqScheduler.Run(); err != nil && s.log != nil {
			s.log.ErrorContext(context.Background(), "scheduler: run failed", "error", err)
		}
	}()
}

func (s *scheduler) Shutdown() {
	if s.log != nil {
		s.log.InfoContext(context.Background(), "scheduler: shutting down")
	}

	s.asynqScheduler.Shutdown()
}
