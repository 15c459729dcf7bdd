// Package jobs defines background task types and the queue infrastructure
// that processes them.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	TaskTypePlayerSync         = "player:sync"
	TaskTypeLeaderboardRefresh = "leaderboard:refresh"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// PlayerSyncPayload carries a player snapshot to the directory upsert worker.
type PlayerSyncPayload struct {
	TelegramID int64  `json:"telegram_id"`
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	Coins      int64  `json:"coins"`
	Level      int    `json:"level"`
	Referrals  int    `json:"referrals"`
}

// LeaderboardRefreshPayload configures how many directory rows the refresh
// job materializes into Redis.
type LeaderboardRefreshPayload struct {
	Limit int `json:"limit"`
}

func NewPlayerSyncTask(payload PlayerSyncPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypePlayerSync, data, asynq.Queue(QueueDefault)), nil
}

func NewLeaderboardRefreshTask(limit int) (*asynq.Task, error) {
	data, err := json.Marshal(LeaderboardRefreshPayload{Limit: limit})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskTypeLeaderboardRefresh, data, asynq.Queue(QueueLow)), nil
}
