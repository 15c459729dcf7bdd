package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/megaclicker/clicker-bot/internal/powerup"
)

var (
	tapsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "game_taps_total",
			Help: "Total number of manual taps processed",
		},
	)
	coinsEarnedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_coins_earned_total",
			Help: "Total coins credited labeled by income source",
		},
		[]string{"source"},
	)
	purchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_purchases_total",
			Help: "Total upgrade purchases labeled by boost kind and status",
		},
		[]string{"kind", "status"},
	)
	dailyClaimsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "game_daily_claims_total",
			Help: "Total daily rewards claimed",
		},
	)
	referralsCreditedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "game_referrals_credited_total",
			Help: "Total referral bonuses credited",
		},
	)
	powerupTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "powerup_transitions_total",
			Help: "Total power-up lifecycle transitions",
		},
		[]string{"from", "to"},
	)
	commandDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "command_duration_seconds",
			Help:    "Duration of bot commands in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	botCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total number of bot commands received labeled by command and status",
		},
		[]string{"command", "status"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by type and severity",
		},
		[]string{"type", "severity"},
	)
	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sessions",
			Help: "Current number of loaded player sessions",
		},
	)
	activeBoosts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "powerup_active_boosts",
			Help: "Current number of sessions with a running power-up boost",
		},
	)
)

func init() {
	powerup.RegisterTransitionRecorder(RecordPowerUpTransition)
}

// RecordTap counts one processed manual tap.
func RecordTap() {
	tapsTotal.Inc()
}

// RecordCoinsEarned tracks credited coins by income source.
func RecordCoinsEarned(source string, amount int64) {
	if source == "" {
		source = "unknown"
	}

	coinsEarnedTotal.WithLabelValues(source).Add(float64(amount))
}

// RecordPurchase counts an upgrade purchase attempt.
func RecordPurchase(kind, status string) {
	if kind == "" {
		kind = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	purchasesTotal.WithLabelValues(kind, status).Inc()
}

// RecordDailyClaim counts a successful daily reward claim.
func RecordDailyClaim() {
	dailyClaimsTotal.Inc()
}

// RecordReferralCredited counts a credited referral bonus.
func RecordReferralCredited() {
	referralsCreditedTotal.Inc()
}

// RecordPowerUpTransition tracks lifecycle phase changes.
func RecordPowerUpTransition(from, to string) {
	if from == "" {
		from = "unknown"
	}
	if to == "" {
		to = "unknown"
	}

	powerupTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordCommand increments command counters and records duration.
func RecordCommand(command, status string, duration time.Duration) {
	if command == "" {
		command = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	botCommandsTotal.WithLabelValues(command, status).Inc()
	commandDurationSeconds.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordError increments error counters with metadata.
func RecordError(errType, severity string) {
	if errType == "" {
		errType = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	errorsTotal.WithLabelValues(errType, severity).Inc()
}

// BoostStarted marks one power-up boost as running.
func BoostStarted() {
	activeBoosts.Inc()
}

// BoostEnded marks one power-up boost as finished.
func BoostEnded() {
	activeBoosts.Dec()
}

// SetActiveSessions updates the gauge for loaded sessions.
func SetActiveSessions(count int) {
	activeSessions.Set(float64(count))
}
