package game

import (
	"time"

	"github.com/megaclicker/clicker-bot/pkg/config"
)

// Command is a typed request against the economy engine. Apply is the single
// pure transition: (State, Command) -> (State, []Event, error). The runtime
// layers persistence, timers and notifications on top of the returned
// events.
type Command interface {
	CommandName() string
}

// Click is one manual tap. Power is the effective click power, already
// boosted by the power-up multiplier when one is active.
type Click struct {
	Power int64
}

func (Click) CommandName() string { return "click" }

// PassiveTick credits one passive-income period.
type PassiveTick struct{}

func (PassiveTick) CommandName() string { return "passive_tick" }

// Buy purchases one upgrade level.
type Buy struct {
	Kind BoostKind
}

func (Buy) CommandName() string { return "buy" }

// ClaimDailyReward claims the pending daily login bonus.
type ClaimDailyReward struct{}

func (ClaimDailyReward) CommandName() string { return "claim_daily" }

// CreditReferral grants the one-time referral bonus. Token idempotence is
// enforced by the referral ledger before this command is issued.
type CreditReferral struct {
	Token string
}

func (CreditReferral) CommandName() string { return "credit_referral" }

// RecordReferral is applied to the referrer's state when another player
// redeems their link.
type RecordReferral struct{}

func (RecordReferral) CommandName() string { return "record_referral" }

// Apply executes cmd against s and returns the next state plus the events
// describing what happened. The input state is never mutated.
func Apply(s State, cmd Command, cfg config.GameConfig, now time.Time) (State, []Event, error) {
	switch c := cmd.(type) {
	case Click:
		power := c.Power
		if power <= 0 {
			power = s.ClickPower
		}
		next, events := credit(s.Clone(), cfg, power, "click")
		return next, events, nil

	case PassiveTick:
		if s.AutoClickPower <= 0 {
			return s, nil, nil
		}
		next, events := credit(s.Clone(), cfg, s.AutoClickPower, "passive")
		return next, events, nil

	case Buy:
		return Purchase(s, c.Kind, cfg)

	case ClaimDailyReward:
		return ClaimDaily(s, cfg, now)

	case CreditReferral:
		next, events := credit(s.Clone(), cfg, cfg.ReferralBonus, "referral")
		events = append([]Event{ReferralCredited{Token: c.Token, Amount: cfg.ReferralBonus}}, events...)
		return next, events, nil

	case RecordReferral:
		next := s.Clone()
		next.ReferralsCount++
		return next, []Event{ReferralRecorded{Count: next.ReferralsCount}}, nil
	}

	return s, nil, nil
}
