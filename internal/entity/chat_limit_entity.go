package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	PlanFree = "free"
	PlanPro  = "pro"
)

// ChatLimit is the per-user quota record. MessagesSent only counts while
// now < LimitResetAt; after that the window is expired and the counter is
// logically zero until the next increment rolls it over.
type ChatLimit struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	MessagesSent int
	LimitResetAt time.Time
	PlanType     string
	CreatedAt    time.Time
}

func (l *ChatLimit) Expired(now time.Time) bool {
	return !now.Before(l.LimitResetAt)
}

func (l *ChatLimit) Unlimited() bool {
	return l.PlanType != PlanFree
}

// Remaining is either a count or the unlimited marker.
type Remaining struct {
	Count     int
	Unlimited bool
}

func Limited(n int) Remaining {
	if n < 0 {
		n = 0
	}
	return Remaining{Count: n}
}

func UnlimitedRemaining() Remaining {
	return Remaining{Unlimited: true}
}

// QuotaState is the answer to "may this user send right now".
type QuotaState struct {
	Limit        int
	Remaining    Remaining
	CanSend      bool
	PlanType     string
	MessagesSent int
	ResetAt      *time.Time
}

// EvaluateQuota derives the quota state for a user from its record (nil when
// the user never sent anything). It never mutates the record: an expired
// window reads as fresh but is only rewritten by the next increment.
func EvaluateQuota(record *ChatLimit, now time.Time, freeLimit int) QuotaState {
	if record == nil {
		return QuotaState{
			Limit:     freeLimit,
			Remaining: Limited(freeLimit),
			CanSend:   true,
			PlanType:  PlanFree,
		}
	}

	resetAt := record.LimitResetAt
	state := QuotaState{
		Limit:        freeLimit,
		PlanType:     record.PlanType,
		MessagesSent: record.MessagesSent,
		ResetAt:      &resetAt,
	}

	switch {
	case record.Unlimited():
		state.Remaining = UnlimitedRemaining()
		state.CanSend = true
	case record.Expired(now):
		state.MessagesSent = 0
		state.ResetAt = nil
		state.Remaining = Limited(freeLimit)
		state.CanSend = true
	default:
		state.Remaining = Limited(freeLimit - record.MessagesSent)
		state.CanSend = record.MessagesSent < freeLimit
	}

	return state
}
