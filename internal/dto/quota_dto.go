package dto

import (
	"time"

	"haley-companion-be/internal/entity"
)

// QuotaStateResponse answers GET /chat-limits/:userId. Remaining is null when
// the plan is unlimited.
type QuotaStateResponse struct {
	Limit        int        `json:"limit"`
	Remaining    *int       `json:"remaining"`
	Unlimited    bool       `json:"unlimited"`
	CanSend      bool       `json:"can_send"`
	PlanType     string     `json:"plan_type"`
	MessagesSent int        `json:"messages_sent"`
	ResetAt      *time.Time `json:"reset_at"`
}

func NewQuotaStateResponse(s entity.QuotaState) *QuotaStateResponse {
	res := &QuotaStateResponse{
		Limit:        s.Limit,
		Unlimited:    s.Remaining.Unlimited,
		CanSend:      s.CanSend,
		PlanType:     s.PlanType,
		MessagesSent: s.MessagesSent,
		ResetAt:      s.ResetAt,
	}
	if !s.Remaining.Unlimited {
		n := s.Remaining.Count
		res.Remaining = &n
	}
	return res
}

type IncrementResponse struct {
	Success bool                `json:"success"`
	Quota   *QuotaStateResponse `json:"quota"`
}

type UpdatePlanRequest struct {
	PlanType string `json:"plan_type" validate:"required,oneof=free pro"`
}

// LimitExceededError is returned when a free-tier user has used up the window.
type LimitExceededError struct {
	Limit      int       `json:"limit"`
	Used       int       `json:"used"`
	ResetAfter time.Time `json:"reset_after"`
}

func (e *LimitExceededError) Error() string {
	return "daily message limit reached"
}

// LimitExceededData is the data payload for 429 responses
type LimitExceededData struct {
	Limit      int       `json:"limit"`
	Used       int       `json:"used"`
	Remaining  int       `json:"remaining"`
	ResetAfter time.Time `json:"reset_after"`
}

func NewLimitExceededData(e *LimitExceededError) LimitExceededData {
	remaining := e.Limit - e.Used
	if remaining < 0 {
		remaining = 0
	}
	return LimitExceededData{
		Limit:      e.Limit,
		Used:       e.Used,
		Remaining:  remaining,
		ResetAfter: e.ResetAfter,
	}
}
