package service

import (
	"context"
	"errors"
	"time"

	"haley-companion-be/internal/dto"
	"haley-companion-be/internal/entity"
	"haley-companion-be/internal/pkg/apperror"
	"haley-companion-be/internal/pkg/clock"
	"haley-companion-be/internal/pkg/metrics"
	"haley-companion-be/internal/repository/contract"
	"haley-companion-be/internal/repository/unitofwork"
	"haley-companion-be/pkg/events"

	"github.com/google/uuid"
)

type IQuotaService interface {
	GetQuotaState(ctx context.Context, userId uuid.UUID) (*dto.QuotaStateResponse, error)
	// TryIncrement counts one message without checking the cap.
	TryIncrement(ctx context.Context, userId uuid.UUID) (*dto.QuotaStateResponse, error)
	// Consume counts one message only if the user may still send; otherwise
	// it returns *dto.LimitExceededError and changes nothing.
	Consume(ctx context.Context, userId uuid.UUID) (*dto.QuotaStateResponse, error)
	SetPlan(ctx context.Context, userId uuid.UUID, req *dto.UpdatePlanRequest) (*dto.QuotaStateResponse, error)
}

// QuotaLedger holds the quota rules. It works on whatever repository it is
// handed so callers can run it inside their own transaction.
type QuotaLedger struct {
	clock     clock.Clock
	freeLimit int
	window    time.Duration
}

func NewQuotaLedger(clk clock.Clock, freeLimit int, window time.Duration) *QuotaLedger {
	return &QuotaLedger{clock: clk, freeLimit: freeLimit, window: window}
}

func (l *QuotaLedger) State(ctx context.Context, repo contract.ChatLimitRepository, userId uuid.UUID) (entity.QuotaState, error) {
	record, err := repo.FindByUserId(ctx, userId)
	if err != nil {
		return entity.QuotaState{}, apperror.Storage("load quota", err)
	}
	return entity.EvaluateQuota(record, l.clock.Now(), l.freeLimit), nil
}

// Increment runs the single conditional increment. capped selects between
// the guarded send path and the unconditional tryIncrement semantics.
func (l *QuotaLedger) Increment(ctx context.Context, repo contract.ChatLimitRepository, userId uuid.UUID, capped bool) (entity.QuotaState, error) {
	now := l.clock.Now()
	limit := contract.NoCap
	if capped {
		limit = l.freeLimit
	}

	record, admitted, err := repo.Increment(ctx, userId, now, l.window, limit)
	if err != nil {
		return entity.QuotaState{}, ownerError("increment quota", err)
	}
	if record == nil {
		return entity.QuotaState{}, apperror.Storage("increment quota", errors.New("quota record missing after increment"))
	}
	if !admitted {
		return entity.EvaluateQuota(record, now, l.freeLimit), &dto.LimitExceededError{
			Limit:      l.freeLimit,
			Used:       record.MessagesSent,
			ResetAfter: record.LimitResetAt,
		}
	}
	return entity.EvaluateQuota(record, now, l.freeLimit), nil
}

type quotaService struct {
	uowFactory unitofwork.RepositoryFactory
	ledger     *QuotaLedger
	publisher  IPublisherService
	metrics    *metrics.Metrics
}

func NewQuotaService(uowFactory unitofwork.RepositoryFactory, ledger *QuotaLedger, publisher IPublisherService, m *metrics.Metrics) IQuotaService {
	return &quotaService{
		uowFactory: uowFactory,
		ledger:     ledger,
		publisher:  publisher,
		metrics:    m,
	}
}

func (s *quotaService) GetQuotaState(ctx context.Context, userId uuid.UUID) (*dto.QuotaStateResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	state, err := s.ledger.State(ctx, uow.ChatLimitRepository(), userId)
	if err != nil {
		return nil, err
	}

	outcome := "allowed"
	if !state.CanSend {
		outcome = "blocked"
	}
	s.metrics.RecordQuotaDecision("check", outcome)
	return dto.NewQuotaStateResponse(state), nil
}

func (s *quotaService) TryIncrement(ctx context.Context, userId uuid.UUID) (*dto.QuotaStateResponse, error) {
	return s.increment(ctx, userId, false, "increment")
}

func (s *quotaService) Consume(ctx context.Context, userId uuid.UUID) (*dto.QuotaStateResponse, error) {
	return s.increment(ctx, userId, true, "consume")
}

func (s *quotaService) increment(ctx context.Context, userId uuid.UUID, capped bool, operation string) (*dto.QuotaStateResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	state, err := s.ledger.Increment(ctx, uow.ChatLimitRepository(), userId, capped)
	if err != nil {
		var limitErr *dto.LimitExceededError
		if errors.As(err, &limitErr) {
			s.metrics.RecordQuotaDecision(operation, "rejected")
		} else {
			s.metrics.RecordQuotaDecision(operation, "error")
		}
		return nil, err
	}

	s.metrics.RecordQuotaDecision(operation, "admitted")
	res := dto.NewQuotaStateResponse(state)
	s.publisher.Publish(ctx, events.QuotaUpdated, userId, QuotaEventData(res))
	return res, nil
}

func (s *quotaService) SetPlan(ctx context.Context, userId uuid.UUID, req *dto.UpdatePlanRequest) (*dto.QuotaStateResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ChatLimitRepository()

	now := s.ledger.clock.Now()
	record, err := repo.SetPlan(ctx, userId, req.PlanType, now)
	if err != nil {
		return nil, ownerError("update plan", err)
	}

	res := dto.NewQuotaStateResponse(entity.EvaluateQuota(record, now, s.ledger.freeLimit))
	s.publisher.Publish(ctx, events.QuotaUpdated, userId, QuotaEventData(res))
	return res, nil
}

// QuotaEventData is the QUOTA_UPDATED payload; it mirrors the JSON of
// QuotaStateResponse.
func QuotaEventData(res *dto.QuotaStateResponse) map[string]interface{} {
	data := map[string]interface{}{
		"limit":         res.Limit,
		"remaining":     nil,
		"unlimited":     res.Unlimited,
		"can_send":      res.CanSend,
		"plan_type":     res.PlanType,
		"messages_sent": res.MessagesSent,
		"reset_at":      nil,
	}
	if res.Remaining != nil {
		data["remaining"] = *res.Remaining
	}
	if res.ResetAt != nil {
		data["reset_at"] = *res.ResetAt
	}
	return data
}
