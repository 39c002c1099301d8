// Package achievements evaluates badge conditions and grants awards.
package achievements

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
)

// Badge identifiers. The catalog rows in the database carry the
// user-facing names and reward amounts for these IDs.
const (
	BadgeFirstTrade  = "first-trade"
	BadgeTenTrades   = "ten-trades"
	BadgeDiversified = "diversified"
	BadgeQuizWhiz    = "quiz-whiz"
)

const diversifiedSymbolCount = 5

// BadgeRepository persists the badge catalog and awards
type BadgeRepository interface {
	ListCatalog(ctx context.Context) ([]entities.Badge, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]entities.UserBadge, error)
	Award(ctx context.Context, userID uuid.UUID, badgeID string, earnedAt time.Time) (bool, error)
}

// TradeStats exposes the per-user counters badge conditions read
type TradeStats interface {
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	CountDistinctSymbols(ctx context.Context, userID uuid.UUID) (int, error)
}

// Rewarder posts achievement cash rewards through the ledger
type Rewarder interface {
	PostReward(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, badgeName string) error
}

// Service awards badges. Evaluation failures are logged, not surfaced:
// a missed badge must never fail the trade that triggered it.
type Service struct {
	badges   BadgeRepository
	trades   TradeStats
	rewarder Rewarder
	logger   *logger.Logger
	now      func() time.Time
}

// NewService creates a new achievement service
func NewService(badges BadgeRepository, trades TradeStats, rewarder Rewarder, log *logger.Logger) *Service {
	return &Service{
		badges:   badges,
		trades:   trades,
		rewarder: rewarder,
		logger:   log,
		now:      time.Now,
	}
}

// EvaluateTrade checks trade-count conditions after a committed trade
func (s *Service) EvaluateTrade(ctx context.Context, userID uuid.UUID) {
	count, err := s.trades.CountByUser(ctx, userID)
	if err != nil {
		s.logger.CtxWarn(ctx, "achievement evaluation skipped", "error", err, "user_id", userID)
		return
	}

	if count >= 1 {
		s.award(ctx, userID, BadgeFirstTrade)
	}
	if count >= 10 {
		s.award(ctx, userID, BadgeTenTrades)
	}

	distinct, err := s.trades.CountDistinctSymbols(ctx, userID)
	if err != nil {
		s.logger.CtxWarn(ctx, "diversification check skipped", "error", err, "user_id", userID)
		return
	}
	if distinct >= diversifiedSymbolCount {
		s.award(ctx, userID, BadgeDiversified)
	}
}

// EvaluateQuiz awards the quiz badge for a perfect score
func (s *Service) EvaluateQuiz(ctx context.Context, userID uuid.UUID, score, total int) {
	if total > 0 && score == total {
		s.award(ctx, userID, BadgeQuizWhiz)
	}
}

func (s *Service) award(ctx context.Context, userID uuid.UUID, badgeID string) {
	earned, err := s.badges.Award(ctx, userID, badgeID, s.now())
	if err != nil {
		s.logger.CtxError(ctx, "badge award failed", "error", err, "user_id", userID, "badge", badgeID)
		return
	}
	if !earned {
		return
	}

	s.logger.CtxInfo(ctx, "badge earned", "user_id", userID, "badge", badgeID)

	badge, ok := s.lookupBadge(ctx, badgeID)
	if !ok || !badge.Reward.IsPositive() {
		return
	}
	if err := s.rewarder.PostReward(ctx, userID, badge.Reward, badge.Name); err != nil {
		s.logger.CtxError(ctx, "badge reward posting failed", "error", err, "user_id", userID, "badge", badgeID)
	}
}

func (s *Service) lookupBadge(ctx context.Context, badgeID string) (entities.Badge, bool) {
	catalog, err := s.badges.ListCatalog(ctx)
	if err != nil {
		s.logger.CtxWarn(ctx, "badge catalog unavailable", "error", err)
		return entities.Badge{}, false
	}
	for _, b := range catalog {
		if b.ID == badgeID {
			return b, true
		}
	}
	return entities.Badge{}, false
}

// ListForUser returns the earned badges joined with their definitions
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]entities.Badge, error) {
	earned, err := s.badges.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.badges.ListCatalog(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]entities.Badge, len(catalog))
	for _, b := range catalog {
		byID[b.ID] = b
	}

	out := make([]entities.Badge, 0, len(earned))
	for _, e := range earned {
		if b, ok := byID[e.BadgeID]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}
