package achievements

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
)

type MockBadgeRepository struct {
	mock.Mock
}

func (m *MockBadgeRepository) ListCatalog(ctx context.Context) ([]entities.Badge, error) {
	args := m.Called(ctx)
	return args.Get(0).([]entities.Badge), args.Error(1)
}

func (m *MockBadgeRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]entities.UserBadge, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]entities.UserBadge), args.Error(1)
}

func (m *MockBadgeRepository) Award(ctx context.Context, userID uuid.UUID, badgeID string, earnedAt time.Time) (bool, error) {
	args := m.Called(ctx, userID, badgeID, earnedAt)
	return args.Bool(0), args.Error(1)
}

type MockTradeStats struct {
	mock.Mock
}

func (m *MockTradeStats) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockTradeStats) CountDistinctSymbols(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type MockRewarder struct {
	mock.Mock
}

func (m *MockRewarder) PostReward(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, badgeName string) error {
	args := m.Called(ctx, userID, amount, badgeName)
	return args.Error(0)
}

func catalog() []entities.Badge {
	return []entities.Badge{
		{ID: BadgeFirstTrade, Name: "First Trade", Reward: decimal.NewFromInt(50)},
		{ID: BadgeTenTrades, Name: "Active Trader", Reward: decimal.NewFromInt(200)},
		{ID: BadgeDiversified, Name: "Diversified", Reward: decimal.NewFromInt(100)},
		{ID: BadgeQuizWhiz, Name: "Quiz Whiz", Reward: decimal.Zero},
	}
}

func TestEvaluateTrade_FirstTradeAwardsAndRewards(t *testing.T) {
	badges := new(MockBadgeRepository)
	stats := new(MockTradeStats)
	rewarder := new(MockRewarder)
	svc := NewService(badges, stats, rewarder, logger.NewNop())

	ctx := context.Background()
	userID := uuid.New()

	stats.On("CountByUser", ctx, userID).Return(1, nil)
	stats.On("CountDistinctSymbols", ctx, userID).Return(1, nil)
	badges.On("Award", ctx, userID, BadgeFirstTrade, mock.AnythingOfType("time.Time")).Return(true, nil)
	badges.On("ListCatalog", ctx).Return(catalog(), nil)
	rewarder.On("PostReward", ctx, userID, decimal.NewFromInt(50), "First Trade").Return(nil)

	svc.EvaluateTrade(ctx, userID)

	badges.AssertExpectations(t)
	rewarder.AssertExpectations(t)
}

func TestEvaluateTrade_AlreadyEarnedPostsNoReward(t *testing.T) {
	badges := new(MockBadgeRepository)
	stats := new(MockTradeStats)
	rewarder := new(MockRewarder)
	svc := NewService(badges, stats, rewarder, logger.NewNop())

	ctx := context.Background()
	userID := uuid.New()

	stats.On("CountByUser", ctx, userID).Return(3, nil)
	stats.On("CountDistinctSymbols", ctx, userID).Return(2, nil)
	badges.On("Award", ctx, userID, BadgeFirstTrade, mock.AnythingOfType("time.Time")).Return(false, nil)

	svc.EvaluateTrade(ctx, userID)

	rewarder.AssertNotCalled(t, "PostReward", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEvaluateTrade_TenAndDiversified(t *testing.T) {
	badges := new(MockBadgeRepository)
	stats := new(MockTradeStats)
	rewarder := new(MockRewarder)
	svc := NewService(badges, stats, rewarder, logger.NewNop())

	ctx := context.Background()
	userID := uuid.New()

	stats.On("CountByUser", ctx, userID).Return(12, nil)
	stats.On("CountDistinctSymbols", ctx, userID).Return(6, nil)
	badges.On("Award", ctx, userID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(false, nil)

	svc.EvaluateTrade(ctx, userID)

	badges.AssertCalled(t, "Award", ctx, userID, BadgeFirstTrade, mock.AnythingOfType("time.Time"))
	badges.AssertCalled(t, "Award", ctx, userID, BadgeTenTrades, mock.AnythingOfType("time.Time"))
	badges.AssertCalled(t, "Award", ctx, userID, BadgeDiversified, mock.AnythingOfType("time.Time"))
}

func TestEvaluateQuiz(t *testing.T) {
	badges := new(MockBadgeRepository)
	stats := new(MockTradeStats)
	rewarder := new(MockRewarder)
	svc := NewService(badges, stats, rewarder, logger.NewNop())

	ctx := context.Background()
	userID := uuid.New()

	// imperfect score earns nothing
	svc.EvaluateQuiz(ctx, userID, 3, 5)
	badges.AssertNotCalled(t, "Award", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	// perfect score earns the badge; zero reward posts nothing
	badges.On("Award", ctx, userID, BadgeQuizWhiz, mock.AnythingOfType("time.Time")).Return(true, nil)
	badges.On("ListCatalog", ctx).Return(catalog(), nil)
	svc.EvaluateQuiz(ctx, userID, 5, 5)

	badges.AssertExpectations(t)
	rewarder.AssertNotCalled(t, "PostReward", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListForUser(t *testing.T) {
	badges := new(MockBadgeRepository)
	svc := NewService(badges, new(MockTradeStats), new(MockRewarder), logger.NewNop())

	ctx := context.Background()
	userID := uuid.New()

	badges.On("ListForUser", ctx, userID).Return([]entities.UserBadge{
		{UserID: userID, BadgeID: BadgeFirstTrade},
		{UserID: userID, BadgeID: "retired-badge"},
	}, nil)
	badges.On("ListCatalog", ctx).Return(catalog(), nil)

	out, err := svc.ListForUser(ctx, userID)
	require.NoError(t, err)

	require.Len(t, out, 1, "badges missing from the catalog are dropped")
	assert.Equal(t, "First Trade", out[0].Name)
}
