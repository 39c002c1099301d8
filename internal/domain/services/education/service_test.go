package education

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	apperrors "github.com/tradesim-service/tradesim_service/pkg/errors"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
)

type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) ListQuestions(ctx context.Context) ([]entities.QuizQuestion, error) {
	args := m.Called(ctx)
	return args.Get(0).([]entities.QuizQuestion), args.Error(1)
}

func (m *MockQuizRepository) InsertSubmission(ctx context.Context, sub *entities.QuizSubmission) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

type MockAchievements struct {
	mock.Mock
}

func (m *MockAchievements) EvaluateQuiz(ctx context.Context, userID uuid.UUID, score, total int) {
	m.Called(ctx, userID, score, total)
}

func questions() []entities.QuizQuestion {
	return []entities.QuizQuestion{
		{ID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), Prompt: "What is a limit order?", CorrectIndex: 1, Explanation: "Executes at a set price or better."},
		{ID: uuid.MustParse("22222222-2222-2222-2222-222222222222"), Prompt: "What does P/L mean?", CorrectIndex: 0, Explanation: "Profit or loss."},
	}
}

func TestQuestions_StripsAnswers(t *testing.T) {
	repo := new(MockQuizRepository)
	svc := NewService(repo, new(MockAchievements), logger.NewNop())

	repo.On("ListQuestions", mock.Anything).Return(questions(), nil)

	out, err := svc.Questions(context.Background())
	require.NoError(t, err)

	require.Len(t, out, 2)
	for _, q := range out {
		assert.Equal(t, -1, q.CorrectIndex)
		assert.Empty(t, q.Explanation)
	}
}

func TestSubmit_ScoresAndRecords(t *testing.T) {
	repo := new(MockQuizRepository)
	ach := new(MockAchievements)
	svc := NewService(repo, ach, logger.NewNop())

	ctx := context.Background()
	userID := uuid.New()

	repo.On("ListQuestions", ctx).Return(questions(), nil)
	repo.On("InsertSubmission", ctx, mock.AnythingOfType("*entities.QuizSubmission")).Return(nil)
	ach.On("EvaluateQuiz", ctx, userID, 1, 2).Return()

	resp, err := svc.Submit(ctx, userID, &entities.QuizSubmitRequest{
		Answers: map[string]int{
			"11111111-1111-1111-1111-111111111111": 1, // correct
			"22222222-2222-2222-2222-222222222222": 2, // wrong
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Score)
	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Results, 2)
	assert.True(t, resp.Results[0].Correct)
	assert.False(t, resp.Results[1].Correct)
	assert.NotEmpty(t, resp.Results[0].Explanation, "explanations are revealed after submission")

	repo.AssertExpectations(t)
	ach.AssertExpectations(t)
}

func TestSubmit_UnansweredCountsWrong(t *testing.T) {
	repo := new(MockQuizRepository)
	ach := new(MockAchievements)
	svc := NewService(repo, ach, logger.NewNop())

	ctx := context.Background()
	userID := uuid.New()

	repo.On("ListQuestions", ctx).Return(questions(), nil)
	repo.On("InsertSubmission", ctx, mock.Anything).Return(nil)
	ach.On("EvaluateQuiz", ctx, userID, 0, 2).Return()

	resp, err := svc.Submit(ctx, userID, &entities.QuizSubmitRequest{
		Answers: map[string]int{"11111111-1111-1111-1111-111111111111": 0},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Score)
}

func TestSubmit_EmptyAnswers(t *testing.T) {
	svc := NewService(new(MockQuizRepository), new(MockAchievements), logger.NewNop())

	_, err := svc.Submit(context.Background(), uuid.New(), &entities.QuizSubmitRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
}
