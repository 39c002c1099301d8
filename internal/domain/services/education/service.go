// Package education serves the quiz module and scores submissions.
package education

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	apperrors "github.com/tradesim-service/tradesim_service/pkg/errors"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
)

// QuizRepository persists questions and submissions
type QuizRepository interface {
	ListQuestions(ctx context.Context) ([]entities.QuizQuestion, error)
	InsertSubmission(ctx context.Context, sub *entities.QuizSubmission) error
}

// Achievements is the hook fired after a scored submission
type Achievements interface {
	EvaluateQuiz(ctx context.Context, userID uuid.UUID, score, total int)
}

// Service scores quiz submissions
type Service struct {
	quizzes      QuizRepository
	achievements Achievements
	logger       *logger.Logger
	now          func() time.Time
}

// NewService creates a new education service
func NewService(quizzes QuizRepository, achievements Achievements, log *logger.Logger) *Service {
	return &Service{
		quizzes:      quizzes,
		achievements: achievements,
		logger:       log,
		now:          time.Now,
	}
}

// Questions returns the question set with answers stripped
func (s *Service) Questions(ctx context.Context) ([]entities.QuizQuestion, error) {
	questions, err := s.quizzes.ListQuestions(ctx)
	if err != nil {
		return nil, err
	}
	// never leak the correct index or explanation before submission
	for i := range questions {
		questions[i].CorrectIndex = -1
		questions[i].Explanation = ""
	}
	return questions, nil
}

// Submit scores one attempt against the full question set and records it
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, req *entities.QuizSubmitRequest) (*entities.QuizSubmitResponse, error) {
	if len(req.Answers) == 0 {
		return nil, apperrors.ValidationError("answers are required")
	}

	questions, err := s.quizzes.ListQuestions(ctx)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, apperrors.Internal("no quiz questions configured")
	}

	resp := &entities.QuizSubmitResponse{Total: len(questions)}
	for _, q := range questions {
		chosen, answered := req.Answers[q.ID.String()]
		correct := answered && chosen == q.CorrectIndex
		if correct {
			resp.Score++
		}
		resp.Results = append(resp.Results, entities.QuizResultItem{
			QuestionID:  q.ID.String(),
			Correct:     correct,
			Explanation: q.Explanation,
		})
	}

	sub := &entities.QuizSubmission{
		ID:          uuid.New(),
		UserID:      userID,
		Score:       resp.Score,
		Total:       resp.Total,
		SubmittedAt: s.now(),
	}
	if err := s.quizzes.InsertSubmission(ctx, sub); err != nil {
		return nil, err
	}

	s.achievements.EvaluateQuiz(ctx, userID, resp.Score, resp.Total)

	s.logger.CtxInfo(ctx, "quiz submitted", "user_id", userID, "score", resp.Score, "total", resp.Total)
	return resp, nil
}
