package repositories

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	apperrors "github.com/tradesim-service/tradesim_service/pkg/errors"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
)

// QuizRepository persists quiz questions and scored submissions.
// Choices are stored as a JSON array in a text column.
type QuizRepository struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// NewQuizRepository creates a new quiz repository
func NewQuizRepository(db *sqlx.DB, log *logger.Logger) *QuizRepository {
	return &QuizRepository{db: db, logger: log}
}

// ListQuestions returns the full question set
func (r *QuizRepository) ListQuestions(ctx context.Context) ([]entities.QuizQuestion, error) {
	var questions []entities.QuizQuestion
	query := `SELECT id, prompt, choices, correct_index, explanation FROM quiz_questions ORDER BY id`
	if err := r.db.SelectContext(ctx, &questions, query); err != nil {
		return nil, apperrors.Persistence(err)
	}

	for i := range questions {
		if err := json.Unmarshal([]byte(questions[i].ChoicesRaw), &questions[i].Choices); err != nil {
			r.logger.Warnw("Malformed quiz choices", "question_id", questions[i].ID, "error", err)
			questions[i].Choices = nil
		}
	}
	return questions, nil
}

// InsertSubmission records one scored attempt
func (r *QuizRepository) InsertSubmission(ctx context.Context, sub *entities.QuizSubmission) error {
	query := `
		INSERT INTO quiz_submissions (id, user_id, score, total, submitted_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, sub.ID, sub.UserID, sub.Score, sub.Total, sub.SubmittedAt)
	if err != nil {
		return apperrors.Persistence(err)
	}
	return nil
}
