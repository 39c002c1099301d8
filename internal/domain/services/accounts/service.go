// Package accounts handles signup, login and token issuance.
package accounts

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	ledgersvc "github.com/tradesim-service/tradesim_service/internal/domain/services/ledger"
	apperrors "github.com/tradesim-service/tradesim_service/pkg/errors"
	"github.com/tradesim-service/tradesim_service/pkg/logger"
)

// UserRepository is the read surface the account service needs
type UserRepository interface {
	Resolve(ctx context.Context, ref entities.UserRef) (*entities.User, error)
}

// Tx is the write set of one signup transaction
type Tx interface {
	CreateUser(ctx context.Context, user *entities.User) error
	AppendBalanceEntry(ctx context.Context, entry *entities.BalanceEntry) error
}

// Store opens atomic account transactions
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Config carries the account service settings
type Config struct {
	StartingBalance decimal.Decimal
	JWTSecret       string
	JWTIssuer       string
	JWTAccessTTL    time.Duration
}

// Service creates accounts and issues access tokens
type Service struct {
	users  UserRepository
	store  Store
	cfg    Config
	logger *logger.Logger
	now    func() time.Time
}

// NewService creates a new account service
func NewService(users UserRepository, store Store, cfg Config, log *logger.Logger) *Service {
	return &Service{
		users:  users,
		store:  store,
		cfg:    cfg,
		logger: log,
		now:    time.Now,
	}
}

// Signup creates a user with the configured starting balance and writes
// the matching `initial` ledger entry.
func (s *Service) Signup(ctx context.Context, req *entities.SignupRequest) (*entities.AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("could not hash password")
	}

	now := s.now()
	user := &entities.User{
		ID:                 uuid.New(),
		Email:              req.Email,
		DisplayName:        req.DisplayName,
		PasswordHash:       string(hash),
		CashBalance:        s.cfg.StartingBalance,
		InitialBalance:     s.cfg.StartingBalance,
		PortfolioValue:     s.cfg.StartingBalance,
		TotalReturn:        decimal.Zero,
		TotalReturnPercent: decimal.Zero,
		MaxPortfolioValue:  s.cfg.StartingBalance,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	// The initial grant is itself a ledger entry, so the full history
	// always sums to the current cash balance. User row and entry commit
	// together: a half-created account would break that sum for good.
	err = s.store.InTx(ctx, func(tx Tx) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		posting := ledgersvc.Post(user.ID, decimal.Zero, s.cfg.StartingBalance,
			entities.EntryInitial, "Account opened with starting balance", nil, now)
		return tx.AppendBalanceEntry(ctx, &posting.Entry)
	})
	if err != nil {
		s.logger.CtxError(ctx, "signup failed", "error", err, "email", req.Email)
		return nil, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	s.logger.CtxInfo(ctx, "user signed up", "user_id", user.ID, "email", user.Email)
	return &entities.AuthResponse{Token: token, User: user}, nil
}

// Login verifies credentials and issues an access token
func (s *Service) Login(ctx context.Context, req *entities.LoginRequest) (*entities.AuthResponse, error) {
	user, err := s.users.Resolve(ctx, entities.ParseUserRef(req.Email))
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeUserNotFound) {
			return nil, apperrors.Unauthorized("invalid email or password")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.Unauthorized("invalid email or password")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &entities.AuthResponse{Token: token, User: user}, nil
}

func (s *Service) issueToken(user *entities.User) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		Issuer:    s.cfg.JWTIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTAccessTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", apperrors.Internal("could not sign token")
	}
	return signed, nil
}

// ParseToken validates a bearer token and returns the user ID it carries
func (s *Service) ParseToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.New(apperrors.ErrCodeInvalidToken, "unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, apperrors.New(apperrors.ErrCodeInvalidToken, "invalid or expired token")
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return uuid.Nil, apperrors.New(apperrors.ErrCodeInvalidToken, "malformed claims")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, apperrors.New(apperrors.ErrCodeInvalidToken, "malformed subject")
	}
	return id, nil
}
