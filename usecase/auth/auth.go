package auth

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/focushub/backend/domain"
	"github.com/focushub/backend/repository"
)

// LoginResult bundles the issued token with the session and user records.
type LoginResult struct {
	Token   string          `json:"token"`
	User    *domain.User    `json:"user"`
	Session *domain.Session `json:"session"`
}

type UseCase struct {
	users       repository.UserRepository
	sessions    repository.SessionRepository
	stats       repository.StatsRepository
	commitments repository.CommitmentRepository
	jwtSecret   []byte
	jwtIssuer   string
	logger      *zap.Logger
}

func New(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	stats repository.StatsRepository,
	commitments repository.CommitmentRepository,
	jwtSecret, jwtIssuer string,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:       users,
		sessions:    sessions,
		stats:       stats,
		commitments: commitments,
		jwtSecret:   []byte(jwtSecret),
		jwtIssuer:   jwtIssuer,
		logger:      logger,
	}
}

// Signup creates the account and seeds its default stats and an inactive
// commitment, then logs the user in.
func (uc *UseCase) Signup(ctx context.Context, username string, ttl time.Duration) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "username is required")
	}

	user := &domain.User{ID: uuid.NewString(), Username: username}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := uc.stats.Save(ctx, user.ID, domain.DefaultStats()); err != nil {
		return nil, err
	}
	if err := uc.commitments.Save(ctx, user.ID, domain.EmptyCommitment()); err != nil {
		return nil, err
	}

	uc.logger.Info("user signed up", zap.String("user_id", user.ID), zap.String("username", username))
	return uc.login(ctx, user, ttl)
}

// Login issues a session and a signed token for an existing account.
func (uc *UseCase) Login(ctx context.Context, username string, ttl time.Duration) (*LoginResult, error) {
	user, err := uc.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	return uc.login(ctx, user, ttl)
}

func (uc *UseCase) login(ctx context.Context, user *domain.User, ttl time.Duration) (*LoginResult, error) {
	if ttl <= 0 {
		ttl = time.Hour
	}

	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	token, err := uc.signToken(user.ID, session.ID, session.ExpiresAt)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, User: user, Session: session}, nil
}

// RefreshSession extends an existing session's TTL.
func (uc *UseCase) RefreshSession(ctx context.Context, sessionID string, ttl time.Duration) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	if err := uc.sessions.Extend(ctx, sessionID, int(ttl.Seconds())); err != nil {
		return nil, err
	}
	session.ExpiresAt = time.Now().Add(ttl)
	return session, nil
}

// RevokeSession deletes the session.
func (uc *UseCase) RevokeSession(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}

func (uc *UseCase) signToken(userID, sessionID string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    userID,
		"session_id": sessionID,
		"iss":        uc.jwtIssuer,
		"exp":        expiresAt.Unix(),
		"iat":        time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(uc.jwtSecret)
}
