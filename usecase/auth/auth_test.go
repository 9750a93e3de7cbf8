package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/focushub/backend/domain"
)

type fakeUserRepo struct {
	users map[string]*domain.User
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if u, ok := f.users[username]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if f.users == nil {
		f.users = map[string]*domain.User{}
	}
	if _, taken := f.users[user.Username]; taken {
		return domain.ErrUsernameTaken
	}
	f.users[user.Username] = user
	return nil
}

type fakeSessionRepo struct {
	sessions map[string]*domain.Session
}

func (f *fakeSessionRepo) Get(_ context.Context, id string) (*domain.Session, error) {
	if s, ok := f.sessions[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, domain.ErrSessionNotFound
}

func (f *fakeSessionRepo) Save(_ context.Context, session *domain.Session) error {
	if f.sessions == nil {
		f.sessions = map[string]*domain.Session{}
	}
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeSessionRepo) Delete(_ context.Context, id string) error {
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionRepo) Extend(_ context.Context, id string, ttlSeconds int) error {
	s, ok := f.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.ExpiresAt = time.Now().Add(time.Duration(ttlSeconds) * time.Second)
	return nil
}

type fakeStatsRepo struct {
	stats map[string]*domain.Stats
}

func (f *fakeStatsRepo) Get(_ context.Context, userID string) (*domain.Stats, error) {
	if s, ok := f.stats[userID]; ok {
		return s, nil
	}
	return nil, domain.ErrStatsNotFound
}

func (f *fakeStatsRepo) Save(_ context.Context, userID string, stats *domain.Stats) error {
	if f.stats == nil {
		f.stats = map[string]*domain.Stats{}
	}
	f.stats[userID] = stats
	return nil
}

type fakeCommitmentRepo struct {
	commitments map[string]*domain.Commitment
}

func (f *fakeCommitmentRepo) Get(_ context.Context, userID string) (*domain.Commitment, error) {
	if c, ok := f.commitments[userID]; ok {
		return c, nil
	}
	return nil, domain.ErrCommitmentNotFound
}

func (f *fakeCommitmentRepo) Save(_ context.Context, userID string, commitment *domain.Commitment) error {
	if f.commitments == nil {
		f.commitments = map[string]*domain.Commitment{}
	}
	f.commitments[userID] = commitment
	return nil
}

const testSecret = "test-secret"

func newTestUseCase() (*UseCase, *fakeUserRepo, *fakeSessionRepo, *fakeStatsRepo, *fakeCommitmentRepo) {
	users := &fakeUserRepo{}
	sessions := &fakeSessionRepo{}
	stats := &fakeStatsRepo{}
	commitments := &fakeCommitmentRepo{}
	uc := New(users, sessions, stats, commitments, testSecret, "focushub", nil)
	return uc, users, sessions, stats, commitments
}

func TestSignupSeedsDefaults(t *testing.T) {
	uc, _, sessions, stats, commitments := newTestUseCase()

	result, err := uc.Signup(context.Background(), "alice", time.Hour)
	require.NoError(t, err)
	require.NotNil(t, result.User)
	require.NotNil(t, result.Session)
	assert.NotEmpty(t, result.Token)

	seeded := stats.stats[result.User.ID]
	require.NotNil(t, seeded)
	assert.Equal(t, domain.InitialPoints, seeded.Points)
	assert.Equal(t, 0, seeded.Streak)
	assert.Nil(t, seeded.LastLogin)

	commitment := commitments.commitments[result.User.ID]
	require.NotNil(t, commitment)
	assert.False(t, commitment.IsActive())

	assert.Contains(t, sessions.sessions, result.Session.ID)
}

func TestSignupRejectsDuplicateUsername(t *testing.T) {
	uc, _, _, _, _ := newTestUseCase()

	_, err := uc.Signup(context.Background(), "alice", time.Hour)
	require.NoError(t, err)

	_, err = uc.Signup(context.Background(), "alice", time.Hour)
	require.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestSignupRejectsBlankUsername(t *testing.T) {
	uc, _, _, _, _ := newTestUseCase()

	_, err := uc.Signup(context.Background(), "   ", time.Hour)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	uc, _, _, _, _ := newTestUseCase()

	signup, err := uc.Signup(context.Background(), "alice", time.Hour)
	require.NoError(t, err)

	result, err := uc.Login(context.Background(), "alice", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, signup.User.ID, result.User.ID)

	token, err := jwt.Parse(result.Token, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, result.User.ID, claims["user_id"])
	assert.Equal(t, result.Session.ID, claims["session_id"])
	assert.Equal(t, "focushub", claims["iss"])
}

func TestLoginUnknownUser(t *testing.T) {
	uc, _, _, _, _ := newTestUseCase()

	_, err := uc.Login(context.Background(), "nobody", time.Hour)
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestRefreshExpiredSession(t *testing.T) {
	uc, _, sessions, _, _ := newTestUseCase()
	sessions.sessions = map[string]*domain.Session{
		"old": {ID: "old", UserID: "u", ExpiresAt: time.Now().Add(-time.Minute)},
	}

	_, err := uc.RefreshSession(context.Background(), "old", time.Hour)
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.NotContains(t, sessions.sessions, "old")
}

func TestRefreshExtendsSession(t *testing.T) {
	uc, _, sessions, _, _ := newTestUseCase()
	sessions.sessions = map[string]*domain.Session{
		"live": {ID: "live", UserID: "u", ExpiresAt: time.Now().Add(time.Minute)},
	}

	session, err := uc.RefreshSession(context.Background(), "live", time.Hour)
	require.NoError(t, err)
	assert.True(t, session.ExpiresAt.After(time.Now().Add(30*time.Minute)))
}

func TestRevokeSession(t *testing.T) {
	uc, _, sessions, _, _ := newTestUseCase()
	sessions.sessions = map[string]*domain.Session{
		"live": {ID: "live", UserID: "u", ExpiresAt: time.Now().Add(time.Minute)},
	}

	require.NoError(t, uc.RevokeSession(context.Background(), "live"))
	assert.NotContains(t, sessions.sessions, "live")
}
