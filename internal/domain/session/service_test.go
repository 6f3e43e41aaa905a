package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/exp/slog"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, userID string, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockRepository) Validate(ctx context.Context, tokenHash string) (string, error) {
	args := m.Called(ctx, tokenHash)
	return args.String(0), args.Error(1)
}

func TestService_Create(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	userID := "u1"

	mockRepo.On("Create", mock.Anything, userID, mock.MatchedBy(func(hash string) bool {
		return len(hash) == 64
	}), mock.MatchedBy(func(expiresAt time.Time) bool {
		return expiresAt.After(time.Now())
	})).Return(nil)

	token, err := service.Create(context.Background(), userID)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	// base64 of 32 random bytes
	assert.Len(t, token, 44)

	mockRepo.AssertExpectations(t)
}

func TestService_Create_RepositoryError(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	mockRepo.On("Create", mock.Anything, "u1", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(errors.New("database error"))

	_, err := service.Create(context.Background(), "u1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")

	mockRepo.AssertExpectations(t)
}

func TestService_Validate(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	mockRepo.On("Validate", mock.Anything, mock.MatchedBy(func(hash string) bool {
		return len(hash) == 64
	})).Return("u1", nil)

	userID, err := service.Validate(context.Background(), "some-token")
	assert.NoError(t, err)
	assert.Equal(t, "u1", userID)

	mockRepo.AssertExpectations(t)
}

func TestService_Validate_InvalidToken(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	mockRepo.On("Validate", mock.Anything, mock.AnythingOfType("string")).Return("", errors.New("no rows"))

	_, err := service.Validate(context.Background(), "bad-token")
	assert.ErrorIs(t, err, ErrInvalid)

	mockRepo.AssertExpectations(t)
}

func TestService_CreateAndValidate(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	var storedHash string
	mockRepo.On("Create", mock.Anything, "u1", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			storedHash = args.String(2)
		}).Return(nil)

	token, err := service.Create(context.Background(), "u1")
	assert.NoError(t, err)

	// The hash sent to Validate must match the one stored at Create.
	mockRepo.On("Validate", mock.Anything, mock.MatchedBy(func(hash string) bool {
		return hash == storedHash
	})).Return("u1", nil)

	userID, err := service.Validate(context.Background(), token)
	assert.NoError(t, err)
	assert.Equal(t, "u1", userID)

	mockRepo.AssertExpectations(t)
}
