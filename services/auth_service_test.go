package services

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/NicoBaldowine/pickleplay/apperr"
	"github.com/NicoBaldowine/pickleplay/models"
	"github.com/NicoBaldowine/pickleplay/repositories"
	"github.com/NicoBaldowine/pickleplay/repositories/mockrepo"
)

func newAuth(t *testing.T, now time.Time) (*authService, *mockrepo.Users) {
	t.Helper()
	clk := clock.NewMock()
	clk.Set(now)
	users := &mockrepo.Users{}
	svc := NewAuthService(users, "test-secret", time.Hour, clk).(*authService)
	svc.bcryptCost = bcrypt.MinCost
	return svc, users
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestRegisterIssuesToken(t *testing.T) {
	svc, users := newAuth(t, time.Now())
	users.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) { args.Get(1).(*models.User).ID = 5 }).
		Return(nil)

	user, token, err := svc.Register(context.Background(), RegisterInput{
		FirstName: " Ana ", LastName: "Ruiz", Email: "ana@example.com", Password: "longenough",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, user.ID)
	assert.Equal(t, "Ana", user.FirstName)
	assert.Empty(t, user.PasswordHash)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	id, err := UserIDFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, 5, id)
}

func TestRegisterValidation(t *testing.T) {
	svc, users := newAuth(t, time.Now())

	_, _, err := svc.Register(context.Background(), RegisterInput{FirstName: "Ana", Email: "ana@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, _, err = svc.Register(context.Background(), RegisterInput{FirstName: "Ana", Email: "nope", Password: "longenough"})
	assert.ErrorIs(t, err, ErrEmailRequired)

	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterEmailConflict(t *testing.T) {
	svc, users := newAuth(t, time.Now())
	users.On("Create", mock.Anything, mock.Anything).Return(repositories.ErrUserEmailConflict)

	_, _, err := svc.Register(context.Background(), RegisterInput{FirstName: "Ana", Email: "ana@example.com", Password: "longenough"})
	assert.ErrorIs(t, err, ErrUserEmailConflict)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestLogin(t *testing.T) {
	svc, users := newAuth(t, time.Now())
	users.On("GetByEmail", mock.Anything, "ana@example.com").
		Return(&models.User{ID: 3, Email: "ana@example.com", PasswordHash: hashed(t, "correct-horse")}, nil)
	users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, repositories.ErrUserNotFound)

	user, token, err := svc.Login(context.Background(), LoginInput{Email: "ana@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, 3, user.ID)
	assert.NotEmpty(t, token)

	_, _, err = svc.Login(context.Background(), LoginInput{Email: "ana@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestExpiredTokenIsSessionExpired(t *testing.T) {
	// Issued two hours ago with a one hour lifetime.
	svc, _ := newAuth(t, time.Now().Add(-2*time.Hour))
	token, err := svc.issueToken(9)
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, apperr.KindSessionExpired, apperr.KindOf(err))

	_, err = svc.CurrentUser(context.Background(), token)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestParseTokenRejectsForeignSignature(t *testing.T) {
	svc, _ := newAuth(t, time.Now())
	other := NewAuthService(&mockrepo.Users{}, "another-secret", time.Hour, clock.New()).(*authService)
	token, err := other.issueToken(9)
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCurrentUserDeletedAccount(t *testing.T) {
	svc, users := newAuth(t, time.Now())
	users.On("GetByID", mock.Anything, 9).Return(nil, repositories.ErrUserNotFound)
	token, err := svc.issueToken(9)
	require.NoError(t, err)

	_, err = svc.CurrentUser(context.Background(), token)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestUpdatePassword(t *testing.T) {
	svc, users := newAuth(t, time.Now())
	users.On("GetByID", mock.Anything, 3).Return(&models.User{ID: 3, PasswordHash: hashed(t, "old-password")}, nil)
	users.On("UpdatePassword", mock.Anything, 3, mock.AnythingOfType("string")).Return(nil)

	err := svc.UpdatePassword(context.Background(), 3, UpdatePasswordInput{CurrentPassword: "bad", NewPassword: "new-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.UpdatePassword(context.Background(), 3, UpdatePasswordInput{CurrentPassword: "old-password", NewPassword: "new-password"})
	require.NoError(t, err)
	users.AssertNumberOfCalls(t, "UpdatePassword", 1)
}

func TestUserIDFromClaims(t *testing.T) {
	tests := []struct {
		name    string
		claims  map[string]any
		want    int
		wantErr bool
	}{
		{"float", map[string]any{"user_id": float64(12)}, 12, false},
		{"string", map[string]any{"user_id": "12"}, 12, false},
		{"fraction", map[string]any{"user_id": 1.5}, 0, true},
		{"zero", map[string]any{"user_id": float64(0)}, 0, true},
		{"missing", map[string]any{}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UserIDFromClaims(tt.claims)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
