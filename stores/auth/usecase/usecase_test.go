package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/domain"
	"github.com/deserthomes/goapi/domain/user"
	mUser "github.com/deserthomes/goapi/domain/user/mocks"
	"github.com/deserthomes/goapi/stores/auth/usecase"
)

func TestSignAndParseToken(t *testing.T) {
	mockUserUC := &mUser.Usecase{}

	ctx := ctx.Background()
	u := usecase.New("jwt-secret", mockUserUC)
	tkn, err := u.SignToken(ctx, "user-1", "dana@example.com", "admin")
	assert.NoError(t, err)
	assert.NotEmpty(t, tkn)

	claims, err := u.ParseToken(ctx, tkn)
	assert.NoError(t, err)
	assert.Equal(t, domain.UserId("user-1"), claims.UserId)
	assert.Equal(t, domain.Email("dana@example.com"), claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestParseTokenWrongSecret(t *testing.T) {
	mockUserUC := &mUser.Usecase{}

	ctx := ctx.Background()
	tkn, err := usecase.New("secret-a", mockUserUC).SignToken(ctx, "user-1", "dana@example.com", "user")
	assert.NoError(t, err)

	_, err = usecase.New("secret-b", mockUserUC).ParseToken(ctx, tkn)
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	mockUserUC := &mUser.Usecase{}

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.MinCost)
	assert.NoError(t, err)

	mockUserUC.On("GetByEmail", mock.Anything, domain.Email("dana@example.com")).Return(&user.User{
		Id:           "user-1",
		Email:        "dana@example.com",
		Role:         user.RoleUser,
		PasswordHash: string(hash),
	}, nil)

	ctx := ctx.Background()
	u := usecase.New("jwt-secret", mockUserUC)

	tkn, err := u.Login(ctx, "dana@example.com", "hunter2hunter2")
	assert.NoError(t, err)
	assert.NotEmpty(t, tkn)

	_, err = u.Login(ctx, "dana@example.com", "wrong-password")
	assert.Equal(t, domain.ErrInvalidCredential, err)
}

func TestLoginUnknownEmail(t *testing.T) {
	mockUserUC := &mUser.Usecase{}
	mockUserUC.On("GetByEmail", mock.Anything, domain.Email("ghost@example.com")).Return(nil, domain.ErrNotFound)

	ctx := ctx.Background()
	u := usecase.New("jwt-secret", mockUserUC)

	_, err := u.Login(ctx, "ghost@example.com", "whatever123")
	assert.Equal(t, domain.ErrInvalidCredential, err)
}
