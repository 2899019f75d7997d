package usecase

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	bCtx "github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/domain"
	"github.com/deserthomes/goapi/domain/user"
	mUser "github.com/deserthomes/goapi/domain/user/mocks"
)

type userUseCaseSuite struct {
	suite.Suite
	ctx  bCtx.Ctx
	repo *mUser.Repo
	uc   user.Usecase
}

func TestUserUseCaseSuite(t *testing.T) {
	suite.Run(t, new(userUseCaseSuite))
}

func (s *userUseCaseSuite) SetupTest() {
	s.ctx = bCtx.Background()
	s.repo = &mUser.Repo{}
	s.uc = NewUserUseCase(s.repo)
}

func (s *userUseCaseSuite) TestSignupHashesPassword() {
	s.repo.On("FindOneByEmail", mock.Anything, domain.Email("dana@example.com")).Return(nil, domain.ErrNotFound)
	s.repo.On("Create", mock.Anything, mock.MatchedBy(func(u *user.User) bool {
		if u.Email != "dana@example.com" || u.Role != user.RoleUser || u.Id == "" {
			return false
		}
		return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("hunter2hunter2")) == nil
	})).Return(nil)

	res, err := s.uc.Signup(s.ctx, user.SignupPayload{
		Email:    "Dana@Example.com",
		Name:     "Dana",
		Password: "hunter2hunter2",
	})
	s.NoError(err)
	s.Equal(domain.Email("dana@example.com"), res.Email)
	s.repo.AssertExpectations(s.T())
}

func (s *userUseCaseSuite) TestSignupDuplicateEmail() {
	s.repo.On("FindOneByEmail", mock.Anything, domain.Email("dana@example.com")).
		Return(&user.User{Id: "user-1", Email: "dana@example.com"}, nil)

	_, err := s.uc.Signup(s.ctx, user.SignupPayload{
		Email:    "dana@example.com",
		Name:     "Dana",
		Password: "hunter2hunter2",
	})
	s.Equal(domain.ErrConflict, err)
	s.repo.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *userUseCaseSuite) TestUpdateStampsUpdatedAt() {
	name := "Dana P."
	s.repo.On("Update", mock.Anything, user.Id{Id: "user-1"}, mock.MatchedBy(func(p user.Patchable) bool {
		return p.Name != nil && *p.Name == name && p.UpdatedAt != nil
	})).Return(nil)
	s.repo.On("FindOne", mock.Anything, user.Id{Id: "user-1"}).
		Return(&user.User{Id: "user-1", Name: name}, nil)

	res, err := s.uc.Update(s.ctx, "user-1", user.Patchable{Name: &name})
	s.NoError(err)
	s.Equal(name, res.Name)
	s.repo.AssertExpectations(s.T())
}
