package usecase

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/base/log"
	"github.com/deserthomes/goapi/domain"
	"github.com/deserthomes/goapi/domain/user"
)

var timeNow = time.Now

type userUseCaseImpl struct {
	repo user.Repo
}

func NewUserUseCase(repo user.Repo) user.Usecase {
	return &userUseCaseImpl{repo}
}

func (im *userUseCaseImpl) Signup(ctx ctx.Ctx, payload user.SignupPayload) (*user.User, error) {
	email := payload.Email.ToLower()

	if existing, err := im.repo.FindOneByEmail(ctx, email); err != nil && err != domain.ErrNotFound {
		ctx.WithField("err", err).Error("repo.FindOneByEmail failed")
		return nil, err
	} else if existing != nil {
		return nil, domain.ErrConflict
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		ctx.WithField("err", err).Error("bcrypt.GenerateFromPassword failed")
		return nil, err
	}

	now := timeNow()
	value := &user.User{
		Id:           domain.UserId(uuid.New().String()),
		Email:        email,
		Name:         payload.Name,
		Role:         user.RoleUser,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := im.repo.Create(ctx, value); err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"email": email,
		}).Error("repo.Create failed")
		return nil, err
	}

	return value, nil
}

func (im *userUseCaseImpl) Get(ctx ctx.Ctx, id domain.UserId) (*user.User, error) {
	return im.repo.FindOne(ctx, user.Id{Id: id})
}

func (im *userUseCaseImpl) GetByEmail(ctx ctx.Ctx, email domain.Email) (*user.User, error) {
	return im.repo.FindOneByEmail(ctx, email.ToLower())
}

func (im *userUseCaseImpl) Update(ctx ctx.Ctx, id domain.UserId, patchable user.Patchable) (*user.User, error) {
	now := timeNow()
	patchable.UpdatedAt = &now
	if err := im.repo.Update(ctx, user.Id{Id: id}, patchable); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("repo.Update failed")
		return nil, err
	}
	return im.repo.FindOne(ctx, user.Id{Id: id})
}
