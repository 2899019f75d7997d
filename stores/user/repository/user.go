package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/base/database/mongoclient"
	"github.com/deserthomes/goapi/base/log"
	"github.com/deserthomes/goapi/domain"
	"github.com/deserthomes/goapi/domain/user"
	"github.com/deserthomes/goapi/service/query"
)

type userRepoImpl struct {
	q query.Mongo
}

func NewUserRepo(q query.Mongo) user.Repo {
	return &userRepoImpl{q}
}

func (im *userRepoImpl) FindOne(ctx ctx.Ctx, id user.Id) (*user.User, error) {
	selector, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to MakeBsonM")
		return nil, err
	}

	res := &user.User{}
	if err := im.q.FindOne(ctx, domain.TableUsers, selector, res); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to q.FindOne")
		return nil, err
	}

	return res, nil
}

func (im *userRepoImpl) FindOneByEmail(ctx ctx.Ctx, email domain.Email) (*user.User, error) {
	res := &user.User{}
	if err := im.q.FindOne(ctx, domain.TableUsers, bson.M{"email": email.ToLower()}, res); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"email": email,
		}).Error("failed to q.FindOne")
		return nil, err
	}

	return res, nil
}

func (im *userRepoImpl) Create(ctx ctx.Ctx, value *user.User) error {
	if err := im.q.Insert(ctx, domain.TableUsers, value); err == query.ErrDuplicateKey {
		return domain.ErrConflict
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"email": value.Email,
		}).Error("failed to q.Insert")
		return err
	}
	return nil
}

func (im *userRepoImpl) Update(ctx ctx.Ctx, id user.Id, patchable user.Patchable) error {
	selector, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to MakeBsonM")
		return err
	}

	if err := im.q.Patch(ctx, domain.TableUsers, selector, patchable); err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to q.Patch")
		return err
	}

	return nil
}
