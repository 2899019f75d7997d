package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/base/database/mongoclient"
	"github.com/deserthomes/goapi/base/log"
	"github.com/deserthomes/goapi/domain"
	"github.com/deserthomes/goapi/domain/bid"
	"github.com/deserthomes/goapi/service/query"
)

type bidRepoImpl struct {
	q query.Mongo
}

func NewBidRepo(q query.Mongo) bid.Repo {
	return &bidRepoImpl{q}
}

func (im *bidRepoImpl) makeQuery(opts ...bid.FindAllOptionsFunc) (bson.M, error) {
	options, err := bid.GetFindAllOptions(opts...)
	if err != nil {
		return nil, err
	}
	query := bson.M{}

	if options.PropertyId != nil {
		query["propertyId"] = *options.PropertyId
	}

	if options.UserId != nil {
		query["userId"] = *options.UserId
	}

	if options.IsWinning != nil {
		query["isWinning"] = *options.IsWinning
	}

	return query, nil
}

func (im *bidRepoImpl) FindAll(ctx ctx.Ctx, opts ...bid.FindAllOptionsFunc) ([]*bid.Bid, error) {
	query, err := im.makeQuery(opts...)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("im.makeQuery")
		return nil, err
	}

	options, _ := bid.GetFindAllOptions(opts...)
	offset, limit := 0, 0
	if options.Offset != nil {
		offset = int(*options.Offset)
	}
	if options.Limit != nil {
		limit = int(*options.Limit)
	}
	sort := "-createdAt"
	if options.Sort != nil {
		sort = *options.Sort
	}

	res := []*bid.Bid{}
	err = im.q.Search(ctx, domain.TableBids, offset, limit, sort, query, &res)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": query,
		}).Error("failed to q.Search")
		return nil, err
	}

	return res, nil
}

func (im *bidRepoImpl) Count(ctx ctx.Ctx, opts ...bid.FindAllOptionsFunc) (int, error) {
	query, err := im.makeQuery(opts...)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("im.makeQuery")
		return 0, err
	}

	cnt, err := im.q.Count(ctx, domain.TableBids, query)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": query,
		}).Error("failed to q.Count")
		return 0, err
	}

	return cnt, nil
}

func (im *bidRepoImpl) FindOne(ctx ctx.Ctx, id bid.Id) (*bid.Bid, error) {
	selector, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to MakeBsonM")
		return nil, err
	}

	res := &bid.Bid{}
	if err := im.q.FindOne(ctx, domain.TableBids, selector, res); err == query.ErrNotFound {
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

func (im *bidRepoImpl) Create(ctx ctx.Ctx, value *bid.Bid) error {
	if err := im.q.Insert(ctx, domain.TableBids, value); err == query.ErrDuplicateKey {
		return domain.ErrConflict
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"value": value,
		}).Error("failed to q.Insert")
		return err
	}
	return nil
}

func (im *bidRepoImpl) Update(ctx ctx.Ctx, id bid.Id, patchable bid.Patchable) error {
	selector, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to MakeBsonM")
		return err
	}

	if err := im.q.Patch(ctx, domain.TableBids, selector, patchable); err == query.ErrNotFound {
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

func (im *bidRepoImpl) UpdateAll(ctx ctx.Ctx, patchable bid.Patchable, opts ...bid.FindAllOptionsFunc) error {
	selector, err := im.makeQuery(opts...)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("im.makeQuery")
		return err
	}

	err = im.q.Patch(ctx, domain.TableBids, selector, patchable, query.WithPatchMany(true))
	if err != nil && err != query.ErrNotFound {
		ctx.WithFields(log.Fields{
			"err":      err,
			"selector": selector,
		}).Error("failed to q.Patch")
		return err
	}

	return nil
}
