package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/deserthomes/goapi/base/ctx"
	"github.com/deserthomes/goapi/base/database/mongoclient"
	"github.com/deserthomes/goapi/base/log"
	"github.com/deserthomes/goapi/domain"
	"github.com/deserthomes/goapi/domain/property"
	"github.com/deserthomes/goapi/service/query"
)

type propertyRepoImpl struct {
	q query.Mongo
}

func NewPropertyRepo(q query.Mongo) property.Repo {
	return &propertyRepoImpl{q}
}

func (im *propertyRepoImpl) makeQuery(opts ...property.FindAllOptionsFunc) (bson.M, error) {
	options, err := property.GetFindAllOptions(opts...)
	if err != nil {
		return nil, err
	}
	query := bson.M{}

	if options.Status != nil {
		query["status"] = *options.Status
	}

	if options.City != nil {
		query["city"] = *options.City
	}

	if options.PropertyType != nil {
		query["propertyType"] = *options.PropertyType
	}

	if options.CreatedBy != nil {
		query["createdBy"] = *options.CreatedBy
	}

	priceQuery := bson.M{}
	if options.PriceGTE != nil {
		priceQuery["$gte"] = *options.PriceGTE
	}

	if options.PriceLTE != nil {
		priceQuery["$lte"] = *options.PriceLTE
	}

	if len(priceQuery) > 0 {
		query["price"] = priceQuery
	}

	return query, nil
}

func (im *propertyRepoImpl) FindAll(ctx ctx.Ctx, opts ...property.FindAllOptionsFunc) ([]*property.Property, error) {
	query, err := im.makeQuery(opts...)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("im.makeQuery")
		return nil, err
	}

	options, _ := property.GetFindAllOptions(opts...)
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

	res := []*property.Property{}
	err = im.q.Search(ctx, domain.TableProperties, offset, limit, sort, query, &res)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": query,
		}).Error("failed to q.Search")
		return nil, err
	}

	return res, nil
}

func (im *propertyRepoImpl) Count(ctx ctx.Ctx, opts ...property.FindAllOptionsFunc) (int, error) {
	query, err := im.makeQuery(opts...)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("im.makeQuery")
		return 0, err
	}

	cnt, err := im.q.Count(ctx, domain.TableProperties, query)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": query,
		}).Error("failed to q.Count")
		return 0, err
	}

	return cnt, nil
}

func (im *propertyRepoImpl) FindOne(ctx ctx.Ctx, id property.Id) (*property.Property, error) {
	selector, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to MakeBsonM")
		return nil, err
	}

	res := &property.Property{}
	if err := im.q.FindOne(ctx, domain.TableProperties, selector, res); err == query.ErrNotFound {
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

func (im *propertyRepoImpl) FindOneBySlug(ctx ctx.Ctx, slug string) (*property.Property, error) {
	res := &property.Property{}
	if err := im.q.FindOne(ctx, domain.TableProperties, bson.M{"slug": slug}, res); err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":  err,
			"slug": slug,
		}).Error("failed to q.FindOne")
		return nil, err
	}

	return res, nil
}

func (im *propertyRepoImpl) Create(ctx ctx.Ctx, value *property.Property) error {
	if err := im.q.Insert(ctx, domain.TableProperties, value); err == query.ErrDuplicateKey {
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

func (im *propertyRepoImpl) Update(ctx ctx.Ctx, id property.Id, patchable property.Patchable) error {
	selector, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to MakeBsonM")
		return err
	}

	if err := im.q.Patch(ctx, domain.TableProperties, selector, patchable); err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":       err,
			"id":        id,
			"patchable": patchable,
		}).Error("failed to q.Patch")
		return err
	}

	return nil
}

func (im *propertyRepoImpl) Delete(ctx ctx.Ctx, id property.Id) error {
	selector, err := mongoclient.MakeBsonM(id)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to MakeBsonM")
		return err
	}

	if err := im.q.Remove(ctx, domain.TableProperties, selector); err == query.ErrNotFound {
		return domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"id":  id,
		}).Error("failed to q.Remove")
		return err
	}

	return nil
}
