package backend

import (
	"context"
	"net/http"

	"github.com/kehila-platform/kehila/pkg/store"
)

// Entity CRUD surface. One remote round trip per call; ordering of filter
// results is owned by the platform and never assumed here.

func (c *Client) Create(ctx context.Context, entity string, fields store.Fields) (store.Record, error) {
	var rec store.Record
	err := c.do(ctx, http.MethodPost, c.appPath("entities", entity), "", fields, &rec)
	if err != nil {
		return nil, mapError("create "+entity, entity, "", err)
	}
	return rec, nil
}

func (c *Client) Update(ctx context.Context, entity, id string, fields store.Fields) (store.Record, error) {
	var rec store.Record
	err := c.do(ctx, http.MethodPut, c.appPath("entities", entity, id), "", fields, &rec)
	if err != nil {
		return nil, mapError("update "+entity, entity, id, err)
	}
	return rec, nil
}

func (c *Client) Get(ctx context.Context, entity, id string) (store.Record, error) {
	var rec store.Record
	err := c.do(ctx, http.MethodGet, c.appPath("entities", entity, id), "", nil, &rec)
	if err != nil {
		return nil, mapError("get "+entity, entity, id, err)
	}
	return rec, nil
}

func (c *Client) Filter(ctx context.Context, entity string, query store.Fields) ([]store.Record, error) {
	if query == nil {
		query = store.Fields{}
	}
	var recs []store.Record
	err := c.do(ctx, http.MethodPost, c.appPath("entities", entity, "filter"), "", query, &recs)
	if err != nil {
		return nil, mapError("filter "+entity, entity, "", err)
	}
	return recs, nil
}

func (c *Client) Delete(ctx context.Context, entity, id string) error {
	err := c.do(ctx, http.MethodDelete, c.appPath("entities", entity, id), "", nil, nil)
	if err != nil {
		return mapError("delete "+entity, entity, id, err)
	}
	return nil
}
