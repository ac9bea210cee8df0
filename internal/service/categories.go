package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/target/mmk-ui-client/internal/domain/model"
	"github.com/target/mmk-ui-client/internal/events"
	"github.com/target/mmk-ui-client/internal/ports"
)

const categoriesPath = "/api/categories"

// CategoriesResponse lists categories under data or categories.
type CategoriesResponse struct {
	Envelope
	Data       []model.Category `json:"data,omitempty"`
	Categories []model.Category `json:"categories,omitempty"`
}

// Items returns the list from whichever field the backend used.
func (r *CategoriesResponse) Items() []model.Category {
	if r.Data != nil {
		return r.Data
	}
	return r.Categories
}

// CategoryResponse carries one category under data or category.
type CategoryResponse struct {
	Envelope
	Data     *model.Category `json:"data,omitempty"`
	Category *model.Category `json:"category,omitempty"`
}

// Item returns the category from whichever field the backend used.
func (r *CategoryResponse) Item() *model.Category {
	if r.Data != nil {
		return r.Data
	}
	return r.Category
}

// CategoriesClient manages content categories.
type CategoriesClient struct {
	caller
}

// NewCategoriesClient constructs a CategoriesClient.
func NewCategoriesClient(opts ClientOptions) *CategoriesClient {
	return &CategoriesClient{caller: newCaller(opts, "categories_client")}
}

// GetCategories lists categories matching q.
func (c *CategoriesClient) GetCategories(ctx context.Context, q model.CategoryQuery) *CategoriesResponse {
	out := &CategoriesResponse{}
	req := ports.Request{Method: http.MethodGet, Path: categoriesPath, Query: q.Values()}
	c.run(ctx, events.CategoriesFetch, "Failed to fetch categories", req, out, func() events.Payload {
		return events.Payload{"categories": out.Items()}
	})
	return out
}

// GetCategory fetches one category.
func (c *CategoriesClient) GetCategory(ctx context.Context, id string) *CategoryResponse {
	return c.single(ctx, events.CategoryFetch, "Failed to fetch category", http.MethodGet, id, "", nil)
}

// CreateCategory creates a category; the name is mandatory.
func (c *CategoriesClient) CreateCategory(ctx context.Context, in model.CategoryInput) *CategoryResponse {
	out := &CategoryResponse{}
	if err := in.ValidateCreate(); err != nil {
		c.reject(ctx, events.CategoryCreate, err, out)
		return out
	}
	req := ports.Request{Method: http.MethodPost, Path: categoriesPath, Body: in}
	c.run(ctx, events.CategoryCreate, "Failed to create category", req, out, func() events.Payload {
		return events.Payload{"category": out.Item()}
	})
	return out
}

// UpdateCategory applies a partial update.
func (c *CategoriesClient) UpdateCategory(ctx context.Context, id string, in model.CategoryInput) *CategoryResponse {
	return c.single(ctx, events.CategoryUpdate, "Failed to update category", http.MethodPut, id, "", in)
}

// DeleteCategory removes a category.
func (c *CategoriesClient) DeleteCategory(ctx context.Context, id string) *Envelope {
	out := &Envelope{}
	if err := requireID("id", id); err != nil {
		c.reject(ctx, events.CategoryDelete, err, out)
		return out
	}
	req := ports.Request{Method: http.MethodDelete, Path: categoryPath(id)}
	c.run(ctx, events.CategoryDelete, "Failed to delete category", req, out, func() events.Payload {
		return events.Payload{"id": id}
	})
	return out
}

// ToggleCategoryStatus flips the active flag of a category.
func (c *CategoriesClient) ToggleCategoryStatus(ctx context.Context, id string) *CategoryResponse {
	return c.single(ctx, events.CategoryToggle, "Failed to toggle category status", http.MethodPatch, id, "/toggle", struct{}{})
}

func (c *CategoriesClient) single(
	ctx context.Context,
	op events.Operation,
	fallback, method, id, suffix string,
	body any,
) *CategoryResponse {
	out := &CategoryResponse{}
	if err := requireID("id", id); err != nil {
		c.reject(ctx, op, err, out)
		return out
	}
	req := ports.Request{Method: method, Path: categoryPath(id) + suffix, Body: body}
	c.run(ctx, op, fallback, req, out, func() events.Payload {
		return events.Payload{"category": out.Item()}
	})
	return out
}

func categoryPath(id string) string {
	return categoriesPath + "/" + url.PathEscape(id)
}
