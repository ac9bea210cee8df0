package model

import (
	"net/url"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Category groups content in the backend.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// CategoryInput is the create/update payload for a category.
// Nil fields are omitted so updates can be partial.
type CategoryInput struct {
	Name        *string `json:"name,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// ValidateCreate checks a create payload; the name is mandatory.
func (c CategoryInput) ValidateCreate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required),
	)
}

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// CategoryQuery filters and pages the category listing.
type CategoryQuery struct {
	Page     int
	Limit    int
	Search   string
	IsActive *bool
	Sort     string
	Order    SortOrder
}

// Values encodes the query; zero-valued fields are omitted.
func (q CategoryQuery) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.IsActive != nil {
		v.Set("is_active", strconv.FormatBool(*q.IsActive))
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Order != "" {
		v.Set("order", string(q.Order))
	}
	return v
}
