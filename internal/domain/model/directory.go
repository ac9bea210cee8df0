package model

// DirectoryUser is a normalized user record from the users directory
// (camelCase keys plus the derived "fullname" and "active" fields).
type DirectoryUser map[string]any

// Pagination describes a page of a client-side paginated listing.
type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
	Total   int `json:"total"`
}

// Sorting orders a listing by a normalized key.
type Sorting struct {
	SortBy       string    `json:"sortBy,omitempty"`
	SortingOrder SortOrder `json:"sortingOrder,omitempty"`
}

// DirectoryFilters narrows the users directory.
type DirectoryFilters struct {
	IsActive *bool
	Search   string
}

// UserPage is one page of the users directory.
type UserPage struct {
	Data       []DirectoryUser `json:"data"`
	Pagination Pagination      `json:"pagination"`
}
