package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/mmk-ui-client/internal/domain/model"
	apperrors "github.com/target/mmk-ui-client/internal/errors"
	"github.com/target/mmk-ui-client/internal/testutil"
)

func newDirectory(t *testing.T) (*UsersDirectory, *testutil.Backend) {
	t.Helper()
	s := newStack(t)
	s.backend.JSON(http.MethodGet, "/api/users", http.StatusOK, map[string]any{
		"data": []any{
			testutil.UserRecord("1", "Ada", "Lovelace", 1),
			testutil.UserRecord("2", "Grace", "Hopper", 0),
			testutil.UserRecord("3", "Alan", "Turing", 1),
			testutil.UserRecord("4", "Barbara", "Liskov", 1),
		},
	})
	return NewUsersDirectory(UsersDirectoryOptions{Transport: s.opts.Transport}), s.backend
}

func ids(users []model.DirectoryUser) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i], _ = u["id"].(string)
	}
	return out
}

func TestUsersDirectory_List_NormalizesRecords(t *testing.T) {
	d, _ := newDirectory(t)

	page, err := d.List(context.Background(), model.DirectoryFilters{}, model.Pagination{}, model.Sorting{})

	require.NoError(t, err)
	assert.Equal(t, model.Pagination{Page: 1, PerPage: 10, Total: 4}, page.Pagination)
	require.Len(t, page.Data, 4)
	first := page.Data[0]
	assert.Equal(t, "Ada", first["firstName"])
	assert.Equal(t, "Lovelace", first["lastName"])
	assert.Equal(t, "Ada Lovelace", first["fullname"])
	assert.Equal(t, true, first["active"])
	assert.NotContains(t, first, "first_name")
}

func TestUsersDirectory_List_FiltersSortsPages(t *testing.T) {
	d, _ := newDirectory(t)
	active := true

	tests := []struct {
		name      string
		filters   model.DirectoryFilters
		page      model.Pagination
		sorting   model.Sorting
		wantIDs   []string
		wantTotal int
	}{
		{
			name:      "active only",
			filters:   model.DirectoryFilters{IsActive: &active},
			wantIDs:   []string{"1", "3", "4"},
			wantTotal: 3,
		},
		{
			name:      "search is case-insensitive on full name",
			filters:   model.DirectoryFilters{Search: "HOP"},
			wantIDs:   []string{"2"},
			wantTotal: 1,
		},
		{
			name:      "sort by last name descending",
			sorting:   model.Sorting{SortBy: "lastName", SortingOrder: model.SortDesc},
			wantIDs:   []string{"3", "1", "4", "2"},
			wantTotal: 4,
		},
		{
			name:      "second page",
			page:      model.Pagination{Page: 2, PerPage: 3},
			wantIDs:   []string{"4"},
			wantTotal: 4,
		},
		{
			name:      "page past the end",
			page:      model.Pagination{Page: 5, PerPage: 3},
			wantIDs:   []string{},
			wantTotal: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := d.List(context.Background(), tt.filters, tt.page, tt.sorting)
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, ids(page.Data))
			assert.Equal(t, tt.wantTotal, page.Pagination.Total)
		})
	}
}

func TestUsersDirectory_Mutations(t *testing.T) {
	d, backend := newDirectory(t)
	backend.JSON(http.MethodPost, "/api/users", http.StatusCreated, map[string]any{"success": true, "data": map[string]any{"id": "5"}})
	backend.JSON(http.MethodPut, "/api/users/5", http.StatusOK, map[string]any{"error": "email taken"})
	backend.JSON(http.MethodDelete, "/api/users/5", http.StatusNoContent, nil)

	created, err := d.Add(context.Background(), map[string]any{"first_name": "Edsger"})
	require.NoError(t, err)
	assert.Equal(t, "5", created["id"])

	_, err = d.Update(context.Background(), map[string]any{"id": "5", "email": "x@example.com"})
	require.Error(t, err)
	assert.True(t, apperrors.IsEnvelope(err))
	assert.Contains(t, err.Error(), "email taken")

	require.NoError(t, d.Remove(context.Background(), map[string]any{"id": "5"}))
	assert.Equal(t, http.MethodDelete, backend.LastRequest().Method)

	_, err = d.Update(context.Background(), map[string]any{"email": "x@example.com"})
	assert.True(t, apperrors.IsValidation(err))
}

func TestUsersDirectory_ServerFailures(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		status     int
		body       any
		call       func(d *UsersDirectory) error
		wantCode   apperrors.ErrorCode
		wantText   string
		wantStatus int
	}{
		{
			name:   "list 500 with error body",
			method: http.MethodGet, path: "/api/users",
			status: http.StatusInternalServerError, body: map[string]any{"error": "db down"},
			call: func(d *UsersDirectory) error {
				_, err := d.List(context.Background(), model.DirectoryFilters{}, model.Pagination{}, model.Sorting{})
				return err
			},
			wantCode: apperrors.ErrCodeEnvelope, wantText: "db down", wantStatus: http.StatusInternalServerError,
		},
		{
			name:   "list 200 with error body",
			method: http.MethodGet, path: "/api/users",
			status: http.StatusOK, body: map[string]any{"success": false, "message": "Forbidden"},
			call: func(d *UsersDirectory) error {
				_, err := d.List(context.Background(), model.DirectoryFilters{}, model.Pagination{}, model.Sorting{})
				return err
			},
			wantCode: apperrors.ErrCodeEnvelope, wantText: "Forbidden", wantStatus: http.StatusOK,
		},
		{
			name:   "list without data",
			method: http.MethodGet, path: "/api/users",
			status: http.StatusOK, body: map[string]any{},
			call: func(d *UsersDirectory) error {
				_, err := d.List(context.Background(), model.DirectoryFilters{}, model.Pagination{}, model.Sorting{})
				return err
			},
			wantCode: apperrors.ErrCodeDecode, wantText: "decode users",
		},
		{
			name:   "remove 404 with error body",
			method: http.MethodDelete, path: "/api/users/9",
			status: http.StatusNotFound, body: map[string]any{"error": "user not found"},
			call: func(d *UsersDirectory) error {
				return d.Remove(context.Background(), map[string]any{"id": "9"})
			},
			wantCode: apperrors.ErrCodeEnvelope, wantText: "user not found", wantStatus: http.StatusNotFound,
		},
		{
			name:   "add 409 with bare json",
			method: http.MethodPost, path: "/api/users",
			status: http.StatusConflict, body: map[string]any{"success": false},
			call: func(d *UsersDirectory) error {
				_, err := d.Add(context.Background(), map[string]any{"first_name": "Edsger"})
				return err
			},
			wantCode: apperrors.ErrCodeEnvelope, wantText: "Request failed", wantStatus: http.StatusConflict,
		},
		{
			name:   "update 500 without failure fields",
			method: http.MethodPut, path: "/api/users/5",
			status: http.StatusInternalServerError, body: map[string]any{"data": nil},
			call: func(d *UsersDirectory) error {
				_, err := d.Update(context.Background(), map[string]any{"id": "5"})
				return err
			},
			wantCode: apperrors.ErrCodeTransport, wantText: "HTTP 500", wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, backend := newDirectory(t)
			backend.JSON(tt.method, tt.path, tt.status, tt.body)

			err := tt.call(d)

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperrors.GetCode(err))
			assert.Contains(t, err.Error(), tt.wantText)
			assert.Equal(t, tt.wantStatus, apperrors.GetStatus(err))
		})
	}
}
