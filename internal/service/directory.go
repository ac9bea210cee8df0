package service

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/target/mmk-ui-client/internal/domain/model"
	apperrors "github.com/target/mmk-ui-client/internal/errors"
	"github.com/target/mmk-ui-client/internal/normalize"
	"github.com/target/mmk-ui-client/internal/ports"
)

const (
	directoryPath           = "/api/users"
	defaultDirectoryPage    = 1
	defaultDirectoryPerPage = 10
)

// UsersDirectory lists and edits the user directory. Filtering, sorting and paging
// happen client-side over normalized records. Failures, including non-2xx answers and
// bodies carrying an "error" field, are returned as Go errors and are not announced on
// the event bus.
type UsersDirectory struct {
	transport ports.Transport
	logger    *slog.Logger
}

// UsersDirectoryOptions groups dependencies for UsersDirectory.
type UsersDirectoryOptions struct {
	Transport ports.Transport
	Logger    *slog.Logger
}

// NewUsersDirectory constructs a UsersDirectory.
func NewUsersDirectory(opts UsersDirectoryOptions) *UsersDirectory {
	if opts.Transport == nil {
		panic("Transport is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &UsersDirectory{transport: opts.Transport, logger: logger.With("component", "users_directory")}
}

type directoryListResponse struct {
	Data []map[string]any `json:"data"`
}

type directoryFailure struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

type directoryMutationResponse struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
}

// List fetches all users, normalizes them with the user transforms, then filters,
// sorts and pages the result. Page and PerPage default to 1 and 10.
func (d *UsersDirectory) List(
	ctx context.Context,
	filters model.DirectoryFilters,
	page model.Pagination,
	sorting model.Sorting,
) (model.UserPage, error) {
	resp, err := d.transport.Do(ctx, ports.Request{Method: http.MethodGet, Path: directoryPath})
	if err != nil {
		return model.UserPage{}, fmt.Errorf("list users: %w", err)
	}
	if ferr := responseFailure(resp); ferr != nil {
		return model.UserPage{}, fmt.Errorf("list users: %w", ferr)
	}

	var body directoryListResponse
	if uerr := json.Unmarshal(resp.Body, &body); uerr != nil {
		return model.UserPage{}, apperrors.Wrap(uerr, apperrors.ErrCodeDecode, "decode users")
	}
	if body.Data == nil {
		return model.UserPage{}, apperrors.Wrap(errors.New("missing data"), apperrors.ErrCodeDecode, "decode users")
	}

	records, err := normalize.Records(body.Data, normalize.UserTransforms)
	if err != nil {
		return model.UserPage{}, fmt.Errorf("normalize users: %w", err)
	}

	users := make([]model.DirectoryUser, 0, len(records))
	for _, r := range records {
		if matchesFilters(r, filters) {
			users = append(users, model.DirectoryUser(r))
		}
	}
	sortUsers(users, sorting)

	if page.Page <= 0 {
		page.Page = defaultDirectoryPage
	}
	if page.PerPage <= 0 {
		page.PerPage = defaultDirectoryPerPage
	}
	page.Total = len(users)

	start := min((page.Page-1)*page.PerPage, len(users))
	end := min(start+page.PerPage, len(users))

	d.logger.DebugContext(ctx, "users listed", "total", page.Total, "page", page.Page)
	return model.UserPage{Data: users[start:end], Pagination: page}, nil
}

// Add creates a user.
func (d *UsersDirectory) Add(ctx context.Context, user map[string]any) (map[string]any, error) {
	return d.mutate(ctx, http.MethodPost, directoryPath, user)
}

// Update replaces a user; the record must carry an "id".
func (d *UsersDirectory) Update(ctx context.Context, user map[string]any) (map[string]any, error) {
	id, err := recordID(user)
	if err != nil {
		return nil, err
	}
	return d.mutate(ctx, http.MethodPut, directoryPath+"/"+url.PathEscape(id), user)
}

// Remove deletes a user by the "id" of the record.
func (d *UsersDirectory) Remove(ctx context.Context, user map[string]any) error {
	id, err := recordID(user)
	if err != nil {
		return err
	}
	resp, err := d.transport.Do(ctx, ports.Request{Method: http.MethodDelete, Path: directoryPath + "/" + url.PathEscape(id)})
	if err != nil {
		return fmt.Errorf("remove user %s: %w", id, err)
	}
	if ferr := responseFailure(resp); ferr != nil {
		return fmt.Errorf("remove user %s: %w", id, ferr)
	}
	return nil
}

func (d *UsersDirectory) mutate(ctx context.Context, method, path string, user map[string]any) (map[string]any, error) {
	if user == nil {
		return nil, apperrors.Validation("user is required")
	}
	resp, err := d.transport.Do(ctx, ports.Request{Method: method, Path: path, Body: user})
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if ferr := responseFailure(resp); ferr != nil {
		return nil, ferr
	}

	var body directoryMutationResponse
	if len(bytes.TrimSpace(resp.Body)) > 0 {
		if uerr := json.Unmarshal(resp.Body, &body); uerr != nil {
			return nil, apperrors.Wrap(uerr, apperrors.ErrCodeDecode, "decode user")
		}
	}
	return body.Data, nil
}

// responseFailure reports a body "error" (or a success=false message) as an envelope
// error, and any other non-2xx status as a transport error. Both carry the status.
func responseFailure(resp *ports.Response) error {
	var f directoryFailure
	if len(bytes.TrimSpace(resp.Body)) > 0 {
		// Bodies that are not a JSON object fall through to the status check.
		_ = json.Unmarshal(resp.Body, &f)
	}

	msg := f.Error
	if msg == "" && f.Success != nil && !*f.Success {
		msg = cmp.Or(f.Message, "Request failed")
	}
	var appErr *apperrors.AppError
	switch {
	case msg != "":
		appErr = apperrors.Envelope(msg)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		appErr = apperrors.Transportf("HTTP %d", resp.StatusCode)
	default:
		return nil
	}
	appErr.Status = resp.StatusCode
	return appErr
}

func recordID(user map[string]any) (string, error) {
	if user == nil {
		return "", apperrors.Validation("user is required")
	}
	id := ""
	if v, ok := user["id"]; ok && v != nil {
		id = fmt.Sprint(v)
	}
	if id == "" {
		return "", apperrors.ValidationField("id", "id is required")
	}
	return id, nil
}

func matchesFilters(user map[string]any, f model.DirectoryFilters) bool {
	if f.IsActive != nil {
		active, _ := user["active"].(bool)
		if active != *f.IsActive {
			return false
		}
	}
	if f.Search != "" {
		name, _ := user["fullname"].(string)
		if !strings.Contains(strings.ToLower(name), strings.ToLower(f.Search)) {
			return false
		}
	}
	return true
}

func sortUsers(users []model.DirectoryUser, s model.Sorting) {
	if s.SortBy == "" || s.SortingOrder == "" {
		return
	}
	desc := s.SortingOrder == model.SortDesc
	slices.SortStableFunc(users, func(a, b model.DirectoryUser) int {
		c := compareValues(a[s.SortBy], b[s.SortBy])
		if desc {
			return -c
		}
		return c
	})
}

// compareValues orders numbers numerically, bools false-first and everything else by
// its string form. Missing values sort first.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return cmp.Compare(fa, fb)
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			default:
				return 1
			}
		}
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
