package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/mmk-ui-client/internal/testutil"
)

type cliResult struct {
	code   int
	stdout string
	stderr string
}

func (r cliResult) JSON(t *testing.T) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &out), r.stdout)
	return out
}

// cliEnv points the CLI at backend with sessions persisted in a miniredis instance,
// so state survives across invocations like it does against a real Redis.
func cliEnv(t *testing.T, backend *testutil.Backend) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	t.Setenv("API_BASE_URL", backend.URL())
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", mr.Addr())
	t.Setenv("LOG_LEVEL", "error")
	return mr
}

func runCLI(stdin string, args ...string) cliResult {
	var out, errOut bytes.Buffer
	code := run(context.Background(), args, streams{In: strings.NewReader(stdin), Out: &out, Err: &errOut})
	return cliResult{code: code, stdout: out.String(), stderr: errOut.String()}
}

func TestRun_Usage(t *testing.T) {
	res := runCLI("")
	assert.Equal(t, exitUsage, res.code)
	assert.Contains(t, res.stderr, "Usage: mmkctl")
	assert.Contains(t, res.stderr, "category-toggle")

	res = runCLI("", "bogus")
	assert.Equal(t, exitUsage, res.code)
	assert.Contains(t, res.stderr, `unknown command "bogus"`)
}

func TestRun_InvalidQuery(t *testing.T) {
	cliEnv(t, testutil.NewBackend(t))
	res := runCLI("", "-query", "users[", "users")
	assert.Equal(t, exitUsage, res.code)
	assert.Empty(t, res.stdout)
}

func TestRun_SessionLifecycle(t *testing.T) {
	backend := testutil.NewBackend(t)
	mr := cliEnv(t, backend)

	token := testutil.MintToken(t, "1", time.Now().Add(time.Hour))
	backend.JSON(http.MethodPost, "/auth/login", http.StatusOK, testutil.NewAuthEnvelope().
		WithToken(token).
		WithRefreshToken("refresh-1").
		WithUser(map[string]any{"id": "1", "email": "ada@example.com"}).
		Build())
	backend.JSON(http.MethodGet, "/auth/profile", http.StatusOK, map[string]any{
		"success": true,
		"user":    map[string]any{"id": "1", "email": "ada@example.com", "role": "admin"},
	})

	res := runCLI("s3cret\n", "login", "-email", "ada@example.com", "-password-stdin")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Equal(t, token, res.JSON(t)["token"])
	assert.Equal(t, map[string]any{"email": "ada@example.com", "password": "s3cret"}, backend.LastRequest().JSON())

	persisted, err := mr.Get("mmk:storage:token")
	require.NoError(t, err)
	assert.Equal(t, token, persisted)

	res = runCLI("", "whoami")
	require.Equal(t, exitOK, res.code)
	view := res.JSON(t)
	assert.Equal(t, "authenticated", view["state"])
	assert.NotEmpty(t, view["expiresAt"])

	res = runCLI("", "-query", "user.role", "profile")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.JSONEq(t, `"admin"`, res.stdout)
	assert.Equal(t, "Bearer "+token, backend.LastRequest().Header.Get("Authorization"))

	res = runCLI("", "refresh", "-if-expiring", "5m")
	require.Equal(t, exitOK, res.code)
	assert.Equal(t, "Token not due for refresh", res.JSON(t)["message"])

	res = runCLI("", "logout")
	require.Equal(t, exitOK, res.code)
	assert.False(t, mr.Exists("mmk:storage:token"))

	res = runCLI("", "whoami")
	assert.Equal(t, "unauthenticated", res.JSON(t)["state"])
}

func TestRun_LoginFailureExitsNonZero(t *testing.T) {
	backend := testutil.NewBackend(t)
	cliEnv(t, backend)
	backend.JSON(http.MethodPost, "/auth/login", http.StatusUnauthorized,
		testutil.NewAuthEnvelope().Failed("Invalid credentials").Build())

	res := runCLI("", "login", "-email", "ada@example.com", "-password", "wrong")

	assert.Equal(t, exitFailure, res.code)
	body := res.JSON(t)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid credentials", body["error"])
}

func TestRun_LoginRejectsConflictingPasswordFlags(t *testing.T) {
	backend := testutil.NewBackend(t)
	cliEnv(t, backend)

	res := runCLI("pw\n", "login", "-email", "a@example.com", "-password", "x", "-password-stdin")

	assert.Equal(t, exitFailure, res.code)
	assert.Empty(t, backend.Requests())
}

func TestRun_UserUpdateSendsOnlySetFields(t *testing.T) {
	backend := testutil.NewBackend(t)
	cliEnv(t, backend)
	backend.JSON(http.MethodPut, "/api/admin/users/42", http.StatusOK, map[string]any{
		"success": true,
		"user":    map[string]any{"id": "42", "first_name": "Grace", "is_active": false},
	})

	res := runCLI("", "user-update", "-id", "42", "-first-name", "Grace", "-active=false")

	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Equal(t, map[string]any{"first_name": "Grace", "is_active": false}, backend.LastRequest().JSON())
}

func TestRun_RequiresID(t *testing.T) {
	backend := testutil.NewBackend(t)
	cliEnv(t, backend)

	for _, name := range []string{"user", "user-delete", "category", "role-delete", "directory-remove"} {
		res := runCLI("", name)
		assert.Equal(t, exitFailure, res.code, name)
	}
	assert.Empty(t, backend.Requests())
}

func TestRun_CategoriesQuery(t *testing.T) {
	backend := testutil.NewBackend(t)
	cliEnv(t, backend)
	backend.JSON(http.MethodGet, "/api/categories", http.StatusOK, map[string]any{
		"success": true,
		"data":    []any{map[string]any{"id": "c1", "name": "News", "is_active": true}},
	})

	res := runCLI("", "-query", "data[].name", "categories", "-search", "ne", "-active", "true", "-order", "DESC")

	require.Equal(t, exitOK, res.code, res.stderr)
	assert.JSONEq(t, `["News"]`, res.stdout)
	assert.Equal(t, "is_active=true&order=desc&search=ne", backend.LastRequest().Query)

	res = runCLI("", "categories", "-order", "sideways")
	assert.Equal(t, exitFailure, res.code)
}

func TestRun_Directory(t *testing.T) {
	backend := testutil.NewBackend(t)
	cliEnv(t, backend)
	backend.JSON(http.MethodGet, "/api/users", http.StatusOK, map[string]any{
		"data": []any{
			testutil.UserRecord("1", "Ada", "Lovelace", 1),
			testutil.UserRecord("2", "Grace", "Hopper", 0),
			testutil.UserRecord("3", "Alan", "Turing", 1),
			testutil.UserRecord("4", "Barbara", "Liskov", 1),
		},
	})

	res := runCLI("", "-query", "{ids: data[].id, total: pagination.total}",
		"directory", "-active", "true", "-sort", "fullname", "-order", "asc", "-per-page", "2")

	require.Equal(t, exitOK, res.code, res.stderr)
	assert.JSONEq(t, `{"ids":["1","3"],"total":3}`, res.stdout)
}

func TestRun_DirectoryAddRejectsBadJSON(t *testing.T) {
	backend := testutil.NewBackend(t)
	cliEnv(t, backend)

	res := runCLI("", "directory-add", "-data", "[1,2]")

	assert.Equal(t, exitFailure, res.code)
	assert.Empty(t, backend.Requests())
}
