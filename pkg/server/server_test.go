package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepflow/studybuddy/pkg/auth"
	"github.com/prepflow/studybuddy/pkg/db"
	"github.com/prepflow/studybuddy/pkg/studyprofile"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*httptest.Server, *db.Store) {
	t.Helper()
	logger := log.New(io.Discard)

	store, err := db.NewStore(context.Background(), logger, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	applier := studyprofile.NewApplier(logger, store)
	srv := New(logger, nil, applier, store, auth.NewVerifier(testSecret))

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func bearerToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doRequest(t *testing.T, ts *httptest.Server, method, path, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestRequiresBearerToken(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doRequest(t, ts, http.MethodGet, "/profile", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, ts, http.MethodGet, "/profile", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProfileInitAndGet(t *testing.T) {
	ts, _ := newTestServer(t)
	token := bearerToken(t, "user-7")

	resp := doRequest(t, ts, http.MethodGet, "/profile", token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, ts, http.MethodPost, "/profile/init", token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, ts, http.MethodGet, "/profile", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var profile studyprofile.StudyProfile
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&profile))
	assert.False(t, profile.SetupCompleted)
	assert.NotNil(t, profile.GradeTargets)
}

func TestCompleteSetup(t *testing.T) {
	ts, store := newTestServer(t)
	token := bearerToken(t, "user-7")

	resp := doRequest(t, ts, http.MethodPost, "/profile/init", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, ts, http.MethodPost, "/profile/complete-setup", token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	doc, err := store.GetProfile(context.Background(), "user-7")
	require.NoError(t, err)
	assert.True(t, doc.Profile.SetupCompleted)
}
