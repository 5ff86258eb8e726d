package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testApp(t *testing.T) *App {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	return &App{cfg: Config{
		JWTSecret:     "test-secret",
		AdminUser:     "operator",
		AdminPassHash: string(hash),
	}}
}

func TestSignParseJWT(t *testing.T) {
	token, err := signJWT("test-secret", "operator")
	require.NoError(t, err)

	sub, err := parseJWT("test-secret", token)
	require.NoError(t, err)
	assert.Equal(t, "operator", sub)

	_, err = parseJWT("wrong-secret", token)
	assert.Error(t, err)

	_, err = parseJWT("test-secret", "not.a.token")
	assert.Error(t, err)
}

func TestHandleLogin(t *testing.T) {
	a := testApp(t)

	do := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		a.handleLogin(rec, req)
		return rec
	}

	rec := do(`{"username":"operator","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp tokenResp
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	sub, err := parseJWT("test-secret", resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "operator", sub)

	assert.Equal(t, http.StatusUnauthorized, do(`{"username":"operator","password":"wrong"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, do(`{"username":"intruder","password":"s3cret"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(`{"username":"operator"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(`{broken`).Code)
}

func TestAuthMiddleware(t *testing.T) {
	a := testApp(t)

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(operatorKey).(string)
		w.WriteHeader(http.StatusNoContent)
	})
	h := a.authMiddleware(next)

	token, err := signJWT("test-secret", "operator")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/runs", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "operator", seen)

	req = httptest.NewRequest(http.MethodPost, "/api/runs", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/runs", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
