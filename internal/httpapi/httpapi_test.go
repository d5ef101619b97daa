package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"userhub.org/internal/auth"
	"userhub.org/internal/oauth"
)

// fakeStore is an in-memory auth.Store with the same duplicate and
// not-found semantics as the Postgres implementation.
type fakeStore struct {
	seq   int
	users map[string]*auth.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[string]*auth.User)}
}

func (f *fakeStore) Create(_ context.Context, u *auth.User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return auth.ErrDuplicateEmail
		}
	}
	if u.ID == "" {
		f.seq++
		u.ID = fmt.Sprintf("user-%04d", f.seq)
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeStore) Find(_ context.Context, id string) (*auth.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (f *fakeStore) Update(_ context.Context, u *auth.User) error {
	if _, ok := f.users[u.ID]; !ok {
		return auth.ErrNotFound
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return auth.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

type testAPI struct {
	api     *API
	handler http.Handler
	service *auth.Service
	tokens  *auth.TokenService
	store   *fakeStore
}

func newTestAPI(t *testing.T, opts ...auth.Option) *testAPI {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret")
	require.NoError(t, err)
	store := newFakeStore()
	service := auth.NewService(store, tokens, opts...)
	api := New(Options{
		Auth:   service,
		Tokens: tokens,
		Google: oauth.NewGoogle("client-id", "client-secret", "https://app.example.com/callback"),
	})
	return &testAPI{
		api:     api,
		handler: api.Handler(),
		service: service,
		tokens:  tokens,
		store:   store,
	}
}

func (ta *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ta.handler.ServeHTTP(rec, req)
	return rec
}

func (ta *testAPI) register(t *testing.T, email, password, fullName string) authResponse {
	t.Helper()
	rec := ta.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": password,
		"fullName": fullName,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp authResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}
