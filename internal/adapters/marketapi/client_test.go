package marketapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/KrownWealth/afrozonauto-admin/internal/domain/auth"
	"github.com/KrownWealth/afrozonauto-admin/internal/domain/model"
	"github.com/KrownWealth/afrozonauto-admin/internal/ports"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL, Timeout: 2 * time.Second})
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
}

func TestLoginSuccess(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ops@afrozonauto.com", body["email"])
		assert.Equal(t, "hunter22", body["password"])

		_, _ = w.Write([]byte(`{"data":{"data":{
			"user":{"id":"u-1","email":"ops@afrozonauto.com","fullName":"Ops Lead","role":"OPERATION"},
			"accessToken":"at-1","refreshToken":"rt-1"}}}`))
	}))

	identity, pair, err := c.Login(context.Background(), ports.LoginInput{
		Email:    "ops@afrozonauto.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.Equal(t, "u-1", identity.UserID)
	assert.Equal(t, domainauth.RoleOperation, identity.Role)
	assert.Equal(t, "at-1", pair.AccessToken)
	assert.Equal(t, "rt-1", pair.RefreshToken)
}

func TestLoginRejections(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "unauthorized status", status: http.StatusUnauthorized, body: `{"message":"bad credentials"}`},
		{name: "missing access token", status: http.StatusOK, body: `{"data":{"data":{"user":{"id":"u-1"},"refreshToken":"rt"}}}`},
		{name: "missing user", status: http.StatusOK, body: `{"data":{"data":{"accessToken":"at","refreshToken":"rt"}}}`},
		{name: "malformed body", status: http.StatusOK, body: `not json`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))

			_, _, err := c.Login(context.Background(), ports.LoginInput{Email: "a@b.co", Password: "x"})
			require.ErrorIs(t, err, ErrLoginRejected)
		})
	}
}

func TestRefreshKeepsOldTokenWhenRotationAbsent(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/refresh-token", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "rt-old", body["refreshToken"])

		_, _ = w.Write([]byte(`{"data":{"accessToken":"at-2"}}`))
	}))

	pair, err := c.Refresh(context.Background(), "rt-old")
	require.NoError(t, err)
	assert.Equal(t, "at-2", pair.AccessToken)
	assert.Equal(t, "rt-old", pair.RefreshToken)
}

func TestRefreshRotatesToken(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"accessToken":"at-2","refreshToken":"rt-2"}}`))
	}))

	pair, err := c.Refresh(context.Background(), "rt-old")
	require.NoError(t, err)
	assert.Equal(t, "rt-2", pair.RefreshToken)
}

func TestRefreshRejected(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := c.Refresh(context.Background(), "rt-old")
	require.ErrorIs(t, err, ErrRefreshRejected)
}

func TestResourceAttachesBearerToken(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))
		require.Equal(t, "/vehicles", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "toyota", r.URL.Query().Get("search"))

		_, _ = w.Write([]byte(`{"data":[{"id":"v-1","make":"Toyota"}]}`))
	}))

	vehicles, err := c.ListVehicles(context.Background(), "at-1", model.ListParams{Page: 2, Search: "toyota"})
	require.NoError(t, err)
	require.Len(t, vehicles, 1)
	assert.Equal(t, "v-1", vehicles[0].ID)
}

func TestResourceUnauthorized(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := c.ListUsers(context.Background(), "stale", model.ListParams{})
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestResourceNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := c.GetVehicle(context.Background(), "at-1", "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"totalCars":12,"apiCars":9,"manualCars":3}}`))
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL, Timeout: 2 * time.Second, RetryLimit: 2})
	require.NoError(t, err)

	stats, err := c.DashboardStats(context.Background(), "at-1")
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalVehicles)
	assert.EqualValues(t, 2, calls.Load())
}

func TestMutationsDoNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL, Timeout: 2 * time.Second, RetryLimit: 2})
	require.NoError(t, err)

	_, err = c.UpdateOrder(context.Background(), "at-1", "o-1", model.OrderUpdate{})
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestDeleteVehicle(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/vehicles/v-9", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, c.DeleteVehicle(context.Background(), "at-1", "v-9"))
}
