package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KrownWealth/afrozonauto-admin/config"
	domainauth "github.com/KrownWealth/afrozonauto-admin/internal/domain/auth"
	"github.com/KrownWealth/afrozonauto-admin/internal/ports"
)

// mockProvider is a test helper for driving the identity provider port.
type mockProvider struct {
	loginFunc   func(context.Context, ports.LoginInput) (domainauth.Identity, domainauth.TokenPair, error)
	refreshFunc func(context.Context, string) (domainauth.TokenPair, error)

	mu           sync.Mutex
	refreshCalls int
}

func (m *mockProvider) Login(
	ctx context.Context,
	in ports.LoginInput,
) (domainauth.Identity, domainauth.TokenPair, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, in)
	}
	return domainauth.Identity{}, domainauth.TokenPair{}, ports.ErrLoginRejected
}

func (m *mockProvider) Refresh(ctx context.Context, token string) (domainauth.TokenPair, error) {
	m.mu.Lock()
	m.refreshCalls++
	m.mu.Unlock()

	if m.refreshFunc != nil {
		return m.refreshFunc(ctx, token)
	}
	return domainauth.TokenPair{}, ports.ErrRefreshRejected
}

func (m *mockProvider) RefreshCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshCalls
}

// memorySessionStore is an in-memory SessionStore for tests.
type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (s *memorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *memorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

func (s *memorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// mockDecoder is a test helper for the token decoder port.
type mockDecoder struct {
	decodeFunc func(string) (domainauth.TokenClaims, error)
}

func (m *mockDecoder) Decode(token string) (domainauth.TokenClaims, error) {
	if m.decodeFunc != nil {
		return m.decodeFunc(token)
	}
	return domainauth.TokenClaims{}, errors.New("decode not configured")
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		SessionTTL:        time.Hour,
		FallbackAccessTTL: time.Hour,
		RefreshTimeout:    time.Second,
	}
}

func newTestAuthService(
	t *testing.T,
	provider ports.IdentityProvider,
	sessions ports.SessionStore,
	tokens ports.TokenDecoder,
) *AuthService {
	t.Helper()
	svc, err := NewAuthService(AuthServiceOptions{
		Provider: provider,
		Sessions: sessions,
		Tokens:   tokens,
		Config:   testAuthConfig(),
	})
	require.NoError(t, err)
	return svc
}

func TestAuthService_Authenticate_Success(t *testing.T) {
	expiry := time.Now().Add(15 * time.Minute)
	provider := &mockProvider{
		loginFunc: func(_ context.Context, in ports.LoginInput) (domainauth.Identity, domainauth.TokenPair, error) {
			require.Equal(t, "admin@afrozonauto.com", in.Email)
			identity := domainauth.Identity{
				UserID:   "u-1",
				Email:    in.Email,
				FullName: "Ada Admin",
				Role:     domainauth.RoleAdmin,
			}
			return identity, domainauth.TokenPair{AccessToken: "at", RefreshToken: "rt"}, nil
		},
	}
	sessions := newMemorySessionStore()
	tokens := &mockDecoder{
		decodeFunc: func(string) (domainauth.TokenClaims, error) {
			return domainauth.TokenClaims{Subject: "u-1", ExpiresAt: expiry}, nil
		},
	}

	svc := newTestAuthService(t, provider, sessions, tokens)

	session, err := svc.Authenticate(context.Background(), ports.LoginInput{
		Email:    "admin@afrozonauto.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "u-1", session.UserID)
	assert.Equal(t, domainauth.RoleAdmin, session.Role)
	assert.Equal(t, "at", session.AccessToken)
	assert.Equal(t, "rt", session.RefreshToken)
	assert.WithinDuration(t, expiry, session.AccessExpiresAt, time.Second)
	assert.False(t, session.RefreshFailed)

	// Session must be persisted under the returned ID.
	stored, err := sessions.Get(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, stored.UserID)
}

func TestAuthService_Authenticate_RejectionIsUniform(t *testing.T) {
	tests := []struct {
		name  string
		input ports.LoginInput
	}{
		{name: "empty email", input: ports.LoginInput{Password: "x"}},
		{name: "empty password", input: ports.LoginInput{Email: "a@b.co"}},
		{name: "provider rejection", input: ports.LoginInput{Email: "a@b.co", Password: "wrong"}},
	}

	provider := &mockProvider{} // rejects every login
	svc := newTestAuthService(t, provider, newMemorySessionStore(), &mockDecoder{})

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Authenticate(context.Background(), tc.input)
			require.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestAuthService_Authenticate_TransportErrorIsNotCredentialFailure(t *testing.T) {
	transportErr := errors.New("connection refused")
	provider := &mockProvider{
		loginFunc: func(context.Context, ports.LoginInput) (domainauth.Identity, domainauth.TokenPair, error) {
			return domainauth.Identity{}, domainauth.TokenPair{}, transportErr
		},
	}
	svc := newTestAuthService(t, provider, newMemorySessionStore(), &mockDecoder{})

	_, err := svc.Authenticate(context.Background(), ports.LoginInput{Email: "a@b.co", Password: "x"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorIs(t, err, transportErr)
}

func TestAuthService_Authenticate_UndecodableTokenUsesFallbackExpiry(t *testing.T) {
	provider := &mockProvider{
		loginFunc: func(context.Context, ports.LoginInput) (domainauth.Identity, domainauth.TokenPair, error) {
			identity := domainauth.Identity{UserID: "u-1", Role: domainauth.RoleSuperAdmin}
			return identity, domainauth.TokenPair{AccessToken: "opaque", RefreshToken: "rt"}, nil
		},
	}
	tokens := &mockDecoder{
		decodeFunc: func(string) (domainauth.TokenClaims, error) {
			return domainauth.TokenClaims{}, errors.New("no expiry claim")
		},
	}
	svc := newTestAuthService(t, provider, newMemorySessionStore(), tokens)

	before := time.Now()
	session, err := svc.Authenticate(context.Background(), ports.LoginInput{Email: "a@b.co", Password: "x"})
	require.NoError(t, err)

	// Fallback horizon is one hour from now, not zero.
	assert.WithinDuration(t, before.Add(time.Hour), session.AccessExpiresAt, 2*time.Second)
}

func TestAuthService_CurrentSession_FreshTokenSkipsRefresh(t *testing.T) {
	provider := &mockProvider{}
	sessions := newMemorySessionStore()
	svc := newTestAuthService(t, provider, sessions, &mockDecoder{})

	now := time.Now()
	require.NoError(t, sessions.Save(context.Background(), domainauth.Session{
		ID:              "s-1",
		UserID:          "u-1",
		Role:            domainauth.RoleAdmin,
		AccessToken:     "at",
		RefreshToken:    "rt",
		AccessExpiresAt: now.Add(10 * time.Minute),
		ExpiresAt:       now.Add(time.Hour),
	}))

	session, err := svc.CurrentSession(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, "at", session.AccessToken)
	assert.Equal(t, 0, provider.RefreshCalls())
}

func TestAuthService_CurrentSession_ExpiredTokenRefreshesExactlyOnce(t *testing.T) {
	newExpiry := time.Now().Add(15 * time.Minute)
	provider := &mockProvider{
		refreshFunc: func(_ context.Context, token string) (domainauth.TokenPair, error) {
			require.Equal(t, "rt-old", token)
			return domainauth.TokenPair{AccessToken: "at-new", RefreshToken: "rt-new"}, nil
		},
	}
	sessions := newMemorySessionStore()
	tokens := &mockDecoder{
		decodeFunc: func(string) (domainauth.TokenClaims, error) {
			return domainauth.TokenClaims{ExpiresAt: newExpiry}, nil
		},
	}
	svc := newTestAuthService(t, provider, sessions, tokens)

	now := time.Now()
	require.NoError(t, sessions.Save(context.Background(), domainauth.Session{
		ID:              "s-1",
		UserID:          "u-1",
		Role:            domainauth.RoleAdmin,
		AccessToken:     "at-old",
		RefreshToken:    "rt-old",
		AccessExpiresAt: now.Add(-time.Minute),
		ExpiresAt:       now.Add(time.Hour),
	}))

	session, err := svc.CurrentSession(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, "at-new", session.AccessToken)
	assert.Equal(t, "rt-new", session.RefreshToken)
	assert.False(t, session.RefreshFailed)
	assert.Equal(t, 1, provider.RefreshCalls())

	// Rotated pair must be persisted: the next read sees a fresh token and
	// does not refresh again.
	session, err = svc.CurrentSession(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, "at-new", session.AccessToken)
	assert.Equal(t, 1, provider.RefreshCalls())
}

func TestAuthService_CurrentSession_RefreshFailureFlagsSession(t *testing.T) {
	provider := &mockProvider{} // rejects every refresh
	sessions := newMemorySessionStore()
	svc := newTestAuthService(t, provider, sessions, &mockDecoder{})

	now := time.Now()
	require.NoError(t, sessions.Save(context.Background(), domainauth.Session{
		ID:              "s-1",
		UserID:          "u-1",
		Role:            domainauth.RoleAdmin,
		AccessToken:     "at-old",
		RefreshToken:    "rt-old",
		AccessExpiresAt: now.Add(-time.Minute),
		ExpiresAt:       now.Add(time.Hour),
	}))

	// Session survives the failed refresh but carries the flag.
	session, err := svc.CurrentSession(context.Background(), "s-1")
	require.NoError(t, err)
	assert.True(t, session.RefreshFailed)
	assert.Equal(t, 1, provider.RefreshCalls())

	// Flagged sessions are not retried on subsequent reads.
	session, err = svc.CurrentSession(context.Background(), "s-1")
	require.NoError(t, err)
	assert.True(t, session.RefreshFailed)
	assert.Equal(t, 1, provider.RefreshCalls())
}

func TestAuthService_CurrentSession_MissingSession(t *testing.T) {
	svc := newTestAuthService(t, &mockProvider{}, newMemorySessionStore(), &mockDecoder{})

	_, err := svc.CurrentSession(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNoSession)

	_, err = svc.CurrentSession(context.Background(), "")
	require.ErrorIs(t, err, ErrNoSession)
}

func TestAuthService_CurrentSession_ExpiredSessionIsRemoved(t *testing.T) {
	sessions := newMemorySessionStore()
	svc := newTestAuthService(t, &mockProvider{}, sessions, &mockDecoder{})

	now := time.Now()
	require.NoError(t, sessions.Save(context.Background(), domainauth.Session{
		ID:        "s-old",
		UserID:    "u-1",
		ExpiresAt: now.Add(-time.Minute),
	}))

	_, err := svc.CurrentSession(context.Background(), "s-old")
	require.ErrorIs(t, err, ErrNoSession)

	_, err = sessions.Get(context.Background(), "s-old")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestAuthService_Logout(t *testing.T) {
	sessions := newMemorySessionStore()
	svc := newTestAuthService(t, &mockProvider{}, sessions, &mockDecoder{})

	require.NoError(t, sessions.Save(context.Background(), domainauth.Session{
		ID:        "s-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	require.NoError(t, svc.Logout(context.Background(), "s-1"))

	_, err := sessions.Get(context.Background(), "s-1")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)

	// Empty ID is a no-op.
	require.NoError(t, svc.Logout(context.Background(), ""))
}

func TestAuthService_CurrentSession_ConcurrentReadsShareOneRefresh(t *testing.T) {
	newExpiry := time.Now().Add(15 * time.Minute)
	release := make(chan struct{})
	provider := &mockProvider{
		refreshFunc: func(_ context.Context, _ string) (domainauth.TokenPair, error) {
			<-release // hold the refresh open until every reader is in flight
			return domainauth.TokenPair{AccessToken: "at-new", RefreshToken: "rt-new"}, nil
		},
	}
	sessions := newMemorySessionStore()
	tokens := &mockDecoder{
		decodeFunc: func(string) (domainauth.TokenClaims, error) {
			return domainauth.TokenClaims{ExpiresAt: newExpiry}, nil
		},
	}
	svc := newTestAuthService(t, provider, sessions, tokens)

	now := time.Now()
	require.NoError(t, sessions.Save(context.Background(), domainauth.Session{
		ID:              "s-1",
		UserID:          "u-1",
		Role:            domainauth.RoleAdmin,
		AccessToken:     "at-old",
		RefreshToken:    "rt-old",
		AccessExpiresAt: now.Add(-time.Minute),
		ExpiresAt:       now.Add(time.Hour),
	}))

	const readers = 8
	var started, finished sync.WaitGroup
	started.Add(readers)
	finished.Add(readers)
	for range readers {
		go func() {
			defer finished.Done()
			started.Done()
			session, err := svc.CurrentSession(context.Background(), "s-1")
			assert.NoError(t, err)
			assert.Equal(t, "at-new", session.AccessToken)
		}()
	}

	started.Wait()
	// Give every reader time to load the session and park on the shared
	// flight before the refresh is allowed to complete.
	time.Sleep(50 * time.Millisecond)
	close(release)
	finished.Wait()

	assert.Equal(t, 1, provider.RefreshCalls())
}
