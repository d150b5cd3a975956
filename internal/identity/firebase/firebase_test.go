package firebase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/freelance-hub/jobhub/internal/identity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUser struct {
	uid, email, password, name, photo string
}

// fakeFirebase emulates the handful of Identity Toolkit and Secure Token
// methods the provider uses.
type fakeFirebase struct {
	mu       sync.Mutex
	users    map[string]*fakeUser // by email
	refresh  map[string]string    // refresh token -> email
	idpBody  string
	rejected bool
}

func newFakeFirebase(t *testing.T) (*fakeFirebase, *httptest.Server) {
	f := &fakeFirebase{users: map[string]*fakeUser{}, refresh: map[string]string{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeFirebase) idToken(u *fakeUser) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.uid,
		"sub":     u.uid,
		"email":   u.email,
		"name":    u.name,
		"picture": u.photo,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	s, _ := tok.SignedString([]byte("test-secret"))
	return s
}

func (f *fakeFirebase) fail(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": 400, "message": msg}})
}

func (f *fakeFirebase) issue(w http.ResponseWriter, u *fakeUser) {
	rt := "rt-" + u.uid
	f.refresh[rt] = u.email
	_ = json.NewEncoder(w).Encode(map[string]any{
		"localId":      u.uid,
		"email":        u.email,
		"displayName":  u.name,
		"photoUrl":     u.photo,
		"idToken":      f.idToken(u),
		"refreshToken": rt,
		"expiresIn":    "3600",
	})
}

func (f *fakeFirebase) userByToken(raw string) *fakeUser {
	claims, err := decodeIDToken(raw)
	if err != nil {
		return nil
	}
	return f.users[claims.Email]
}

func (f *fakeFirebase) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Query().Get("key") != "test-key" {
		f.fail(w, "API_KEY_INVALID")
		return
	}

	if r.URL.Path == "/v1/token" {
		_ = r.ParseForm()
		email, ok := f.refresh[r.PostForm.Get("refresh_token")]
		if !ok || f.rejected {
			f.fail(w, "INVALID_REFRESH_TOKEN")
			return
		}
		u := f.users[email]
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id_token":      f.idToken(u),
			"refresh_token": "rt-" + u.uid,
			"expires_in":    "3600",
		})
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		f.fail(w, "INVALID_JSON")
		return
	}
	str := func(k string) string { s, _ := body[k].(string); return s }

	switch r.URL.Path {
	case "/v1/accounts:signUp":
		if _, exists := f.users[str("email")]; exists {
			f.fail(w, "EMAIL_EXISTS")
			return
		}
		if len(str("password")) < 6 {
			f.fail(w, "WEAK_PASSWORD : Password should be at least 6 characters")
			return
		}
		u := &fakeUser{uid: "uid-" + str("email"), email: str("email"), password: str("password")}
		f.users[u.email] = u
		f.issue(w, u)
	case "/v1/accounts:signInWithPassword":
		u, ok := f.users[str("email")]
		if !ok || u.password != str("password") {
			f.fail(w, "INVALID_LOGIN_CREDENTIALS")
			return
		}
		f.issue(w, u)
	case "/v1/accounts:signInWithIdp":
		f.idpBody = str("postBody")
		form, _ := url.ParseQuery(f.idpBody)
		if form.Get("id_token") != "google-token" {
			f.fail(w, "INVALID_IDP_RESPONSE")
			return
		}
		u := &fakeUser{uid: "uid-g", email: "g@example.com", name: "Gee"}
		f.users[u.email] = u
		f.issue(w, u)
	case "/v1/accounts:update":
		u := f.userByToken(str("idToken"))
		if u == nil {
			f.fail(w, "INVALID_ID_TOKEN")
			return
		}
		if v := str("displayName"); v != "" {
			u.name = v
		}
		if v := str("photoUrl"); v != "" {
			u.photo = v
		}
		f.issue(w, u)
	case "/v1/accounts:lookup":
		u := f.userByToken(str("idToken"))
		if u == nil {
			f.fail(w, "INVALID_ID_TOKEN")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"users": []map[string]any{{
			"localId": u.uid, "email": u.email, "displayName": u.name, "photoUrl": u.photo,
		}}})
	default:
		http.NotFound(w, r)
	}
}

type events chan *identity.Principal

func (e events) next(t *testing.T) *identity.Principal {
	t.Helper()
	select {
	case p := <-e:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for state report")
		return nil
	}
}

func newProvider(t *testing.T, srv *httptest.Server, credsPath string, fed Federation) *Provider {
	p := New(Config{
		APIKey:          "test-key",
		Endpoint:        srv.URL,
		TokenEndpoint:   srv.URL,
		CredentialsFile: credsPath,
		Federation:      fed,
	})
	t.Cleanup(p.Close)
	return p
}

// subscribe registers a listener and drains the initial report.
func subscribe(t *testing.T, p *Provider) (events, *identity.Principal) {
	ch := make(events, 16)
	unsub := p.Subscribe(func(pr *identity.Principal) { ch <- pr })
	t.Cleanup(unsub)
	return ch, ch.next(t)
}

func TestInitialReportWithoutStoredSession(t *testing.T) {
	_, srv := newFakeFirebase(t)
	p := newProvider(t, srv, filepath.Join(t.TempDir(), "creds.yaml"), nil)

	_, first := subscribe(t, p)
	assert.Nil(t, first)

	// A late subscriber still gets the known state.
	_, again := subscribe(t, p)
	assert.Nil(t, again)
}

func TestRegisterThenSignIn(t *testing.T) {
	_, srv := newFakeFirebase(t)
	credsPath := filepath.Join(t.TempDir(), "creds.yaml")
	p := newProvider(t, srv, credsPath, nil)
	ch, _ := subscribe(t, p)

	got, err := p.Register(context.Background(), "ann@example.com", "Secret1")
	require.NoError(t, err)
	assert.Equal(t, "uid-ann@example.com", got.UID)
	assert.Equal(t, "ann@example.com", ch.next(t).Email)

	info, err := os.Stat(credsPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, p.SignOut(context.Background()))
	assert.Nil(t, ch.next(t))
	_, err = os.Stat(credsPath)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	got, err = p.SignIn(context.Background(), "ann@example.com", "Secret1")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", got.Email)
	assert.Equal(t, "ann@example.com", ch.next(t).Email)
	assert.Equal(t, "ann@example.com", p.Current().Email)
}

func TestErrorTaxonomy(t *testing.T) {
	_, srv := newFakeFirebase(t)
	p := newProvider(t, srv, "", nil)
	ctx := context.Background()

	_, err := p.Register(ctx, "bob@example.com", "Secret1")
	require.NoError(t, err)

	_, err = p.Register(ctx, "bob@example.com", "Secret1")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentialsFormat)

	_, err = p.Register(ctx, "carl@example.com", "abc")
	assert.ErrorIs(t, err, identity.ErrInvalidCredentialsFormat)

	_, err = p.SignIn(ctx, "bob@example.com", "wrong")
	assert.ErrorIs(t, err, identity.ErrAuthenticationFailed)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "INVALID_LOGIN_CREDENTIALS", apiErr.Reason)
}

func TestRestoreFromStoredCredentials(t *testing.T) {
	f, srv := newFakeFirebase(t)
	credsPath := filepath.Join(t.TempDir(), "creds.yaml")

	first := newProvider(t, srv, credsPath, nil)
	_, err := first.Register(context.Background(), "dee@example.com", "Secret1")
	require.NoError(t, err)
	_, err = first.UpdateProfile(context.Background(), "Dee", "https://img.example.com/dee.png")
	require.NoError(t, err)
	first.Close()

	second := newProvider(t, srv, credsPath, nil)
	_, restored := subscribe(t, second)
	require.NotNil(t, restored)
	assert.Equal(t, "dee@example.com", restored.Email)
	assert.Equal(t, "Dee", restored.DisplayName)
	assert.Equal(t, "https://img.example.com/dee.png", restored.PhotoURL)

	// A revoked refresh token means no session and no stored credentials.
	f.mu.Lock()
	f.rejected = true
	f.mu.Unlock()
	third := newProvider(t, srv, credsPath, nil)
	_, none := subscribe(t, third)
	assert.Nil(t, none)
	_, err = os.Stat(credsPath)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestUpdateProfile(t *testing.T) {
	_, srv := newFakeFirebase(t)
	p := newProvider(t, srv, "", nil)

	_, err := p.UpdateProfile(context.Background(), "Nobody", "")
	assert.ErrorIs(t, err, identity.ErrNotAuthenticated)

	ch, _ := subscribe(t, p)
	_, err = p.Register(context.Background(), "eve@example.com", "Secret1")
	require.NoError(t, err)
	ch.next(t)

	got, err := p.UpdateProfile(context.Background(), "Eve", "https://img.example.com/eve.png")
	require.NoError(t, err)
	assert.Equal(t, "Eve", got.DisplayName)

	reported := ch.next(t)
	assert.Equal(t, "Eve", reported.DisplayName)
	assert.Equal(t, "https://img.example.com/eve.png", reported.PhotoURL)
}

type fakeFederation struct {
	token string
	err   error
}

func (f fakeFederation) ProviderID() string { return "google.com" }

func (f fakeFederation) Authenticate(context.Context) (string, error) { return f.token, f.err }

func TestFederatedSignIn(t *testing.T) {
	f, srv := newFakeFirebase(t)

	t.Run("not configured", func(t *testing.T) {
		p := newProvider(t, srv, "", nil)
		_, err := p.FederatedSignIn(context.Background())
		assert.ErrorIs(t, err, identity.ErrFederationUnavailable)
	})

	t.Run("cancelled", func(t *testing.T) {
		p := newProvider(t, srv, "", fakeFederation{err: identity.ErrAuthenticationCancelled})
		_, err := p.FederatedSignIn(context.Background())
		assert.ErrorIs(t, err, identity.ErrAuthenticationCancelled)
	})

	t.Run("rejected token", func(t *testing.T) {
		p := newProvider(t, srv, "", fakeFederation{token: "forged"})
		_, err := p.FederatedSignIn(context.Background())
		assert.ErrorIs(t, err, identity.ErrAuthenticationFailed)
	})

	t.Run("success", func(t *testing.T) {
		p := newProvider(t, srv, "", fakeFederation{token: "google-token"})
		got, err := p.FederatedSignIn(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "g@example.com", got.Email)
		assert.Equal(t, "Gee", got.DisplayName)

		f.mu.Lock()
		body := f.idpBody
		f.mu.Unlock()
		assert.Contains(t, body, "providerId=google.com")
	})
}

func TestParseAPIError(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantReason string
	}{
		{"identity toolkit", `{"error":{"code":400,"message":"EMAIL_EXISTS"}}`, "EMAIL_EXISTS"},
		{"with detail", `{"error":{"code":400,"message":"WEAK_PASSWORD : Password should be at least 6 characters"}}`, "WEAK_PASSWORD"},
		{"oauth style", `{"error":"invalid_grant","error_description":"INVALID_REFRESH_TOKEN"}`, "INVALID_REFRESH_TOKEN"},
		{"not json", `upstream unavailable`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseAPIError(http.StatusBadRequest, []byte(tt.body))
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.wantReason, apiErr.Reason)
			assert.Equal(t, http.StatusBadRequest, apiErr.Status)
		})
	}
}

func TestPrincipalFromIDToken(t *testing.T) {
	f := &fakeFirebase{}
	raw := f.idToken(&fakeUser{uid: "u1", email: "f@example.com", name: "Eff"})

	p, err := principalFromIDToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UID)
	assert.Equal(t, "Eff", p.DisplayName)

	_, err = principalFromIDToken("not.a.token")
	assert.Error(t, err)
}

func TestCredentialFileMissingIsEmpty(t *testing.T) {
	f := &credentialFile{path: filepath.Join(t.TempDir(), "nested", "creds.yaml")}
	got, err := f.Load()
	require.NoError(t, err)
	assert.Nil(t, got)
	require.NoError(t, f.Remove())

	require.NoError(t, f.Save(storedCredentials{RefreshToken: "rt", Email: "x@example.com"}))
	data, err := os.ReadFile(f.path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "refresh_token: rt"))

	got, err = f.Load()
	require.NoError(t, err)
	assert.Equal(t, "rt", got.RefreshToken)
}
