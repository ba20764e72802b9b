package authapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"courtside/cmd/credential"
	"courtside/cmd/internal/auth/session"
	"courtside/cmd/security/password"
)

func testHasher() password.Config {
	return password.Config{
		Params: password.Params{
			MemoryKiB:   8 * 1024,
			Iterations:  1,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   32,
		},
		MinLength: 8,
		MaxLength: 1024,
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *credential.MemoryStore) {
	t.Helper()

	store := credential.NewMemoryStore()
	sessCfg := session.DefaultConfig()
	sessCfg.SigningKey = "0123456789abcdef0123456789abcdef"
	sessions, err := session.NewService(sessCfg, store, testHasher())
	if err != nil {
		t.Fatalf("session.NewService: %v", err)
	}

	h, err := NewHandler(nil, DefaultConfig(), sessions, nil)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	mux := http.NewServeMux()
	h.Register(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, store
}

func seedUser(t *testing.T, store *credential.MemoryStore, username, pass string) credential.Record {
	t.Helper()
	hash, err := testHasher().Hash(pass)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	rec, err := store.Insert(credential.Record{
		Username:     username,
		PasswordHash: hash,
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	return rec
}

func postJSON(t *testing.T, client *http.Client, url, body string, header http.Header) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	return resp.StatusCode, data
}

func login(t *testing.T, ts *httptest.Server, username, pass string) tokenResponse {
	t.Helper()
	body, err := json.Marshal(loginRequest{Username: username, Password: pass})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	status, data := postJSON(t, ts.Client(), ts.URL+"/auth/login", string(body), nil)
	if status != http.StatusOK {
		t.Fatalf("login: expected 200, got %d body=%s", status, data)
	}
	var pair tokenResponse
	if err := json.Unmarshal(data, &pair); err != nil {
		t.Fatalf("decode tokenResponse: %v", err)
	}
	return pair
}

func TestLoginSuccess(t *testing.T) {
	ts, store := newTestServer(t)
	seedUser(t, store, "alice", "Very-Strong-1!")

	pair := login(t, ts, "alice", "Very-Strong-1!")
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected non-empty token pair, got %+v", pair)
	}
}

func TestLoginFailureNoEnumeration(t *testing.T) {
	ts, store := newTestServer(t)
	seedUser(t, store, "alice", "Very-Strong-1!")

	cases := []struct {
		name string
		body string
	}{
		{"unknown user", `{"username":"mallory","password":"Very-Strong-1!"}`},
		{"wrong password", `{"username":"alice","password":"Wrong-Password-1!"}`},
	}

	var bodies []string
	for _, tc := range cases {
		status, data := postJSON(t, ts.Client(), ts.URL+"/auth/login", tc.body, nil)
		if status != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d body=%s", tc.name, status, data)
		}
		var resp messageResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if resp.Message != msgInvalidCredentials {
			t.Fatalf("%s: unexpected message %q", tc.name, resp.Message)
		}
		bodies = append(bodies, string(bytes.TrimSpace(data)))
	}
	if bodies[0] != bodies[1] {
		t.Fatalf("unauthorized bodies must be identical: %q vs %q", bodies[0], bodies[1])
	}
}

func TestLoginBadRequests(t *testing.T) {
	ts, store := newTestServer(t)
	seedUser(t, store, "alice", "Very-Strong-1!")

	cases := []struct {
		name string
		body string
	}{
		{"malformed JSON", `{"username":`},
		{"unknown field", `{"username":"alice","password":"x","captcha":"y"}`},
		{"missing password", `{"username":"alice"}`},
		{"missing username", `{"password":"Very-Strong-1!"}`},
		{"trailing data", `{"username":"alice","password":"x"}{}`},
	}
	for _, tc := range cases {
		status, data := postJSON(t, ts.Client(), ts.URL+"/auth/login", tc.body, nil)
		if status != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d body=%s", tc.name, status, data)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, path := range []string{"/auth/login", "/auth/refresh", "/auth/logout"} {
		resp, err := ts.Client().Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Fatalf("GET %s: expected 405, got %d", path, resp.StatusCode)
		}
	}
}

func TestRefreshRotation(t *testing.T) {
	ts, store := newTestServer(t)
	seedUser(t, store, "alice", "Very-Strong-1!")

	first := login(t, ts, "alice", "Very-Strong-1!")

	body, _ := json.Marshal(refreshRequest{RefreshToken: first.RefreshToken})
	status, data := postJSON(t, ts.Client(), ts.URL+"/auth/refresh", string(body), nil)
	if status != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d body=%s", status, data)
	}
	var second tokenResponse
	if err := json.Unmarshal(data, &second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if second.RefreshToken == "" || second.RefreshToken == first.RefreshToken {
		t.Fatal("refresh must return a fresh rotated token")
	}

	// The consumed token is gone.
	status, data = postJSON(t, ts.Client(), ts.URL+"/auth/refresh", string(body), nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("replay: expected 401, got %d body=%s", status, data)
	}
	var resp messageResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != msgInvalidRefresh {
		t.Fatalf("unexpected message %q", resp.Message)
	}
}

func TestLogout(t *testing.T) {
	ts, store := newTestServer(t)
	seedUser(t, store, "alice", "Very-Strong-1!")

	pair := login(t, ts, "alice", "Very-Strong-1!")

	header := http.Header{"Authorization": []string{"Bearer " + pair.AccessToken}}
	status, data := postJSON(t, ts.Client(), ts.URL+"/auth/logout", "", header)
	if status != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d body=%s", status, data)
	}

	// The refresh secret is revoked.
	body, _ := json.Marshal(refreshRequest{RefreshToken: pair.RefreshToken})
	status, _ = postJSON(t, ts.Client(), ts.URL+"/auth/refresh", string(body), nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("refresh after logout: expected 401, got %d", status)
	}

	// Logging out again is still a 204.
	status, _ = postJSON(t, ts.Client(), ts.URL+"/auth/logout", "", header)
	if status != http.StatusNoContent {
		t.Fatalf("second logout: expected 204, got %d", status)
	}
}

func TestLogoutRequiresBearer(t *testing.T) {
	ts, _ := newTestServer(t)

	cases := []struct {
		name   string
		header http.Header
	}{
		{"no header", nil},
		{"wrong scheme", http.Header{"Authorization": []string{"Basic abc"}}},
		{"garbage token", http.Header{"Authorization": []string{"Bearer not-a-token"}}},
	}
	for _, tc := range cases {
		status, data := postJSON(t, ts.Client(), ts.URL+"/auth/logout", "", tc.header)
		if status != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d body=%s", tc.name, status, data)
		}
	}
}
