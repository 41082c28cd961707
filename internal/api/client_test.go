package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{BaseURL: server.URL, AuthToken: "test-token"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	return client
}

func TestGetProfileDecodesEnvelope(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/profile" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Fatalf("unexpected authorization header: %q", got)
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"u1","email":"a@x.com","displayName":"Alice","plan":"pro","totpEnabled":true}}`))
	}))

	profile, err := client.GetProfile(context.Background())
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.ID != "u1" || profile.Email != "a@x.com" || !profile.TOTPEnabled {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestServerFailureSurfacesMessage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":"email already in use"}`))
	}))

	_, err := client.InitiateEmailChange(context.Background(), "b@x.com")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if apiErr.Message != "email already in use" {
		t.Fatalf("unexpected message: %q", apiErr.Message)
	}
}

func TestServerFailureWithoutMessageUsesFallback(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":false}`))
	}))

	err := client.Logout(context.Background())
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Error() != genericErrorMessage {
		t.Fatalf("unexpected fallback: %q", apiErr.Error())
	}
}

func TestGetSessionsCarriesCurrentSessionID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("page") != "2" || query.Get("pageSize") != "5" || query.Get("showRevoked") != "true" {
			t.Fatalf("unexpected query: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{
			"sessions":[{"id":"s1","ipAddress":"10.0.0.1","isCurrent":false}],
			"pagination":{"page":2,"totalPages":3,"total":11},
			"currentSessionId":"s9"}}`))
	}))

	list, err := client.GetSessions(context.Background(), 2, 5, true)
	if err != nil {
		t.Fatalf("get sessions: %v", err)
	}
	if list.CurrentSessionID != "s9" {
		t.Fatalf("unexpected current session id: %q", list.CurrentSessionID)
	}
	if list.Sessions.Page != 2 || list.Sessions.Total != 11 || len(list.Sessions.Items) != 1 {
		t.Fatalf("unexpected page: %+v", list.Sessions)
	}
}

func TestExportSecurityEventsCSVReturnsRawBody(t *testing.T) {
	csv := "id,type,status\n1,login,success\n"
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") != "csv" {
			t.Fatalf("expected csv format, got %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(csv))
	}))

	raw, err := client.ExportSecurityEventsCSV(context.Background(), 10000)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if string(raw) != csv {
		t.Fatalf("unexpected body: %q", string(raw))
	}
}

func TestVerifyPasswordNeverSendsPlaintext(t *testing.T) {
	const password = "hunter2-secret"
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/auth/password/challenge":
			_, _ = w.Write([]byte(`{"success":true,"data":{"challengeId":"c1","nonce":"n1"}}`))
		case "/v1/auth/password/verify":
			var body [1 << 12]byte
			n, _ := r.Body.Read(body[:])
			if strings.Contains(string(body[:n]), password) {
				t.Fatal("plaintext password crossed the wire")
			}
			_, _ = w.Write([]byte(`{"success":true,"data":{}}`))
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))

	if err := client.VerifyPassword(context.Background(), password); err != nil {
		t.Fatalf("verify password: %v", err)
	}
}

func TestUploadAvatarSendsContentHash(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Content-Hash") == "" {
			t.Fatal("missing content hash header")
		}
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Fatalf("unexpected content type: %q", r.Header.Get("Content-Type"))
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"avatarUrl":"https://cdn/x.png"}}`))
	}))

	avatarURL, err := client.UploadAvatar(context.Background(), "avatar.png", []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if avatarURL != "https://cdn/x.png" {
		t.Fatalf("unexpected avatar url: %q", avatarURL)
	}
}
