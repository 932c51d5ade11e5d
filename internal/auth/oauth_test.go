package auth

import (
	"net/url"
	"testing"
)

func TestGitHubProvider_AuthURL(t *testing.T) {
	p := NewGitHubProvider("client-id", "client-secret", "http://localhost:8080/auth/github/callback", "")

	u, err := url.Parse(p.AuthURL("state-123"))
	if err != nil {
		t.Fatalf("AuthURL() is not a URL: %v", err)
	}
	if u.Host != "github.com" {
		t.Errorf("host = %q, want github.com", u.Host)
	}
	q := u.Query()
	if q.Get("client_id") != "client-id" {
		t.Errorf("client_id = %q", q.Get("client_id"))
	}
	if q.Get("state") != "state-123" {
		t.Errorf("state = %q, want state-123", q.Get("state"))
	}
	if q.Get("redirect_uri") != "http://localhost:8080/auth/github/callback" {
		t.Errorf("redirect_uri = %q", q.Get("redirect_uri"))
	}
}

func TestGitHubProvider_UserURL(t *testing.T) {
	if p := NewGitHubProvider("id", "secret", "cb", ""); p.userURL != DefaultUserURL {
		t.Errorf("default userURL = %q, want %q", p.userURL, DefaultUserURL)
	}
	if p := NewGitHubProvider("id", "secret", "cb", "https://ghe.example.com/api/v3/"); p.userURL != "https://ghe.example.com/api/v3/user" {
		t.Errorf("enterprise userURL = %q", p.userURL)
	}
}

func TestGitHubProvider_Configured(t *testing.T) {
	if NewGitHubProvider("", "", "cb", "").Configured() {
		t.Error("Configured() = true without credentials")
	}
	if !NewGitHubProvider("id", "secret", "cb", "").Configured() {
		t.Error("Configured() = false with credentials")
	}
}
