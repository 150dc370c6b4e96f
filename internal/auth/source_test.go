package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCredentials(t *testing.T, dir, accessToken string) {
	t.Helper()
	inner, _ := json.Marshal(map[string]string{"access_token": accessToken})
	outer, _ := json.Marshal(map[string]string{"workos_tokens": string(inner)})
	if err := os.WriteFile(filepath.Join(dir, credentialsFile), outer, 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestToken_ReadsNestedLayout(t *testing.T) {
	dir := t.TempDir()
	writeCredentials(t, dir, "tok-123")

	s := NewFileSource(dir)
	got, err := s.Token()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "tok-123" {
		t.Errorf("token = %q, want tok-123", got)
	}
}

func TestToken_CachedUntilInvalidated(t *testing.T) {
	dir := t.TempDir()
	writeCredentials(t, dir, "first")

	s := NewFileSource(dir)
	if _, err := s.Token(); err != nil {
		t.Fatal(err)
	}

	writeCredentials(t, dir, "second")
	got, err := s.Token()
	if err != nil {
		t.Fatal(err)
	}
	if got != "first" {
		t.Errorf("token = %q, want cached first", got)
	}

	s.invalidate()
	got, err = s.Token()
	if err != nil {
		t.Fatal(err)
	}
	if got != "second" {
		t.Errorf("token = %q, want second after invalidate", got)
	}
}

func TestToken_MissingFile(t *testing.T) {
	s := NewFileSource(t.TempDir())
	_, err := s.Token()
	if err == nil {
		t.Fatal("expected error for missing credentials file")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestToken_MissingWorkOSTokens(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, credentialsFile), []byte(`{}`), 0o600); err != nil {
		t.Fatal(err)
	}
	s := NewFileSource(dir)
	_, err := s.Token()
	if err == nil || !strings.Contains(err.Error(), "workos_tokens") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestToken_MissingAccessToken(t *testing.T) {
	dir := t.TempDir()
	outer, _ := json.Marshal(map[string]string{"workos_tokens": `{"refresh_token": "x"}`})
	if err := os.WriteFile(filepath.Join(dir, credentialsFile), outer, 0o600); err != nil {
		t.Fatal(err)
	}
	s := NewFileSource(dir)
	_, err := s.Token()
	if err == nil || !strings.Contains(err.Error(), "access_token") {
		t.Errorf("unexpected error: %v", err)
	}
}
