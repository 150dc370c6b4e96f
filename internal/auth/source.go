// Package auth reads the WorkOS access token from Granola's local
// application data and keeps it fresh while the app rotates it.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// credentialsFile is the name Granola uses for its local token store.
const credentialsFile = "supabase.json"

// FileSource reads bearer tokens from Granola's local storage directory.
// The token is cached after the first read; Watch invalidates the cache
// whenever the credentials file changes.
type FileSource struct {
	dir string

	mu    sync.Mutex
	token string
}

// NewFileSource creates a FileSource rooted at the Granola data directory.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// Token returns the current access token, reading it from disk on first
// use or after invalidation.
func (s *FileSource) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" {
		return s.token, nil
	}
	token, err := readToken(filepath.Join(s.dir, credentialsFile))
	if err != nil {
		return "", err
	}
	s.token = token
	return token, nil
}

// invalidate drops the cached token so the next Token call re-reads disk.
func (s *FileSource) invalidate() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

// Watch invalidates the cached token when the credentials file changes.
// Granola rotates the WorkOS token periodically; without the watcher a
// long-running server would keep using a revoked token. Blocks until ctx
// is cancelled.
func (s *FileSource) Watch(ctx context.Context, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("auth: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("auth: watch %s: %w", s.dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != credentialsFile {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				logger.Info("credentials file changed, refreshing token",
					slog.String("op", event.Op.String()))
				s.invalidate()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("credentials watcher error", slog.String("error", err.Error()))
		}
	}
}

// readToken parses the nested token layout Granola writes: the file holds
// a JSON object whose "workos_tokens" value is itself a JSON-encoded
// string containing "access_token".
func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("auth: credentials file not found at %s (is Granola installed and authenticated?)", path)
		}
		return "", fmt.Errorf("auth: read credentials: %w", err)
	}

	var outer struct {
		WorkOSTokens string `json:"workos_tokens"`
	}
	if err := json.Unmarshal(data, &outer); err != nil {
		return "", fmt.Errorf("auth: parse credentials file: %w", err)
	}
	if outer.WorkOSTokens == "" {
		return "", fmt.Errorf("auth: no workos_tokens in credentials file")
	}

	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal([]byte(outer.WorkOSTokens), &tokens); err != nil {
		return "", fmt.Errorf("auth: parse workos_tokens: %w", err)
	}
	if tokens.AccessToken == "" {
		return "", fmt.Errorf("auth: no access_token in workos_tokens")
	}
	return tokens.AccessToken, nil
}
