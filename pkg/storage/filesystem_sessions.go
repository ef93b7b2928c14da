package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/architect/pkg/domain/review"
	"github.com/felixgeelhaar/fortify/retry"
)

// SaveSession replaces the whole session document. Partial updates are
// never written so a crashed process cannot leave a half-applied step.
func (r *FilesystemRepository) SaveSession(s *review.Session) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("session must have an id")
	}

	path, err := r.ResolvePath(SessionsDir, s.ID+".json")
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	// G306: Use 0600 for files
	return os.WriteFile(path, data, 0600)
}

func (r *FilesystemRepository) LoadSession(id string) (*review.Session, error) {
	retryer := retry.New[*review.Session](r.retryConfig)

	return retryer.Do(context.Background(), func(ctx context.Context) (*review.Session, error) {
		path, err := r.ResolvePath(SessionsDir, id+".json")
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("session %s not found", id)
			}
			return nil, fmt.Errorf("failed to read session: %w", err)
		}

		var s review.Session
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session: %w", err)
		}

		return &s, nil
	})
}

// ListSessions returns the ids of non-archived sessions.
func (r *FilesystemRepository) ListSessions() ([]string, error) {
	dir := filepath.Join(r.root, ArchitectDir, SessionsDir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}

	return ids, nil
}

// ArchiveSession moves a session document into sessions/archive so it no
// longer shows up as resumable.
func (r *FilesystemRepository) ArchiveSession(id string) error {
	src, err := r.ResolvePath(SessionsDir, id+".json")
	if err != nil {
		return err
	}
	dst, err := r.ResolvePath(SessionsDir, ArchiveDir, id+".json")
	if err != nil {
		return err
	}

	if err := os.Rename(src, dst); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("session %s not found", id)
		}
		return fmt.Errorf("failed to archive session: %w", err)
	}

	return nil
}
