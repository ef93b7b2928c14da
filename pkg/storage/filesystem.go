package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/architect/pkg/domain"
	"github.com/felixgeelhaar/architect/pkg/domain/review"
	"github.com/felixgeelhaar/fortify/retry"
	"gopkg.in/yaml.v3"
)

const ArchitectDir = ".architect"
const ProfileFile = "profile.yaml"
const EventsFile = "events.jsonl"
const UsageFile = "usage.json"
const SessionsDir = "sessions"
const ArchiveDir = "archive"

type FilesystemRepository struct {
	root        string
	retryConfig retry.Config
}

// Compile-time checks that the repository satisfies the domain contracts.
var (
	_ domain.WorkspaceRepository = (*FilesystemRepository)(nil)
	_ review.Repository          = (*FilesystemRepository)(nil)
)

func NewFilesystemRepository(root string) *FilesystemRepository {
	return &FilesystemRepository{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Root returns the workspace root directory.
func (r *FilesystemRepository) Root() string {
	return r.root
}

// ResolvePath ensures the path is within the .architect directory and
// prevents traversal. Only the known sessions subdirectories may nest.
func (r *FilesystemRepository) ResolvePath(parts ...string) (string, error) {
	if len(parts) == 0 || parts[0] == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}
	for _, p := range parts {
		if p == "" || strings.ContainsAny(p, `/\`) || p == ".." {
			return "", fmt.Errorf("invalid path element: %q", p)
		}
	}

	baseDir := filepath.Join(r.root, ArchitectDir)
	fullPath := filepath.Join(append([]string{baseDir}, parts...)...)
	cleanPath := filepath.Clean(fullPath)

	if !strings.HasPrefix(cleanPath, baseDir) {
		return "", fmt.Errorf("invalid file path: %s", strings.Join(parts, "/"))
	}

	return cleanPath, nil
}

func (r *FilesystemRepository) Initialize() error {
	for _, dir := range [][]string{
		{},
		{SessionsDir},
		{SessionsDir, ArchiveDir},
	} {
		path := filepath.Join(append([]string{r.root, ArchitectDir}, dir...)...)
		// G301: Use 0700 for directories
		if err := os.MkdirAll(path, 0700); err != nil {
			return fmt.Errorf("failed to create %s directory: %w", path, err)
		}
	}
	return nil
}

func (r *FilesystemRepository) IsInitialized() bool {
	_, err := os.Stat(filepath.Join(r.root, ArchitectDir))
	return err == nil
}

func (r *FilesystemRepository) SaveProfile(p *review.Profile) error {
	path, err := r.ResolvePath(ProfileFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	// G306: Use 0600 for files
	return os.WriteFile(path, data, 0600)
}

// LoadProfile reads profile.yaml, falling back to the default profile when
// none has been written yet.
func (r *FilesystemRepository) LoadProfile() (*review.Profile, error) {
	path, err := r.ResolvePath(ProfileFile)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return review.DefaultProfile(), nil
		}
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var p review.Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	return &p, nil
}
