package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

// ErrInvalidIdentity is returned for identities that cannot name a file.
var ErrInvalidIdentity = errors.New("invalid identity")

// Manager centralizes where ledgers, archives and logs live on disk and how
// files are named.
type Manager struct {
	basePath string
}

// NewManager constructs a Manager rooted at the provided directory. If basePath
// is empty, it falls back to ~/.bridgelog (or another location determined by
// ResolveBasePath).
func NewManager(basePath string) (*Manager, error) {
	var err error
	if basePath == "" {
		basePath, err = ResolveBasePath()
		if err != nil {
			return nil, err
		}
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, err
	}

	return &Manager{basePath: abs}, nil
}

// BasePath returns the root data directory.
func (m *Manager) BasePath() string {
	return m.basePath
}

// ConfigPath is the optional YAML configuration file.
func (m *Manager) ConfigPath() string {
	return filepath.Join(m.basePath, "config.yaml")
}

// LogPath is where the TUI writes its diagnostics.
func (m *Manager) LogPath() string {
	return filepath.Join(m.basePath, "bridgelog.log")
}

// SQLitePath is the default database file of the sqlite store.
func (m *Manager) SQLitePath() string {
	return filepath.Join(m.basePath, "bridgelog.db")
}

var identityPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._@-]*$`)

// StatePath resolves the JSON ledger of identity.
func (m *Manager) StatePath(identity string) (string, error) {
	identity = strings.TrimSpace(identity)
	if !identityPattern.MatchString(identity) || strings.Contains(identity, "..") {
		return "", fmt.Errorf("%w %q", ErrInvalidIdentity, identity)
	}
	return filepath.Join(m.basePath, "state", identity+".json"), nil
}

// ArchivePath resolves the absolute path to the Markdown archive for the month of t.
// The file may not exist yet; callers can choose to create it.
func (m *Manager) ArchivePath(t time.Time) string {
	yearDir := filepath.Join(m.basePath, "archive", fmt.Sprintf("%04d", t.Year()))
	return filepath.Join(yearDir, fmt.Sprintf("%04d-%02d.md", t.Year(), t.Month()))
}

// EnsureArchiveFile guarantees the directory tree exists and the month file is
// present with the expected heading. It returns the absolute path to the file.
func (m *Manager) EnsureArchiveFile(t time.Time) (string, error) {
	if m == nil {
		return "", errors.New("files.Manager is nil")
	}

	path := m.ArchivePath(t)
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return "", fmt.Errorf("create directories: %w", err)
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, filePermissions)
	if err != nil {
		return "", fmt.Errorf("open archive file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("stat archive file: %w", err)
	}

	if info.Size() == 0 {
		if _, err := file.WriteString(monthHeader(t)); err != nil {
			return "", fmt.Errorf("write month header: %w", err)
		}
	}

	return path, nil
}

func monthHeader(t time.Time) string {
	return fmt.Sprintf("# %s %04d\n\n", t.Month().String(), t.Year())
}

// WriteFileAtomic replaces path with data through a temp file in the same
// directory, keeping the mode of an existing file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	temp, err := os.CreateTemp(dir, ".bridgelog-*")
	if err != nil {
		return err
	}
	defer os.Remove(temp.Name())

	if _, err := temp.Write(data); err != nil {
		temp.Close()
		return err
	}
	if err := temp.Sync(); err != nil {
		temp.Close()
		return err
	}
	if err := temp.Close(); err != nil {
		return err
	}

	mode := os.FileMode(filePermissions)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	if err := os.Chmod(temp.Name(), mode); err != nil {
		return err
	}

	return os.Rename(temp.Name(), path)
}
