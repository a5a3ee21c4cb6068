package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"sync"
	"time"
)

// Filename is the receipt written into the installed plugin directory.
const Filename = ".clipabit-receipt.json"

// filePermissions restricts the receipt to the installing user.
const filePermissions = 0o600

// Actor identifies who performed the installation.
type Actor struct {
	// Hostname is the machine the plugin was installed on.
	Hostname string `json:"hostname"`
	// Username is the system user who ran the installer.
	Username string `json:"username"`
}

// Receipt records one completed installation. The installer writes it as the
// final step so later runs can report what they are replacing.
type Receipt struct {
	// Name is the installed plugin name.
	Name string `json:"name"`
	// Version is the installed release version.
	Version string `json:"version"`
	// Identifier is the reverse-domain package identifier.
	Identifier string `json:"identifier"`
	// InstallPath is where the plugin files were placed.
	InstallPath string `json:"install_path"`
	// InstalledAt is when the installation finished.
	InstalledAt time.Time `json:"installed_at"`
	// InstalledBy records who performed the installation.
	InstalledBy *Actor `json:"installed_by,omitempty"`
}

// Repository defines persistence operations for installation receipts.
type Repository interface {
	Load(ctx context.Context) (*Receipt, error)
	Save(ctx context.Context, r *Receipt) error
}

// FileRepository persists the receipt to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the receipt file.
	path string
	// mu protects concurrent access to the receipt file.
	mu sync.Mutex
}

// ErrNotFound is returned when no receipt has been written yet.
var ErrNotFound = errors.New("receipt not found")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the receipt from disk.
func (r *FileRepository) Load(_ context.Context) (*Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read receipt: %w", err)
	}

	var rec Receipt
	if err = json.Unmarshal(contents, &rec); err != nil {
		return nil, fmt.Errorf("decode receipt: %w", err)
	}

	return &rec, nil
}

// Save writes the receipt to disk.
func (r *FileRepository) Save(_ context.Context, rec *Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}

	if err = os.WriteFile(r.path, data, filePermissions); err != nil {
		return fmt.Errorf("write receipt: %w", err)
	}

	return nil
}

// DetectActor gathers host and user information for the receipt.
func DetectActor() (*Actor, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	return &Actor{
		Hostname: hostname,
		Username: currentUser.Username,
	}, nil
}
