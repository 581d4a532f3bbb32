// Package blob is the file storage surface behind the knowledge base:
// list, upload, download, remove, and public URLs for stored objects.
package blob

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo describes one stored object.
type FileInfo struct {
	Name      string    `json:"file_name"`
	Path      string    `json:"file_url"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is the blob storage contract. The default implementation is a
// local directory; a hosted object store can be swapped in behind the
// same interface.
type Store interface {
	List(prefix string) ([]FileInfo, error)
	Upload(objectPath string, r io.Reader) error
	Download(objectPath string) ([]byte, error)
	Remove(objectPath string) error
	PublicURL(objectPath string) string
}

// LocalStore keeps objects under a root directory and serves them at a
// URL prefix (the API mounts the root at /files/).
type LocalStore struct {
	root      string
	urlPrefix string
}

// NewLocalStore creates a LocalStore rooted at dir. urlPrefix is
// prepended to object paths by PublicURL.
func NewLocalStore(dir, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob root: %w", err)
	}
	return &LocalStore{root: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Root returns the store's root directory.
func (s *LocalStore) Root() string { return s.root }

// resolve maps an object path to a filesystem path, rejecting traversal
// outside the root.
func (s *LocalStore) resolve(objectPath string) (string, error) {
	clean := path.Clean("/" + objectPath)
	if clean == "/" {
		return "", fmt.Errorf("empty object path")
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// List returns the objects directly under prefix, sorted by name.
func (s *LocalStore) List(prefix string) ([]FileInfo, error) {
	dir := s.root
	if prefix != "" {
		var err error
		if dir, err = s.resolve(prefix); err != nil {
			return nil, err
		}
	}

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing %q: %w", prefix, err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		objectPath := e.Name()
		if prefix != "" {
			objectPath = path.Join(prefix, e.Name())
		}
		files = append(files, FileInfo{
			Name:      e.Name(),
			Path:      objectPath,
			Size:      info.Size(),
			UpdatedAt: info.ModTime().UTC(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Upload stores the reader's content at objectPath, creating parent
// directories as needed.
func (s *LocalStore) Upload(objectPath string, r io.Reader) error {
	dst, err := s.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %q: %w", objectPath, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("writing %q: %w", objectPath, err)
	}
	return f.Close()
}

// Download returns the content stored at objectPath.
func (s *LocalStore) Download(objectPath string) ([]byte, error) {
	src, err := s.resolve(objectPath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", objectPath, err)
	}
	return data, nil
}

// Remove deletes the object at objectPath. Removing a missing object is
// not an error.
func (s *LocalStore) Remove(objectPath string) error {
	dst, err := s.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %q: %w", objectPath, err)
	}
	return nil
}

// PublicURL returns the URL the object is served at.
func (s *LocalStore) PublicURL(objectPath string) string {
	return s.urlPrefix + "/" + strings.TrimLeft(objectPath, "/")
}
