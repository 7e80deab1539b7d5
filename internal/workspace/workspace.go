package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"execmany/internal/fileutil"
	"execmany/internal/logging"
	"execmany/internal/services"
	"execmany/internal/textutil"
)

const (
	mediaPackageDir = "mediapackage"
	collectionDir   = "collection"
	lockFileName    = ".lock"
	lockRetryDelay  = 25 * time.Millisecond
)

// Workspace resolves and relocates files below a root directory.
type Workspace struct {
	root   string
	logger *slog.Logger
}

// New returns a workspace rooted at root, creating the directory.
func New(root string, logger *slog.Logger) (*Workspace, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, services.Wrap(services.ErrConfiguration, "workspace", "init", "workspace root is empty", nil)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workspace", "init", "resolve root", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, services.Wrap(services.ErrStorage, "workspace", "init", "create root", err)
	}
	return &Workspace{root: abs, logger: logging.NewComponentLogger(logger, "workspace")}, nil
}

// Root returns the workspace root directory.
func (w *Workspace) Root() string {
	return w.root
}

// CollectionsDir returns the directory holding every staging collection.
func (w *Workspace) CollectionsDir() string {
	return filepath.Join(w.root, collectionDir)
}

// ToURI converts a local path into a file:// URI.
func ToURI(path string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

// LocalPath converts a file:// URI or absolute path into a local path.
func LocalPath(uri string) (string, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return "", errors.New("empty uri")
	}
	if filepath.IsAbs(uri) {
		return filepath.Clean(uri), nil
	}
	parsed, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parse uri %q: %w", uri, err)
	}
	if parsed.Scheme != "file" {
		return "", fmt.Errorf("unsupported uri scheme %q", parsed.Scheme)
	}
	if parsed.Host != "" && parsed.Host != "localhost" {
		return "", fmt.Errorf("uri %q names a remote host", uri)
	}
	return filepath.Clean(filepath.FromSlash(parsed.Path)), nil
}

// Get resolves uri to an existing local file.
func (w *Workspace) Get(_ context.Context, uri string) (string, error) {
	path, err := LocalPath(uri)
	if err != nil {
		return "", services.Wrap(services.ErrStorage, "workspace", "get", "invalid uri", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", services.Wrap(services.ErrNotFound, "workspace", "get", path, err)
		}
		return "", services.Wrap(services.ErrStorage, "workspace", "get", path, err)
	}
	if info.IsDir() {
		return "", services.Wrap(services.ErrStorage, "workspace", "get", path+" is a directory", nil)
	}
	return path, nil
}

// ElementPath returns where an element file lives inside the package namespace.
func (w *Workspace) ElementPath(mediaPackageID, elementID, filename string) string {
	return filepath.Join(w.root, mediaPackageDir,
		textutil.SanitizeFileName(mediaPackageID),
		textutil.SanitizeFileName(elementID),
		filename)
}

// MoveTo relocates the file at uri into the package namespace and returns the
// new URI. An empty filename keeps the source base name.
func (w *Workspace) MoveTo(ctx context.Context, uri, mediaPackageID, elementID, filename string) (string, error) {
	if strings.TrimSpace(mediaPackageID) == "" || strings.TrimSpace(elementID) == "" {
		return "", services.Wrap(services.ErrStorage, "workspace", "move", "mediapackage and element ids are required", nil)
	}
	src, err := w.Get(ctx, uri)
	if err != nil {
		return "", err
	}
	name := textutil.SanitizeFileName(filename)
	if name == "" {
		name = filepath.Base(src)
	}
	dst := w.ElementPath(mediaPackageID, elementID, name)

	packageDir := filepath.Join(w.root, mediaPackageDir, textutil.SanitizeFileName(mediaPackageID))
	if err := os.MkdirAll(packageDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrStorage, "workspace", "move", "create package directory", err)
	}
	lock := flock.New(filepath.Join(packageDir, lockFileName))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		return "", services.Wrap(services.ErrStorage, "workspace", "move", "lock "+packageDir, err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	if src != dst {
		if err := fileutil.MoveFile(src, dst); err != nil {
			return "", services.Wrap(services.ErrStorage, "workspace", "move", src+" -> "+dst, err)
		}
	}
	w.logger.Debug("file moved into mediapackage",
		logging.String(logging.FieldMediaPackageID, mediaPackageID),
		logging.String(logging.FieldElementID, elementID),
		logging.String("path", dst),
	)
	return ToURI(dst), nil
}

// CollectionPath returns the local path of filename in collection.
func (w *Workspace) CollectionPath(collection, filename string) string {
	return filepath.Join(w.CollectionsDir(), textutil.SanitizeToken(collection), textutil.SanitizeFileName(filename))
}

// DeleteStaged removes the staged file at uri. The file must live in a
// staging collection and must still exist.
func (w *Workspace) DeleteStaged(_ context.Context, uri string) error {
	if _, _, ok := w.CollectionOf(uri); !ok {
		return services.Wrap(services.ErrStorage, "workspace", "delete",
			fmt.Sprintf("%s is not in a staging collection", uri), nil)
	}
	path, err := LocalPath(uri)
	if err != nil {
		return services.Wrap(services.ErrStorage, "workspace", "delete", "invalid uri", err)
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return services.Wrap(services.ErrNotFound, "workspace", "delete", path, err)
		}
		return services.Wrap(services.ErrStorage, "workspace", "delete", path, err)
	}
	return nil
}

// CollectionOf reports the collection and filename for a path inside the
// staging area.
func (w *Workspace) CollectionOf(uri string) (collection, filename string, ok bool) {
	path, err := LocalPath(uri)
	if err != nil {
		return "", "", false
	}
	rel, err := filepath.Rel(w.CollectionsDir(), path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", "", false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
