package linkedfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/figpreorders/figorders/pkg/config"
	"github.com/figpreorders/figorders/pkg/enums"
	pkgerrors "github.com/figpreorders/figorders/pkg/errors"
)

// Handle is a granted read-write link between a collection and a file.
// Handles live only in memory.
type Handle struct {
	Kind     enums.CollectionKind `json:"kind"`
	Path     string               `json:"path"`
	LinkedAt time.Time            `json:"linkedAt"`
}

// Adapter opens, reads and atomically rewrites linked files under a root directory.
type Adapter struct {
	enabled bool
	root    string
	now     func() time.Time
	rename  func(oldpath, newpath string) error
}

// New resolves the link root. A disabled adapter refuses every link so callers
// fall back to export and import.
func New(cfg config.LinkConfig) (*Adapter, error) {
	a := &Adapter{enabled: cfg.Enabled, now: time.Now, rename: os.Rename}
	if !cfg.Enabled {
		return a, nil
	}
	root := cfg.Root
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve link root: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve link root %q: %w", abs, err)
	}
	a.root = resolved
	return a, nil
}

// Enabled reports whether linking is available.
func (a *Adapter) Enabled() bool { return a.enabled }

// Root returns the directory linked files must live under.
func (a *Adapter) Root() string { return a.root }

// Link verifies that path is an existing regular file under the root that
// can be opened read-write, and returns a handle for kind.
func (a *Adapter) Link(_ context.Context, kind enums.CollectionKind, path string) (Handle, error) {
	if !a.enabled {
		return Handle{}, pkgerrors.New(pkgerrors.CodeUnsupported, "file linking is not available; use export and import")
	}
	if !kind.IsValid() {
		return Handle{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown collection").
			WithDetails(map[string]string{"kind": string(kind)})
	}
	if strings.TrimSpace(path) == "" {
		return Handle{}, pkgerrors.New(pkgerrors.CodeValidation, "path is required").
			WithDetails(map[string]string{"path": "is required"})
	}

	resolved, err := a.resolve(path)
	if err != nil {
		return Handle{}, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return Handle{}, classify(err, "stat linked file")
	}
	if !info.Mode().IsRegular() {
		return Handle{}, pkgerrors.New(pkgerrors.CodeValidation, "linked path must be a regular file").
			WithDetails(map[string]string{"path": path})
	}
	f, err := os.OpenFile(resolved, os.O_RDWR, 0)
	if err != nil {
		return Handle{}, classify(err, "open linked file")
	}
	_ = f.Close()

	return Handle{Kind: kind, Path: resolved, LinkedAt: a.now().UTC()}, nil
}

func (a *Adapter) resolve(path string) (string, error) {
	candidate := path
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(a.root, candidate)
	}
	resolved, err := filepath.EvalSymlinks(filepath.Clean(candidate))
	if err != nil {
		return "", classify(err, "resolve linked file")
	}
	rel, err := filepath.Rel(a.root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", pkgerrors.New(pkgerrors.CodePermissionDenied, "linked file must live under the link root").
			WithDetails(map[string]string{"path": path})
	}
	return resolved, nil
}

// Read returns the raw file content.
func (a *Adapter) Read(_ context.Context, h Handle) ([]byte, error) {
	data, err := os.ReadFile(h.Path)
	if err != nil {
		return nil, classify(err, "read linked file")
	}
	return data, nil
}

// Load reads h and decodes it as a JSON array. Malformed content or a non-array
// top level yields an empty collection together with a MALFORMED_INPUT error
// that callers log and otherwise ignore.
func Load[T any](ctx context.Context, a *Adapter, h Handle) ([]T, error) {
	data, err := a.Read(ctx, h)
	if err != nil {
		return []T{}, err
	}
	out, err := DecodeArray[T](data)
	if err != nil {
		return []T{}, err
	}
	return out, nil
}

// DecodeArray parses data whose top level must be a JSON array. Every element
// must decode into T; a null element rejects the whole document.
func DecodeArray[T any](data []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, pkgerrors.New(pkgerrors.CodeMalformedInput, "document top level must be a JSON array")
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeMalformedInput, err, "document is not valid JSON")
	}
	out := make([]T, 0, len(raw))
	for i, elem := range raw {
		if bytes.Equal(bytes.TrimSpace(elem), []byte("null")) {
			return nil, pkgerrors.New(pkgerrors.CodeMalformedInput, "document contains a null element").
				WithDetails(map[string]any{"index": i})
		}
		var item T
		if err := json.Unmarshal(elem, &item); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeMalformedInput, err, "document element has the wrong shape").
				WithDetails(map[string]any{"index": i})
		}
		out = append(out, item)
	}
	return out, nil
}

// Commit pretty-prints value and replaces the file content atomically: the
// JSON goes to a temp file in the same directory which is synced and renamed
// over the target.
func (a *Adapter) Commit(_ context.Context, h Handle, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode linked file")
	}

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(h.Path); err == nil {
		mode = info.Mode().Perm()
	}

	dir, base := filepath.Split(h.Path)
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return classify(err, "create temp file")
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return classify(err, "write temp file")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return classify(err, "sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return classify(err, "close temp file")
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return classify(err, "chmod temp file")
	}
	if err := a.rename(tmpPath, h.Path); err != nil {
		return classify(err, "replace linked file")
	}
	committed = true
	return nil
}

func classify(err error, message string) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, message)
	case errors.Is(err, fs.ErrPermission), errors.Is(err, syscall.EROFS):
		return pkgerrors.Wrap(pkgerrors.CodePermissionDenied, err, message)
	case errors.Is(err, syscall.ENOSPC):
		return pkgerrors.Wrap(pkgerrors.CodeStorageExhausted, err, message)
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
	}
}
