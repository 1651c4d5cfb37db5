package filesystem

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"edge/internal/domain/entity"
	"edge/internal/domain/repository"
)

const indexDocument = "index.html"

type SiteRepository struct {
	basePath  string
	available bool
}

var _ repository.SiteRepository = SiteRepository{}

// NewSiteRepository checks the static root once. A missing root is not an
// error: the repository stays usable and every lookup reports not found.
func NewSiteRepository(basePath string) SiteRepository {
	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return SiteRepository{basePath: basePath}
	}

	info, err := os.Stat(absPath)
	if err != nil || !info.IsDir() {
		return SiteRepository{basePath: absPath}
	}

	return SiteRepository{
		basePath:  absPath,
		available: true,
	}
}

func (r SiteRepository) GetBasePath() string {
	return r.basePath
}

func (r SiteRepository) Available() bool {
	return r.available
}

func (r SiteRepository) Resolve(ctx context.Context, requestPath string) (entity.ResolvedFile, error) {
	if !r.available {
		return entity.ResolvedFile{}, fmt.Errorf("%w: static root %s is not available", entity.ErrNotFound, r.basePath)
	}
	return Resolve(r.basePath, requestPath)
}

func (r SiteRepository) ResolveAsset(ctx context.Context, requestPath string) (entity.ResolvedFile, error) {
	if !r.available {
		return entity.ResolvedFile{}, fmt.Errorf("%w: static root %s is not available", entity.ErrNotFound, r.basePath)
	}
	return ResolveAsset(r.basePath, requestPath)
}

// Resolve picks the file to serve for requestPath under root:
// the file itself, then requestPath + ".html", then index.html.
// The root path and any unmatched route both end on index.html.
func Resolve(root, requestPath string) (entity.ResolvedFile, error) {
	realRoot, rel, err := prepare(root, requestPath)
	if err != nil {
		return entity.ResolvedFile{}, err
	}

	if rel != "" {
		if file, ok := regularFile(realRoot, rel, entity.ResolveSourceDirect); ok {
			return file, nil
		}
		if file, ok := regularFile(realRoot, rel+".html", entity.ResolveSourceHTML); ok {
			return file, nil
		}
	}

	if file, ok := regularFile(realRoot, indexDocument, entity.ResolveSourceIndex); ok {
		return file, nil
	}

	return entity.ResolvedFile{}, fmt.Errorf("%w: %q and %s", entity.ErrNotFound, requestPath, indexDocument)
}

// ResolveAsset serves bundler output: the file exists or the lookup fails.
func ResolveAsset(root, requestPath string) (entity.ResolvedFile, error) {
	realRoot, rel, err := prepare(root, requestPath)
	if err != nil {
		return entity.ResolvedFile{}, err
	}

	if rel != "" {
		if file, ok := regularFile(realRoot, rel, entity.ResolveSourceDirect); ok {
			return file, nil
		}
	}

	return entity.ResolvedFile{}, fmt.Errorf("%w: asset %q", entity.ErrNotFound, requestPath)
}

func prepare(root, requestPath string) (string, string, error) {
	rel, ok := cleanRequestPath(requestPath)
	if !ok {
		return "", "", fmt.Errorf("%w: invalid path %q", entity.ErrNotFound, requestPath)
	}

	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", "", fmt.Errorf("%w: static root: %v", entity.ErrNotFound, err)
	}
	realRoot, err = filepath.Abs(realRoot)
	if err != nil {
		return "", "", fmt.Errorf("%w: static root: %v", entity.ErrNotFound, err)
	}

	return realRoot, rel, nil
}

// cleanRequestPath turns a URL path into a slash separated path relative to
// the root. Paths with ".." segments, NUL bytes or backslashes are rejected.
func cleanRequestPath(requestPath string) (string, bool) {
	if strings.ContainsAny(requestPath, "\x00\\") {
		return "", false
	}

	for _, segment := range strings.Split(requestPath, "/") {
		if segment == ".." {
			return "", false
		}
	}

	cleaned := strings.TrimPrefix(path.Clean("/"+requestPath), "/")
	return cleaned, true
}

func regularFile(root, rel string, source entity.ResolveSource) (entity.ResolvedFile, bool) {
	candidate := filepath.Join(root, filepath.FromSlash(rel))

	info, err := os.Stat(candidate)
	if err != nil || !info.Mode().IsRegular() {
		return entity.ResolvedFile{}, false
	}

	// symlinks must not lead out of the root
	realPath, err := filepath.EvalSymlinks(candidate)
	if err != nil || !within(root, realPath) {
		return entity.ResolvedFile{}, false
	}

	return entity.ResolvedFile{
		Path:    candidate,
		Source:  source,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, true
}

func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
