package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edge/internal/domain/entity"
)

var faviconBytes = []byte{0x00, 0x00, 0x01, 0x00, 0xff, 0xfe, 0x0a, 0x0d}

// newSiteRoot lays out a small Next.js style export next to a file that must
// never be served.
func newSiteRoot(t *testing.T, withIndex bool) (string, string) {
	t.Helper()

	base, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	root := filepath.Join(base, "out")

	files := map[string][]byte{
		"favicon.ico":          faviconBytes,
		"about.html":           []byte("<html>about</html>"),
		"docs/guide.html":      []byte("<html>guide</html>"),
		"_next/static/app.js":  []byte("console.log('app')"),
		"reports.html":         []byte("<html>reports</html>"),
		"reports/monthly.html": []byte("<html>monthly</html>"),
	}
	if withIndex {
		files["index.html"] = []byte("<html>index</html>")
	}

	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, content, 0o644))
	}

	secret := filepath.Join(base, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("top secret"), 0o600))

	return root, secret
}

func TestResolve(t *testing.T) {
	root, _ := newSiteRoot(t, true)

	tests := []struct {
		name       string
		path       string
		wantFile   string
		wantSource entity.ResolveSource
	}{
		{name: "Binary asset", path: "/favicon.ico", wantFile: "favicon.ico", wantSource: entity.ResolveSourceDirect},
		{name: "Extensionless route", path: "/about", wantFile: "about.html", wantSource: entity.ResolveSourceHTML},
		{name: "Explicit html", path: "/about.html", wantFile: "about.html", wantSource: entity.ResolveSourceDirect},
		{name: "Nested extensionless route", path: "/docs/guide", wantFile: "docs/guide.html", wantSource: entity.ResolveSourceHTML},
		{name: "Directory with sibling html", path: "/reports", wantFile: "reports.html", wantSource: entity.ResolveSourceHTML},
		{name: "Empty path", path: "", wantFile: "index.html", wantSource: entity.ResolveSourceIndex},
		{name: "Root path", path: "/", wantFile: "index.html", wantSource: entity.ResolveSourceIndex},
		{name: "Client route", path: "/dashboard/settings", wantFile: "index.html", wantSource: entity.ResolveSourceIndex},
		{name: "Directory without html", path: "/docs", wantFile: "index.html", wantSource: entity.ResolveSourceIndex},
		{name: "Path without leading slash", path: "favicon.ico", wantFile: "favicon.ico", wantSource: entity.ResolveSourceDirect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(root, tt.path)
			require.NoError(t, err)

			assert.Equal(t, tt.wantSource, got.Source)
			assert.Equal(t, filepath.Join(root, filepath.FromSlash(tt.wantFile)), got.Path)
		})
	}
}

func TestResolve_ReturnsFileBytesUnchanged(t *testing.T) {
	root, _ := newSiteRoot(t, true)

	got, err := Resolve(root, "/favicon.ico")
	require.NoError(t, err)

	content, err := os.ReadFile(got.Path)
	require.NoError(t, err)
	assert.Equal(t, faviconBytes, content)
	assert.Equal(t, int64(len(faviconBytes)), got.Size)
}

func TestResolve_NoIndex(t *testing.T) {
	root, _ := newSiteRoot(t, false)

	for _, p := range []string{"", "/", "/dashboard", "/docs"} {
		_, err := Resolve(root, p)
		assert.ErrorIs(t, err, entity.ErrNotFound, "path %q", p)
	}

	// direct and .html matches still work without an index document
	got, err := Resolve(root, "/about")
	require.NoError(t, err)
	assert.Equal(t, entity.ResolveSourceHTML, got.Source)
}

func TestResolve_Traversal(t *testing.T) {
	root, secret := newSiteRoot(t, true)

	for _, p := range []string{
		"/../secret.txt",
		"../secret.txt",
		"/docs/../../secret.txt",
		"/..",
		"/about/..",
		"/..\\secret.txt",
		"/secret.txt\x00",
	} {
		t.Run(p, func(t *testing.T) {
			got, err := Resolve(root, p)
			assert.ErrorIs(t, err, entity.ErrNotFound)
			assert.NotEqual(t, secret, got.Path)
		})
	}
}

func TestResolve_SymlinkOutsideRoot(t *testing.T) {
	root, secret := newSiteRoot(t, true)
	if err := os.Symlink(secret, filepath.Join(root, "leak")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	got, err := Resolve(root, "/leak")
	require.NoError(t, err)
	assert.Equal(t, entity.ResolveSourceIndex, got.Source)
	assert.NotEqual(t, secret, got.Path)

	_, err = ResolveAsset(root, "/leak")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestResolve_SymlinkInsideRoot(t *testing.T) {
	root, _ := newSiteRoot(t, true)
	if err := os.Symlink(filepath.Join(root, "about.html"), filepath.Join(root, "about-us.html")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	got, err := Resolve(root, "/about-us")
	require.NoError(t, err)
	assert.Equal(t, entity.ResolveSourceHTML, got.Source)
}

func TestResolve_Idempotent(t *testing.T) {
	root, _ := newSiteRoot(t, true)

	first, err := Resolve(root, "/docs/guide")
	require.NoError(t, err)
	second, err := Resolve(root, "/docs/guide")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestResolveAsset(t *testing.T) {
	root, _ := newSiteRoot(t, true)

	got, err := ResolveAsset(root, "/_next/static/app.js")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "_next", "static", "app.js"), got.Path)

	// no html or index fallback for bundler assets
	for _, p := range []string{"/_next/static/missing.js", "/_next/static", "/_next/../about.html", ""} {
		_, err := ResolveAsset(root, p)
		assert.ErrorIs(t, err, entity.ErrNotFound, "path %q", p)
	}
}

func TestSiteRepository_MissingRoot(t *testing.T) {
	repo := NewSiteRepository(filepath.Join(t.TempDir(), "out"))
	assert.False(t, repo.Available())

	_, err := repo.Resolve(context.Background(), "/")
	assert.ErrorIs(t, err, entity.ErrNotFound)

	_, err = repo.ResolveAsset(context.Background(), "/_next/static/app.js")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestSiteRepository_RootIsFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.WriteFile(p, []byte("not a dir"), 0o644))

	repo := NewSiteRepository(p)
	assert.False(t, repo.Available())
}

func TestSiteRepository_Resolve(t *testing.T) {
	root, _ := newSiteRoot(t, true)

	repo := NewSiteRepository(root)
	require.True(t, repo.Available())

	got, err := repo.Resolve(context.Background(), "/settings")
	require.NoError(t, err)
	assert.Equal(t, entity.ResolveSourceIndex, got.Source)

	got, err = repo.ResolveAsset(context.Background(), "/_next/static/app.js")
	require.NoError(t, err)
	assert.Equal(t, entity.ResolveSourceDirect, got.Source)
}
