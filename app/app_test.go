package app

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/takaishi/yoink/config"
	"github.com/takaishi/yoink/search"
	"github.com/takaishi/yoink/walker"
)

func stubLookPath(t *testing.T, installed ...string) {
	t.Helper()
	orig := LookPath
	t.Cleanup(func() { LookPath = orig })
	LookPath = func(name string) (string, error) {
		for _, n := range installed {
			if n == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func TestFindTools(t *testing.T) {
	tests := []struct {
		name      string
		installed []string
		missing   string
		bat       string
	}{
		{name: "all", installed: []string{"fzf", "rg", "bat"}, bat: "/usr/bin/bat"},
		{name: "batcat", installed: []string{"fzf", "rg", "batcat"}, bat: "/usr/bin/batcat"},
		{name: "no highlighter", installed: []string{"fzf", "rg"}, missing: "bat"},
		{name: "no fzf", installed: []string{"rg", "bat"}, missing: "fzf"},
		{name: "no rg", installed: []string{"fzf", "bat"}, missing: "rg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubLookPath(t, tt.installed...)
			tools, err := FindTools()
			if tt.missing != "" {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrBackendUnavailable))
				var mt *MissingToolError
				require.True(t, errors.As(err, &mt))
				assert.Equal(t, tt.missing, mt.Tool)
				assert.Contains(t, err.Error(), tt.missing)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "/usr/bin/fzf", tools.Fzf)
			assert.Equal(t, "/usr/bin/rg", tools.Rg)
			assert.Equal(t, tt.bat, tools.Bat)
		})
	}
}

func TestRunFailsBeforeUIWhenToolMissing(t *testing.T) {
	t.Setenv("YOINK_LOG", "off")
	stubLookPath(t, "rg")

	code, err := Run(context.Background(), Options{Options: config.Options{Root: t.TempDir()}})
	assert.Equal(t, 1, code)
	assert.True(t, errors.Is(err, ErrBackendUnavailable))
}

func TestRunRequiresHighlighter(t *testing.T) {
	t.Setenv("YOINK_LOG", "off")
	stubLookPath(t, "fzf", "rg")

	code, err := Run(context.Background(), Options{Options: config.Options{Root: t.TempDir()}})
	assert.Equal(t, 1, code)
	var mt *MissingToolError
	require.True(t, errors.As(err, &mt))
	assert.Equal(t, "bat", mt.Tool)
}

func TestRunFailsOnMissingRoot(t *testing.T) {
	t.Setenv("YOINK_LOG", "off")
	t.Setenv(config.PrefsEnv, filepath.Join(t.TempDir(), "none.toml"))
	t.Setenv(config.IgnoreFileEnv, filepath.Join(t.TempDir(), "none"))
	stubLookPath(t, "fzf", "rg", "bat")

	code, err := Run(context.Background(), Options{Options: config.Options{Root: filepath.Join(t.TempDir(), "missing")}})
	assert.Equal(t, 1, code)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFilterFactoryHonoursHiddenToggle(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), nil, 0o644))

	filters := FilterFactory(root, config.Default(), false)
	assert.Equal(t, walker.Hidden, filters(search.Request{}).Decide(".env"))
	assert.Equal(t, walker.Visible, filters(search.Request{ShowHidden: true}).Decide(".env"))
}
