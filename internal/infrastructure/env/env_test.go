package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvService_Getters(t *testing.T) {
	t.Setenv("PP_STR", "chromium")
	t.Setenv("PP_BOOL", "true")
	t.Setenv("PP_BAD_BOOL", "maybe")
	t.Setenv("PP_INT", "1440")
	t.Setenv("PP_BAD_INT", "wide")

	e := &EnvService{}

	assert.Equal(t, "chromium", e.Get("PP_STR"))
	assert.Equal(t, "fallback", e.GetWithDefault("PP_UNSET", "fallback"))
	assert.Equal(t, "chromium", e.GetWithDefault("PP_STR", "fallback"))

	assert.True(t, e.GetBool("PP_BOOL", false))
	assert.False(t, e.GetBool("PP_BAD_BOOL", false))
	assert.True(t, e.GetBool("PP_UNSET", true))

	assert.Equal(t, 1440, e.GetInt("PP_INT", 0))
	assert.Equal(t, 7, e.GetInt("PP_BAD_INT", 7))
	assert.Equal(t, 9, e.GetInt("PP_UNSET", 9))
}

func TestNewEnvService_LoadsFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PP_FROM_FILE=base\nPP_OVERRIDE=base\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte("PP_OVERRIDE=test\n"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		_ = os.Unsetenv("PP_FROM_FILE")
		_ = os.Unsetenv("PP_OVERRIDE")
	})
	t.Setenv("APP_ENV", "test")

	e := NewEnvService()

	assert.Equal(t, []string{".env", ".env.test"}, e.Loaded)
	assert.Equal(t, "base", e.Get("PP_FROM_FILE"))
	assert.Equal(t, "test", e.Get("PP_OVERRIDE"))
}
