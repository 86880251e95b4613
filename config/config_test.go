package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// inDir runs the test from an empty directory so no stray crsheet.yaml or
// .env is picked up
func inDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	t.Setenv("HOME", dir)
	return dir
}

func TestDefaults(t *testing.T) {
	inDir(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, EngineNative, cfg.TextEngine)
	assert.False(t, cfg.Open)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "stderr", cfg.Log.Output)
	assert.Equal(t, TemplateFile, filepath.Base(cfg.Template))
}

func TestConfigFile(t *testing.T) {
	dir := inDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "crsheet.yaml"), []byte(`
template: /srv/crs/CRS.xlsx
text_engine: mupdf
open: true
log:
  level: debug
  format: json
`), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/srv/crs/CRS.xlsx", cfg.Template)
	assert.Equal(t, EngineMuPDF, cfg.TextEngine)
	assert.True(t, cfg.Open)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "stderr", cfg.Log.Output)
}

func TestExplicitFile(t *testing.T) {
	dir := inDir(t)
	path := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(path, []byte("template: a.xlsx\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "a.xlsx", cfg.Template)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")
}

func TestEnvironment(t *testing.T) {
	dir := inDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "crsheet.yaml"), []byte("template: file.xlsx\n"), 0o644))
	t.Setenv("CRSHEET_TEMPLATE", "env.xlsx")
	t.Setenv("CRSHEET_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env.xlsx", cfg.Template)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestDotEnv(t *testing.T) {
	dir := inDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CRSHEET_TEXT_ENGINE=mupdf\n"), 0o644))
	// godotenv sets the variable for the process; restore it afterwards
	t.Setenv("CRSHEET_TEXT_ENGINE", "")
	require.NoError(t, os.Unsetenv("CRSHEET_TEXT_ENGINE"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, EngineMuPDF, cfg.TextEngine)
}

func TestOverridesWin(t *testing.T) {
	inDir(t)
	v := viper.New()
	v.Set("template", "flag.xlsx")
	t.Setenv("CRSHEET_TEMPLATE", "env.xlsx")

	cfg, err := LoadWith(v, "")
	require.NoError(t, err)
	assert.Equal(t, "flag.xlsx", cfg.Template)
}

func TestValidate(t *testing.T) {
	dir := inDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "crsheet.yaml"), []byte("text_engine: ocr\n"), 0o644))
	_, err := Load("")
	assert.ErrorContains(t, err, "invalid text_engine")

	cfg := Config{Template: "x.xlsx", TextEngine: EngineNative}
	cfg.Log.Format = "xml"
	assert.ErrorContains(t, cfg.Validate(), "invalid log.format")
}

func TestYAML(t *testing.T) {
	cfg := Config{Template: "CRS.xlsx", TextEngine: EngineNative}
	cfg.Log.Level = "info"
	out, err := cfg.YAML()
	require.NoError(t, err)

	var back map[string]interface{}
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, "CRS.xlsx", back["template"])
	assert.Equal(t, "info", back["log"].(map[string]interface{})["level"])
}
