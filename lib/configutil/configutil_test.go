package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	BaseUrl  string            `json:"base_url"`
	Username string            `json:"username"`
	Timeout  int               `json:"timeout_seconds"`
	Headers  map[string]string `json:"headers"`
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, filepath.Join("a", "smsc.local.json5"), LocalPath(filepath.Join("a", "smsc.json5")))
	require.Equal(t, "config.local", LocalPath("config"))
}

func TestReadConfigMergesLocal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "smsc.json5"), `{
		// comments are allowed
		base_url: "https://school.smartschool.be",
		username: "someone",
		timeout_seconds: 30,
	}`)
	writeFile(t, filepath.Join(dir, "smsc.local.json5"), `{
		username: "override",
		headers: {"x-test": "1"},
	}`)

	config, err := ReadConfig[testConfig](filepath.Join(dir, "smsc.json5"))
	require.NoError(t, err)

	expected := testConfig{
		BaseUrl:  "https://school.smartschool.be",
		Username: "override",
		Timeout:  30,
		Headers:  map[string]string{"x-test": "1"},
	}
	if diff := cmp.Diff(expected, config); diff != "" {
		t.Fatal(diff)
	}
}

func TestReadConfigOnlyLocal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "smsc.local.json5"), `{username: "local"}`)

	config, err := ReadConfig[testConfig](filepath.Join(dir, "smsc.json5"))
	require.NoError(t, err)
	require.Equal(t, "local", config.Username)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "smsc.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "smsc.json5"), `{username: `)
	_, err := ReadConfig[testConfig](filepath.Join(dir, "smsc.json5"))
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}

func TestWithDefaults(t *testing.T) {
	config, err := WithDefaults(
		testConfig{Username: "someone"},
		testConfig{Username: "default", Timeout: 30},
	)
	require.NoError(t, err)
	require.Equal(t, testConfig{Username: "someone", Timeout: 30}, config)
}
