package devenv

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"smsc-client/lib/configutil"
)

var modName = regexp.MustCompile(`(?m)^module *([\w\-_/.]+)$`)

func isWorkspaceRoot(currentdir string) bool {
	mod, err := os.ReadFile(filepath.Join(currentdir, "go.mod"))
	if err != nil {
		return false
	}
	matches := modName.FindSubmatch(mod)
	return len(matches) >= 2 && string(matches[1]) == "smsc-client"
}

func GetWorkspaceRoot() (string, error) {
	currentdir, err := filepath.Abs(".")
	if err != nil {
		return "", err
	}
	root, err := filepath.Abs("/")
	if err != nil {
		return "", err
	}

	for currentdir != root {
		if isWorkspaceRoot(currentdir) {
			return currentdir, nil
		}
		currentdir = filepath.Dir(currentdir)
	}
	return "", os.ErrNotExist
}

func GetStateFilePath(path string) (string, error) {
	root, err := GetWorkspaceRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "dev", ".state", path), nil
}

func GetStateConfig[T any](path string) (T, error) {
	configPath, err := GetStateFilePath(path)
	if err != nil {
		var out T
		return out, err
	}
	return configutil.ReadConfig[T](configPath)
}

// ResolvePath expands a leading `<dev_state>` path segment to the
// dev/.state directory of the workspace, creating it if needed.
func ResolvePath(path string) (string, error) {
	if !strings.HasPrefix(path, "<dev_state>") {
		return path, nil
	}

	root, err := GetWorkspaceRoot()
	if err != nil {
		return "", err
	}
	err = os.MkdirAll(filepath.Join(root, "dev", ".state"), 0777)
	if err != nil {
		return "", err
	}

	subpath := strings.TrimPrefix(strings.TrimPrefix(path, "<dev_state>"), string(os.PathSeparator))
	return filepath.Join(root, "dev", ".state", subpath), nil
}

// SmartschoolConfig returns the live test account, skipping the test when
// none is configured.
func SmartschoolConfig(t testing.TB) SmartschoolTestConfig {
	t.Helper()
	config, err := GetStateConfig[SmartschoolTestConfig]("smartschool_config.json5")
	if os.IsNotExist(err) {
		t.Skip("no smartschool account configured in dev/.state/smartschool_config.json5")
	}
	if err != nil {
		t.Fatal(err)
	}
	if config.BaseUrl == "" || config.Username == "" {
		t.Skip("smartschool account in dev/.state/smartschool_config.json5 is incomplete")
	}
	return config
}
