package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const smartschoolConfigTemplate = `{
	// account used by the live tests, they are skipped while base_url is empty
	base_url: "",
	username: "",
	password: "",
	// id of a custom mydoc folder the live tests may write into
	folder: "",
}
`

const cliConfigTemplate = `{
	base_url: "",
	username: "",
	password: "",
	timeout_seconds: 30,
	requests_per_second: 2,
	cloudflare_bypass: false,
	dump_dir: "<dev_state>/http_dump",
	debug: true,
	telemetry: {
		otlp: {
			traces: {http_endpoint: ""},
			metrics: {http_endpoint: ""},
		},
	},
}
`

var stateTemplates = map[string]string{
	"smartschool_config.json5": smartschoolConfigTemplate,
	"smsc.json5":               cliConfigTemplate,
}

// CreateStateTemplates writes a template for every state file that doesn't
// exist yet.
func CreateStateTemplates() error {
	for name, contents := range stateTemplates {
		path := filepath.Join("dev", ".state", name)
		_, err := os.Stat(path)
		if err == nil {
			slog.Info("keeping existing state file", "path", path)
			continue
		}
		if !os.IsNotExist(err) {
			return err
		}
		err = os.WriteFile(path, []byte(contents), 0600)
		if err != nil {
			return err
		}
	}
	return nil
}

func PrintConfigLocations() {
	fmt.Println("Fill in the following files before running live tests or the cli:")
	for name := range stateTemplates {
		fmt.Println("\t" + filepath.Join("dev", ".state", name))
	}
	fmt.Println("The cli looks for smsc.json5 in the current directory and its parents, run it from dev/.state or copy the file.")
}
