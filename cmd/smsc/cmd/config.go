package cmd

import (
	"time"

	devenv "smsc-client/dev/env"
	"smsc-client/internal/components/telemetry"
	"smsc-client/lib/configutil"
	"smsc-client/lib/smartschool"
)

const configName = "smsc.json5"

type Config struct {
	BaseUrl           string  `json:"base_url"`
	Username          string  `json:"username"`
	Password          string  `json:"password"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	CloudflareBypass  bool    `json:"cloudflare_bypass"`
	// DumpDir receives every http request/response pair when set, it may
	// start with <dev_state>.
	DumpDir string `json:"dump_dir"`
	Debug   bool   `json:"debug"`

	LoginMatchers smartschool.LoginMatchers   `json:"login_matchers"`
	Envelope      smartschool.EnvelopeMatcher `json:"envelope"`
	Telemetry     telemetry.Config            `json:"telemetry"`
}

var defaultConfig = Config{
	TimeoutSeconds:    30,
	RequestsPerSecond: 2,
}

// loadConfig reads the config at path, or the nearest smsc.json5 when path
// is empty.
func loadConfig(path string) (Config, error) {
	var config Config
	var err error
	if path == "" {
		config, err = configutil.ReadRecursively[Config](configName)
	} else {
		config, err = configutil.ReadConfig[Config](path)
	}
	if err != nil {
		return Config{}, err
	}
	return configutil.WithDefaults(config, defaultConfig)
}

func (c Config) loginOptions(tel telemetry.API) (smartschool.LoginOptions, error) {
	transport := smartschool.TransportOptions{
		Timeout:           time.Duration(c.TimeoutSeconds) * time.Second,
		RequestsPerSecond: c.RequestsPerSecond,
		CloudflareBypass:  c.CloudflareBypass,
	}
	if c.DumpDir != "" {
		dir, err := devenv.ResolvePath(c.DumpDir)
		if err != nil {
			return smartschool.LoginOptions{}, err
		}
		output, err := telemetry.NewFilesystemOutput(dir)
		if err != nil {
			return smartschool.LoginOptions{}, err
		}
		transport.Dump = output
	}

	return smartschool.LoginOptions{
		BaseUrl:   c.BaseUrl,
		Username:  c.Username,
		Password:  c.Password,
		Transport: transport,
		Matchers:  c.LoginMatchers,
		Envelope:  c.Envelope,
		Telemetry: tel,
	}, nil
}
