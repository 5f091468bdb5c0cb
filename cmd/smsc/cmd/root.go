package cmd

import (
	"errors"
	"fmt"
	"os"

	"smsc-client/cmd/smsc/globals"
	"smsc-client/internal/components/telemetry"
	"smsc-client/lib/smartschool"
	"smsc-client/lib/smartschool/mydoc"
	"smsc-client/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

const skipLogin = "skip_login"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "smsc",
	Short:         "smsc is a command line client for the documents of a Smartschool account.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[skipLogin] != "" {
			return nil
		}

		config, err := loadConfig(configPath)
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no %s found, create one in this directory or one of its parents (or pass --config)", configName)
		}
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		telemetry.InitSlog(config.Debug)

		state := globals.Get(cmd.Context())
		state.Telemetry, err = telemetry.Setup(cmd.Context(), "smsc", config.Telemetry)
		if err != nil {
			return fmt.Errorf("failed to setup telemetry: %w", err)
		}

		var tel telemetry.API = telemetry.SlogAPI{}
		if state.Telemetry.MeterProvider != nil {
			tel, err = telemetry.NewOtelAPI("smsc-client/smsc", tel)
			if err != nil {
				return err
			}
		}

		opts, err := config.loginOptions(tel)
		if err != nil {
			return err
		}
		session, err := smartschool.LoginWithOptions(cmd.Context(), opts)
		if err != nil {
			return err
		}
		state.Session = session
		state.Mydoc = mydoc.NewClient(session)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the config file (defaults to the nearest smsc.json5)")
}

func Execute() {
	state := &globals.Value{}
	ctx := globals.Set(serviceutil.SignalContext(), state)

	err := rootCmd.ExecuteContext(ctx)
	state.Close()
	if err != nil {
		serviceutil.Fatal("smsc failed", err)
	}
}
