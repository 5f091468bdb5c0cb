package cmd

import (
	"fmt"

	"smsc-client/lib/configutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Print the location of the config file that would be used.",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipLogin: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			located, err := configutil.Locate(configName)
			if err != nil {
				return fmt.Errorf("no %s found in this directory or any of its parents", configName)
			}
			path = located
		}
		config, err := loadConfig(path)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "config:", path)
		fmt.Fprintln(out, "local overrides:", configutil.LocalPath(path))
		fmt.Fprintln(out, "base url:", config.BaseUrl)
		fmt.Fprintln(out, "username:", config.Username)
		return nil
	},
}
