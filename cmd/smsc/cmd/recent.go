package cmd

import (
	"fmt"
	"io"

	"smsc-client/cmd/smsc/globals"
	"smsc-client/cmd/smsc/utils"
	"smsc-client/lib/smartschool/mydoc"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(recentCmd)
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List the recently modified files in my documents.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := globals.Get(cmd.Context()).Mydoc
		files, err := client.RecentFiles(cmd.Context())
		if err != nil {
			return err
		}
		renderFiles(cmd.OutOrStdout(), files)
		return nil
	},
}

func renderFiles(out io.Writer, files []mydoc.File) {
	if len(files) == 0 {
		fmt.Fprintln(out, "No recently modified files...")
		return
	}
	t := utils.NewTable(out)
	t.AppendHeader(table.Row{"Name", "Id", "Size", "Modified"})
	for _, f := range files {
		t.AppendRow(table.Row{
			f.Name,
			f.Id.String(),
			utils.FormatSize(f.CurrentRevision.FileSize),
			utils.FormatTime(f.DateChanged),
		})
	}
	t.Render()
}
