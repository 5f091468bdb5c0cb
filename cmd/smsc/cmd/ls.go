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
	rootCmd.AddCommand(lsCmd)
}

var lsCmd = &cobra.Command{
	Use:   "ls [folder]",
	Short: "List the contents of a folder, the root folder when no folder is given.",
	Long:  `The folder is either the id of a folder, "favourites" or "trashed".`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder := mydoc.Root
		if len(args) == 1 {
			var err error
			folder, err = mydoc.ParseFolderId(args[0])
			if err != nil {
				return err
			}
		}

		client := globals.Get(cmd.Context()).Mydoc
		files, folders, err := client.FolderContents(cmd.Context(), folder)
		if err != nil {
			return err
		}
		renderListing(cmd.OutOrStdout(), files, folders)
		return nil
	},
}

func renderListing(out io.Writer, files []mydoc.File, folders []mydoc.Folder) {
	if len(files) == 0 && len(folders) == 0 {
		fmt.Fprintln(out, "This folder is empty.")
		return
	}
	t := utils.NewTable(out)
	t.AppendHeader(table.Row{"", "Name", "Id", "Size", "Modified"})
	for _, f := range folders {
		t.AppendRow(table.Row{"dir", f.Name, f.Id.String(), "", utils.FormatTime(f.DateChanged)})
	}
	for _, f := range files {
		t.AppendRow(table.Row{
			"file",
			f.Name,
			f.Id.String(),
			utils.FormatSize(f.CurrentRevision.FileSize),
			utils.FormatTime(f.DateChanged),
		})
	}
	t.Render()
}
