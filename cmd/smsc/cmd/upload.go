package cmd

import (
	"fmt"
	"os"

	"smsc-client/cmd/smsc/globals"
	"smsc-client/lib/smartschool/mydoc"
	"smsc-client/lib/smartschool/upload"

	"github.com/spf13/cobra"
)

var uploadFolder string

func init() {
	uploadCmd.Flags().StringVarP(&uploadFolder, "folder", "f", "", "folder to upload into (defaults to the root folder)")
	rootCmd.AddCommand(uploadCmd)
}

var uploadCmd = &cobra.Command{
	Use:   "upload <path>...",
	Short: "Upload local files into my documents.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		folder, err := mydoc.ParseFolderId(uploadFolder)
		if err != nil {
			return err
		}

		state := globals.Get(cmd.Context())
		dir, err := upload.GetUploadDirectory(cmd.Context(), state.Session)
		if err != nil {
			return fmt.Errorf("failed to get an upload directory: %w", err)
		}

		for _, path := range args {
			err := uploadPath(cmd, dir, path)
			if err != nil {
				return err
			}
		}

		files, err := state.Mydoc.Upload(cmd.Context(), folder, dir)
		if err != nil {
			return err
		}
		renderFiles(cmd.OutOrStdout(), files)
		return nil
	},
}

func uploadPath(cmd *cobra.Command, dir upload.Directory, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	session := globals.Get(cmd.Context()).Session
	name, err := upload.UploadFile(cmd.Context(), session, dir, path, f)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", path, err)
	}
	if name != path {
		fmt.Fprintf(cmd.ErrOrStderr(), "uploaded %s as %s\n", path, name)
	}
	return nil
}
