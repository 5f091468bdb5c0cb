package cmd

import (
	"fmt"
	"io"
	"os"

	"smsc-client/cmd/smsc/globals"
	"smsc-client/lib/smartschool/mydoc"

	"github.com/spf13/cobra"
)

var (
	downloadOutput   string
	downloadRevision string
)

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", `file to write to, "-" for stdout (defaults to the name of the file)`)
	downloadCmd.Flags().StringVarP(&downloadRevision, "revision", "r", "", "id of the revision to download (defaults to the current revision)")
	rootCmd.AddCommand(downloadCmd)
}

var downloadCmd = &cobra.Command{
	Use:   "download <file-id>",
	Short: "Download a file from my documents.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := mydoc.ParseFileId(args[0])
		if err != nil {
			return fmt.Errorf("invalid file id: %w", err)
		}
		client := globals.Get(cmd.Context()).Mydoc

		revisions, err := client.FileRevisions(cmd.Context(), id)
		if err != nil {
			return err
		}
		revision, err := pickRevision(revisions, downloadRevision)
		if err != nil {
			return err
		}

		var body io.ReadCloser
		if downloadRevision == "" {
			body, err = client.DownloadFile(cmd.Context(), id)
		} else {
			body, err = client.DownloadRevision(cmd.Context(), id, revision.Id)
		}
		if err != nil {
			return err
		}
		defer body.Close()

		output := downloadOutput
		if output == "" {
			output = revision.FileName
		}
		if output == "" {
			output = id.String()
		}
		if output == "-" {
			_, err = io.Copy(cmd.OutOrStdout(), body)
			return err
		}

		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		n, err := io.Copy(f, body)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d bytes to %s\n", n, output)
		return nil
	},
}

// pickRevision returns the revision with the given id, or the newest
// revision when id is empty.
func pickRevision(revisions []mydoc.Revision, id string) (mydoc.Revision, error) {
	if id == "" {
		var newest mydoc.Revision
		for _, r := range revisions {
			if r.Date.After(newest.Date) || newest.Date.IsZero() {
				newest = r
			}
		}
		return newest, nil
	}
	for _, r := range revisions {
		if r.Id.String() == id {
			return r, nil
		}
	}
	return mydoc.Revision{}, fmt.Errorf("file has no revision %s", id)
}
