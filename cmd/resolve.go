package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bentoudev/conanci/internal/pipeline"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Print the version, commit and channel a build would publish",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		p, err := loadProject(cmd)
		if err != nil {
			return err
		}
		d, err := pipeline.Resolve(cmd.Context(), baseOptions(cmd, p, newRunner(false, verbose)))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "version: %s\n", d.Version)
		fmt.Fprintf(out, "commit:  %s\n", d.Commit)
		fmt.Fprintf(out, "channel: %s\n", d.Channel)
		if d.Provider != "" {
			fmt.Fprintf(out, "ci:      %s\n", d.Provider)
		}
		if d.BuildNumber != "" {
			fmt.Fprintf(out, "build:   %s\n", d.BuildNumber)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
