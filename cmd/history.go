package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/bentoudev/conanci/internal/db"
	"github.com/bentoudev/conanci/internal/exporter"
	"github.com/bentoudev/conanci/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded conanci runs",
	Long:  "Show recorded conanci runs (newest first) with version, channel, build count and upload status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		dbConn, err := db.InitDB()
		if err != nil {
			return err
		}
		defer func() { _ = dbConn.Close() }()

		runs, err := history.NewRepository(dbConn).List(limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
			return nil
		}
		t := styledTable("when", "package", "version", "channel", "ci", "builds", "uploaded", "took", "status")
		for _, r := range runs {
			status := r.Status
			if r.Error != "" {
				status += ": " + r.Error
			}
			t.Row(
				humanize.Time(r.StartedAt),
				r.Package,
				r.Version,
				r.Channel,
				r.Provider,
				fmt.Sprint(r.Builds),
				fmt.Sprint(r.Uploaded),
				r.Duration().Round(time.Second).String(),
				status,
			)
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Write the run history to a standalone database file",
	Long:  "Write the run history to a standalone SQLite file. With --package only that package's runs are written.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pkg, _ := cmd.Flags().GetString("package")
		if pkg == "" {
			if err := exporter.ExportDatabase(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported history to %s\n", args[0])
			return nil
		}
		dbConn, err := db.InitDB()
		if err != nil {
			return err
		}
		defer func() { _ = dbConn.Close() }()
		n, err := exporter.ExportPackage(dbConn, pkg, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d %s run(s) to %s\n", n, pkg, args[0])
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum number of runs to show (0 for all)")
	historyCmd.AddCommand(historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}
