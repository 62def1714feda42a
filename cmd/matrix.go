package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/bentoudev/conanci/internal/pipeline"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func styledTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Print the filtered build matrix for this machine",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := loadProject(cmd)
		if err != nil {
			return err
		}
		builds := pipeline.Plan(baseOptions(cmd, p, nil))
		if len(builds) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no builds match the current rules")
			return nil
		}
		t := styledTable("#", "arch", "compiler", "version", "runtime", "libcxx", "build type")
		for i, b := range builds {
			t.Row(fmt.Sprint(i+1), b.Arch, b.Compiler, b.CompilerVersion, b.Runtime, b.LibCxx, b.BuildType)
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(matrixCmd)
}
