package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bentoudev/conanci/internal/config"
)

// projectConfig is the loaded project plus where it came from.
type projectConfig struct {
	config.Project
	Path string
}

// loadProject reads --config (or the default project file in the current
// directory) and applies flag overrides on top.
func loadProject(cmd *cobra.Command) (projectConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.Find(".")
	}
	pc := projectConfig{Project: config.Default(), Path: path}
	if path != "" {
		p, err := config.Load(path)
		if err != nil {
			return projectConfig{}, err
		}
		pc.Project = p
	}
	if f := cmd.Flags().Lookup("package"); f != nil && f.Changed {
		pc.Package = f.Value.String()
	}
	if f := cmd.Flags().Lookup("git-dir"); f != nil && f.Changed {
		pc.GitDir = f.Value.String()
	}
	if f := cmd.Flags().Lookup("env-prefix"); f != nil && f.Changed {
		pc.EnvPrefix = f.Value.String()
	}
	return pc, nil
}
