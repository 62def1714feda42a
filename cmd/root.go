package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bentoudev/conanci/internal/ciprovider"
	"github.com/bentoudev/conanci/internal/db"
	"github.com/bentoudev/conanci/internal/executor"
	"github.com/bentoudev/conanci/internal/history"
	"github.com/bentoudev/conanci/internal/logging"
	"github.com/bentoudev/conanci/internal/packager"
	"github.com/bentoudev/conanci/internal/pipeline"
)

// Environment fallbacks for the positional credentials.
const (
	EnvRepositoryKey = "REPOSITORY_KEY"
	EnvRepositoryURL = "REPOSITORY_URL"
)

// newRunner is swapped out by tests.
var newRunner = executor.New

var rootCmd = &cobra.Command{
	Use:   "conanci [repository_key repository_url]",
	Short: "conanci builds and uploads a conan package from CI",
	Long: "conanci resolves the release version from CI metadata or git, builds the " +
		"supported compiler matrix with conan and uploads the packages when a repository key and url are given",
	Args:          rootArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logging.Configure(logging.Options{Out: cmd.ErrOrStderr(), Verbose: verbose})
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		dry, _ := cmd.Flags().GetBool("dry-run")
		verbose, _ := cmd.Flags().GetBool("verbose")
		noHistory, _ := cmd.Flags().GetBool("no-history")

		p, err := loadProject(cmd)
		if err != nil {
			return err
		}
		if err := p.Validate(); err != nil {
			return err
		}

		opts := baseOptions(cmd, p, newRunner(dry, verbose))
		opts.Credentials = credentials(args, os.LookupEnv)
		opts.DryRun = dry

		if !noHistory && !dry {
			dbConn, err := db.InitDB()
			if err != nil {
				log.Warn().Err(err).Msg("run history unavailable")
			} else {
				defer func() { _ = dbConn.Close() }()
				opts.History = history.NewRepository(dbConn)
			}
		}

		res, err := pipeline.Run(cmd.Context(), opts)
		if err != nil {
			return err
		}
		log.Info().Int("builds", len(res.Builds)).Bool("uploaded", res.Uploaded).Msg("done")
		return nil
	},
}

// rootArgs accepts no positionals or the key/url pair. A lone positional is
// almost always a mistyped subcommand, and running the build for it would
// upload with the environment credentials.
func rootArgs(cmd *cobra.Command, args []string) error {
	switch len(args) {
	case 0, 2:
		return nil
	case 1:
		if s := cmd.SuggestionsFor(args[0]); len(s) > 0 {
			return fmt.Errorf("unknown command %q for %q\n\nDid you mean this?\n\t%s",
				args[0], cmd.CommandPath(), strings.Join(s, "\n\t"))
		}
		return fmt.Errorf("unknown command %q for %q (repository_key and repository_url must be given together)",
			args[0], cmd.CommandPath())
	default:
		return fmt.Errorf("accepts 0 or 2 arg(s), received %d", len(args))
	}
}

// credentials picks the repository key and url from the positionals when
// both are given, else from the environment when both are set.
func credentials(args []string, lookup func(string) (string, bool)) packager.Credentials {
	if len(args) == 2 {
		return packager.Credentials{Key: args[0], URL: args[1]}
	}
	key, okKey := lookup(EnvRepositoryKey)
	url, okURL := lookup(EnvRepositoryURL)
	if okKey && okURL {
		return packager.Credentials{Key: key, URL: url}
	}
	log.Warn().Msg("missing repository key argument! package won't be uploaded")
	return packager.Credentials{}
}

func baseOptions(cmd *cobra.Command, p projectConfig, r executor.Runner) pipeline.Options {
	return pipeline.Options{
		Project:   p.Project,
		Platform:  runtime.GOOS,
		Lookup:    os.LookupEnv,
		Providers: ciprovider.Default(),
		Runner:    r,
		Stdout:    cmd.OutOrStdout(),
		Stderr:    cmd.ErrOrStderr(),
	}
}

// Execute executes the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "interrupted")
		} else {
			log.Error().Err(err).Msg("conanci failed")
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Project file (.yaml, .yml or .toml); defaults to .conanci.yaml in the current dir")
	rootCmd.PersistentFlags().String("package", "", "Conan package name (overrides the project file)")
	rootCmd.PersistentFlags().String("git-dir", "", "Directory used for git version lookups")
	rootCmd.PersistentFlags().String("env-prefix", "", "Prefix of the <PREFIX>_VERSION and <PREFIX>_COMMIT variables")
	rootCmd.PersistentFlags().Bool("verbose", false, "Verbose output (debug logging, prints dry-run commands)")
	rootCmd.Flags().Bool("dry-run", false, "Resolve and plan, but do not run conan")
	rootCmd.Flags().Bool("no-history", false, "Do not record this run in the local history")
}
