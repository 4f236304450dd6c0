// Package cmd implements the frayman command tree.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	manager "github.com/fraytools/manager"
	"github.com/fraytools/manager/internal/cmd/output"
	"github.com/fraytools/manager/pkg/assets"
)

// Version carries the build metadata shown by --version.
type Version struct {
	Version string
	Commit  string
	Date    string
}

var rootCmd = &cobra.Command{
	Use:   "frayman",
	Short: "Manage FrayTools plugins and templates",
	Long: `frayman manages FrayTools content packages: it tracks the GitHub
repositories that publish plugins and templates, caches their release
metadata for offline browsing, and downloads, installs, and uninstalls
the packages themselves.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// .env files are optional; missing is fine.
		_ = godotenv.Load()

		viper.AutomaticEnv()
		viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			return err
		}
		_ = viper.BindEnv("github-token", "GITHUB_TOKEN", "FRAYMAN_GITHUB_TOKEN")

		switch {
		case viper.GetBool("quiet"):
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		case viper.GetBool("verbose"):
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
		return nil
	},
}

// Execute runs the frayman command tree.
func Execute(ctx context.Context, v Version) error {
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", v.Version, v.Commit, v.Date)
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only log warnings and errors")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format: table, json, or yaml")
	rootCmd.PersistentFlags().String("github-token", "", "GitHub API token for release listing")

	rootCmd.AddCommand(
		newListCmd(),
		newRefreshCmd(),
		newDownloadCmd(),
		newInstallCmd(),
		newUninstallCmd(),
		newChangelogCmd(),
		newSourceCmd(),
		newCacheCmd(),
		newDefaultsCmd(),
	)
}

// newManager builds the shared manager facade for one command run.
func newManager() (manager.Manager, error) {
	var opts []manager.Option
	if token := viper.GetString("github-token"); token != "" {
		opts = append(opts, manager.WithGitHubToken(token))
	}
	return manager.New(opts...)
}

// addKindFlag registers the shared --kind flag.
func addKindFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("kind", "k", assets.KindPlugin.String(), "asset kind: plugin or template")
}

// kindFlag parses the --kind flag.
func kindFlag(cmd *cobra.Command) (assets.Kind, error) {
	raw, _ := cmd.Flags().GetString("kind")
	return assets.ParseKind(raw)
}

// kindsOf returns the kinds a command operates on: the explicit --kind
// when set, otherwise every kind.
func kindsOf(cmd *cobra.Command) ([]assets.Kind, error) {
	if !cmd.Flags().Changed("kind") {
		return assets.Kinds, nil
	}
	kind, err := kindFlag(cmd)
	if err != nil {
		return nil, err
	}
	return []assets.Kind{kind}, nil
}

// render writes data to stdout in the selected (or detected) format.
func render(data any) error {
	format, err := output.ParseFormat(viper.GetString("output"))
	if err != nil {
		return err
	}
	if format == "" {
		format = output.DetectFormat("")
	}
	return output.NewFormatter(format).Format(os.Stdout, data)
}
