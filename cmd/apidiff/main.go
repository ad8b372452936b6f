package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"github.com/everstacklabs/apidiff/internal/cache"
	"github.com/everstacklabs/apidiff/internal/config"
	"github.com/everstacklabs/apidiff/internal/extract"
	_ "github.com/everstacklabs/apidiff/internal/extract/php" // register PHP extractor
	"github.com/everstacklabs/apidiff/internal/pipeline"
	"github.com/everstacklabs/apidiff/internal/snapshot"
	"github.com/everstacklabs/apidiff/internal/source"
	"github.com/everstacklabs/apidiff/internal/validate"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "apidiff",
		Short:         "API changelog generator",
		Long:          "Compares the public API of two versions of a codebase, recommends the next SemVer version and writes a changelog.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./apidiff.yaml)")

	rootCmd.AddCommand(
		generateCmd(),
		diffCmd(),
		snapshotCmd(),
		validateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(pipeline.ExitFailure)
	}
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <old> <new>",
		Short: "Compare two versions and write the changelog",
		Long: "Compare two versions and write the changelog.\n\n" +
			"Each version is a directory, a git revision (git:<rev>[:<subdir>]) or a saved snapshot (.yaml).",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			p, closeCache := newPipeline(cfg)
			defer closeCache()

			out, err := p.Generate(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			if cfg.Quiet {
				fmt.Println(out.Result.RecommendedVersion)
			} else if !cfg.DryRun {
				fmt.Print(pipeline.RenderSummary(out.Result))
			}

			if cfg.Release.Enabled && !cfg.DryRun {
				num, err := p.Release(cmd.Context(), out)
				switch {
				case errors.Is(err, pipeline.ErrReleaseDisabled):
					slog.Warn("release skipped", "reason", err)
				case err != nil:
					return fmt.Errorf("release: %w", err)
				default:
					slog.Info("release PR opened", "number", num, "version", out.Result.RecommendedVersion)
				}
			}
			return nil
		},
	}

	addAnalysisFlags(cmd)
	cmd.Flags().StringP("output", "o", "CHANGELOG.md", "Output file (relative to the new directory)")
	cmd.Flags().StringP("format", "f", config.FormatMarkdown, "Output format (markdown, json)")
	cmd.Flags().Bool("dry-run", false, "Print the changelog instead of writing it")
	cmd.Flags().Bool("no-empty-changeset", false, "Write nothing and keep the version when nothing changed")
	cmd.Flags().BoolP("quiet", "q", false, "Only print the recommended version")
	cmd.Flags().Bool("release", false, "Commit the changelog on a release branch and open a pull request")

	return cmd
}

func diffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Show API changes (no writes); exits 2 when changes exist",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			p, closeCache := newPipeline(cfg)
			defer closeCache()

			r, err := p.Analyze(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Print(pipeline.RenderSummary(r))
			if r.Summary.HasChanges() {
				closeCache()
				os.Exit(pipeline.ExitChanges)
			}
			return nil
		},
	}

	addAnalysisFlags(cmd)
	return cmd
}

func snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot <source>",
		Short: "Extract the API of one version and save it as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			p, closeCache := newPipeline(cfg)
			defer closeCache()

			src, err := source.Resolve(args[0], cfg.Repo)
			if err != nil {
				return err
			}
			s, err := p.Snapshot(cmd.Context(), src)
			if err != nil {
				return err
			}

			path, _ := cmd.Flags().GetString("output")
			if path == "" {
				data, err := snapshot.Encode(s)
				if err != nil {
					return err
				}
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := snapshot.Save(path, s); err != nil {
				return err
			}
			slog.Info("snapshot saved", "path", path, "elements", s.Len(), "files", len(s.Files))
			return nil
		},
	}

	addSourceFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "Snapshot file to write (default: stdout)")
	return cmd
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <source>",
		Short: "Check the extracted API of one version for structural problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			p, closeCache := newPipeline(cfg)
			defer closeCache()

			src, err := source.Resolve(args[0], cfg.Repo)
			if err != nil {
				return err
			}
			s, err := p.Snapshot(cmd.Context(), src)
			if err != nil {
				return err
			}

			result := validate.ValidateSnapshot(s)
			fmt.Println(validate.FormatResult(result))

			if result.HasErrors() {
				closeCache()
				os.Exit(pipeline.ExitFailure)
			}
			return nil
		},
	}

	addSourceFlags(cmd)
	return cmd
}

// addSourceFlags registers the flags that control how a source is read.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("ignore", "i", extract.DefaultIgnore, "Glob patterns of files to skip")
	cmd.Flags().String("repo", ".", "Git repository for git:<rev> sources")
	cmd.Flags().String("language", "php", "Source language")
	cmd.Flags().Int("workers", 8, "Files parsed in parallel")
	cmd.Flags().Bool("no-cache", false, "Do not read or write the snapshot cache")
}

// addAnalysisFlags registers the flags shared by generate and diff.
func addAnalysisFlags(cmd *cobra.Command) {
	addSourceFlags(cmd)
	cmd.Flags().StringP("current-version", "c", "1.0.0", `Current version, or "auto" to read it from git tags`)
	cmd.Flags().Bool("strict-semver", false, "Breaking changes are major even before 1.0.0")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	configureLogging(cfg)
	return cfg, nil
}

func configureLogging(cfg *config.Config) {
	level := cfg.Level()
	if cfg.Quiet && level < slog.LevelWarn {
		level = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// newPipeline builds the pipeline and its snapshot cache. The returned func
// releases the cache.
func newPipeline(cfg *config.Config) (*pipeline.Pipeline, func()) {
	var opts []pipeline.Option
	closeCache := func() {}

	if !cfg.NoCache {
		fc, err := cache.New(cfg.CacheDir, cfg.TTL())
		if err != nil {
			slog.Warn("failed to create cache, continuing without", "error", err)
		} else {
			opts = append(opts, pipeline.WithCache(fc))
			closeCache = fc.Close
		}
	}

	return pipeline.New(cfg, opts...), closeCache
}
