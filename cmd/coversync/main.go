package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/quantmind-br/coversync/internal/app"
	"github.com/quantmind-br/coversync/internal/cache"
	"github.com/quantmind-br/coversync/internal/config"
	"github.com/quantmind-br/coversync/internal/domain"
	"github.com/quantmind-br/coversync/internal/git"
	"github.com/quantmind-br/coversync/internal/manifest"
	"github.com/quantmind-br/coversync/internal/utils"
	"github.com/quantmind-br/coversync/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitPending = 2
)

var (
	cfgFile  string
	verbose  bool
	dryRun   bool
	check    bool
	progress bool

	// Dependencies for testing
	loadConfig = config.Load
	gitClient  git.Client
)

func main() {
	os.Exit(execute(os.Stdout, os.Stderr))
}

// execute runs the root command and maps its error to an exit code
func execute(stdout, stderr io.Writer) int {
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	err := rootCmd.Execute()
	code := exitCode(err)
	if err != nil && code != exitPending {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return code
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, domain.ErrSyncPending):
		return exitPending
	default:
		return exitFailure
	}
}

var rootCmd = &cobra.Command{
	Use:   "coversync",
	Short: "Sync cover images in Markdown documents with blob storage",
	Long: `coversync uploads the local images referenced by :::cover directives
to content-addressed blob storage and rewrites each directive's url in place.

A manifest of every synced asset and a flat URL list are kept under maintain/.
Use --check in CI to fail when a cover is out of sync, and --dry-run to run
the full pipeline against a mock store without network access.`,
	Version:       version.Short(),
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSync,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Upload changed covers and rewrite documents (default command)",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report out-of-sync covers without changing anything",
	Long: `check runs the sync decision for every cover and exits with status 2
when any directive would be rewritten. No file, manifest or remote object is
touched and no credential is required.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		check = true
		return runSync(cmd, args)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./coversync.yaml or ~/.coversync/coversync.yaml)")
	rootCmd.PersistentFlags().String("root", "", "Repository root (default: enclosing git worktree)")
	rootCmd.PersistentFlags().StringSlice("documents", nil, "Document globs relative to the root")
	rootCmd.PersistentFlags().String("prefix", config.DefaultBlobPrefix, "Blob key prefix")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Use the mock store instead of uploading")
	rootCmd.PersistentFlags().BoolVar(&check, "check", false, "Only report covers that need syncing")
	rootCmd.PersistentFlags().BoolVar(&progress, "progress", false, "Show a progress bar")
	rootCmd.PersistentFlags().Bool("cache", false, "Cache blob lookups between runs")

	// Bind flags to viper
	_ = viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))
	_ = viper.BindPFlag("documents", rootCmd.PersistentFlags().Lookup("documents"))
	_ = viper.BindPFlag("blob.prefix", rootCmd.PersistentFlags().Lookup("prefix"))
	_ = viper.BindPFlag("blob.dry_run", rootCmd.PersistentFlags().Lookup("dry-run"))
	_ = viper.BindPFlag("cache.enabled", rootCmd.PersistentFlags().Lookup("cache"))

	// Add subcommands
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Create context with cancellation
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	orchestrator, err := app.NewOrchestrator(app.OrchestratorOptions{
		CommonOptions: domain.CommonOptions{
			Verbose:  verbose,
			DryRun:   dryRun || cfg.Blob.DryRun,
			Check:    check,
			Progress: progress,
		},
		Config:         cfg,
		GitClient:      gitClient,
		ProgressOutput: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer orchestrator.Close()

	report, err := orchestrator.Run(ctx)
	if report != nil && (err == nil || errors.Is(err, domain.ErrSyncPending)) {
		fmt.Fprint(cmd.OutOrStdout(), report.Summary())
	}
	return err
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long:  "Prints the configuration after defaults, config file, environment and flags are applied. The blob token is never printed.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}

		if used := viper.ConfigFileUsed(); used != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "# loaded from %s\n", used)
		}
		return nil
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the blob lookup cache",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show cache location and entry count",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(func(dir string, c *cache.BadgerCache) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Cache: %s\nEntries: %d\n", dir, c.Size())
			return nil
		})
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached blob lookup",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(func(dir string, c *cache.BadgerCache) error {
			n := c.Size()
			if err := c.Clear(); err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached lookup(s) from %s\n", n, dir)
			return nil
		})
	},
}

func init() {
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

// withCache opens the configured cache directory for the duration of fn
func withCache(fn func(dir string, c *cache.BadgerCache) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dir := utils.ExpandPath(cfg.Cache.Directory)
	c, err := cache.NewBadgerCache(cache.Options{Directory: dir})
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer c.Close()

	return fn(dir, c)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and repository layout",
	Long:  "Verifies that the repository root, documents, manifest and credentials are usable before a sync.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Checking cover sync setup...")
		allPassed := true

		cfg, err := loadConfig()
		fmt.Fprint(out, "  Config: ")
		if err != nil {
			fmt.Fprintf(out, "FAILED (%v)\n", err)
			return err
		}
		if used := viper.ConfigFileUsed(); used != "" {
			fmt.Fprintf(out, "OK (%s)\n", used)
		} else {
			fmt.Fprintln(out, "OK (defaults)")
		}

		fmt.Fprint(out, "  Repository root: ")
		root, err := doctorRoot(cfg)
		if err != nil {
			fmt.Fprintf(out, "FAILED (%v)\n", err)
			return err
		}
		fmt.Fprintf(out, "OK (%s)\n", root)

		fmt.Fprint(out, "  Documents: ")
		docs, err := app.FindDocuments(root, cfg.Documents)
		switch {
		case err != nil:
			fmt.Fprintf(out, "FAILED (%v)\n", err)
			allPassed = false
		case len(docs) == 0:
			fmt.Fprintln(out, "WARN (no documents match)")
		default:
			fmt.Fprintf(out, "OK (%d)\n", len(docs))
		}

		fmt.Fprint(out, "  Credential: ")
		switch {
		case cfg.Blob.DryRun || dryRun:
			fmt.Fprintln(out, "OK (dry-run, not required)")
		case cfg.RequireCredential() != nil:
			fmt.Fprintf(out, "MISSING (set %s)\n", config.EnvBlobToken)
			allPassed = false
		default:
			fmt.Fprintln(out, "OK")
		}

		fmt.Fprint(out, "  Manifest: ")
		manifestPath := utils.ResolveUnder(root, cfg.Manifest.Path)
		if status := checkManifest(manifestPath); status != "" {
			fmt.Fprintln(out, status)
		}

		fmt.Fprint(out, "  Write permissions: ")
		if checkWritePermissions(filepath.Dir(manifestPath)) {
			fmt.Fprintln(out, "OK")
		} else {
			fmt.Fprintln(out, "FAILED")
			allPassed = false
		}

		fmt.Fprintln(out)
		if allPassed {
			fmt.Fprintln(out, "All critical checks passed!")
		} else {
			fmt.Fprintln(out, "Some checks failed. Please resolve the issues above.")
		}
		return nil
	},
}

func doctorRoot(cfg *config.Config) (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if cfg.Root != "" {
		return utils.ResolveUnder(wd, cfg.Root), nil
	}
	client := gitClient
	if client == nil {
		client = git.NewClient()
	}
	return git.FindRoot(client, wd)
}

// checkManifest reports whether the manifest at path can be used as-is
func checkManifest(path string) string {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "OK (will be created)"
	}
	if err != nil {
		return fmt.Sprintf("WARN (%v)", err)
	}
	m, err := manifest.Parse(data)
	if err != nil {
		return fmt.Sprintf("WARN (%v, will be rebuilt)", err)
	}
	return fmt.Sprintf("OK (%d items)", len(m.Items))
}

// checkWritePermissions checks if files can be created in dir, or in its
// nearest existing parent when dir does not exist yet
func checkWritePermissions(dir string) bool {
	for {
		if info, err := os.Stat(dir); err == nil {
			if !info.IsDir() {
				return false
			}
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}

	f, err := os.CreateTemp(dir, ".coversync_test_write-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Full())
	},
}
