package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/symlump/internal/config"
	"github.com/matzehuels/symlump/pkg/buildinfo"
	"github.com/matzehuels/symlump/pkg/cache"
	"github.com/matzehuels/symlump/pkg/group"
	"github.com/matzehuels/symlump/pkg/pipeline"
	"github.com/matzehuels/symlump/pkg/record"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "symlump"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Symlump measures how far network symmetries reduce a network",
		Long: `Symlump reads automorphism generators and search statistics for each network,
computes the automorphism group's order and conjugacy classes, counts the orbits
of binary node labelings with Pólya's theorem, and reports the reduction metric
delta = round(N·log10(M) / log10(rho)).`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./"+config.DefaultPath+" if present)")

	root.AddCommand(c.runCommand())
	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.verifyCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner writing to store.
func (c *CLI) newRunner(ctx context.Context, store record.Store, noCache bool) (*pipeline.Runner, error) {
	oracle, err := newOracle(c.cfg.Oracle)
	if err != nil {
		return nil, err
	}
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if ns := c.cfg.Cache.Namespace; ns != "" {
		keyer = cache.NewScopedKeyer(nil, ns)
	}
	return pipeline.NewRunner(oracle, store, cc, keyer, c.Logger), nil
}

// newOracle builds the configured group oracle. External engines are
// checked up front so a missing installation fails before any work starts.
func newOracle(cfg config.Oracle) (group.Oracle, error) {
	switch cfg.Kind {
	case config.OracleGAP:
		gap := group.NewGAP(cfg.GAPPath)
		if err := gap.Check(); err != nil {
			return nil, err
		}
		return group.Limit(gap, int64(cfg.Concurrency)), nil
	default:
		closure := group.NewClosure(cfg.MaxOrder)
		if cfg.Concurrency > 0 {
			return group.Limit(closure, int64(cfg.Concurrency)), nil
		}
		return closure, nil
	}
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, c.cfg.Cache.RedisURL)
	default:
		dir := c.cfg.Cache.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	}
}

// newStore opens the file store under outDir and, when configured, adds the
// Mongo store behind it.
func (c *CLI) newStore(ctx context.Context, outDir string) (*record.FileStore, record.Store, error) {
	fs, err := record.NewFileStore(outDir)
	if err != nil {
		return nil, nil, err
	}
	if c.cfg.Mongo.URI == "" {
		return fs, fs, nil
	}
	ms, err := record.NewMongoStore(ctx, c.cfg.Mongo.URI, c.cfg.Mongo.Database, c.cfg.Mongo.Collection)
	if err != nil {
		return nil, nil, err
	}
	return fs, record.Multi(fs, ms), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/symlump/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// analysisFlags are the pipeline flags shared by run, analyze and verify.
type analysisFlags struct {
	workers   int
	timeout   time.Duration
	nodeLimit int
	alphabet  int
	verify    bool
	refresh   bool
	noCache   bool
}

func (f *analysisFlags) register(cmd *cobra.Command, batch bool) {
	if batch {
		cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "concurrent networks (default: number of CPUs)")
	}
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "per-network time budget (default 2m)")
	cmd.Flags().IntVar(&f.nodeLimit, "node-limit", 0, "refuse networks with at least this many nodes")
	cmd.Flags().IntVarP(&f.alphabet, "alphabet", "k", 0, "labels per node (default 2)")
	cmd.Flags().BoolVar(&f.verify, "verify", false, "cross-check small networks by brute force")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached records")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the record cache")
}

// options merges the config file's analysis section with flags that were
// set explicitly.
func (c *CLI) options(cmd *cobra.Command, f *analysisFlags) (pipeline.Options, error) {
	opts := c.cfg.PipelineOptions()
	flags := cmd.Flags()
	if flags.Changed("workers") {
		opts.Workers = f.workers
	}
	if flags.Changed("timeout") {
		opts.Timeout = f.timeout
	}
	if flags.Changed("node-limit") {
		opts.NodeLimit = f.nodeLimit
	}
	if flags.Changed("alphabet") {
		opts.Alphabet = f.alphabet
	}
	if flags.Changed("verify") {
		opts.Verify = f.verify
	}
	opts.Refresh = f.refresh
	return opts, opts.ValidateAndSetDefaults()
}
