package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jcii/hunt/internal/dedup"
	"github.com/jcii/hunt/internal/filtering"
	"github.com/jcii/hunt/internal/logger"
	"github.com/jcii/hunt/internal/metrics"
	"github.com/jcii/hunt/internal/rank"
	"github.com/jcii/hunt/internal/store"
	"github.com/jcii/hunt/internal/tracker"
)

const (
	app = "hunt"
)

type Config struct {
	DB      string         `mapstructure:"db"`
	Rank    rank.Config    `mapstructure:"rank"`
	Dedup   dedup.Config   `mapstructure:"dedup"`
	Filters *FiltersConfig `mapstructure:"filters"`
	Metrics *MetricsConfig `mapstructure:"metrics"`
}

type FiltersConfig struct {
	// SkipArtifacts disables the navigation artifact filter for every ingest.
	SkipArtifacts    bool     `mapstructure:"skip-artifacts"`
	ExcludeFile      string   `mapstructure:"exclude-file"`
	BlockedEmployers []string `mapstructure:"blocked-employers"`
}

type MetricsConfig struct {
	// Textfile is where resolution counters are written after ingest and cleanup.
	Textfile string `mapstructure:"textfile"`
}

func (c *Config) Validate() error {
	if c.DB == "" {
		return errors.New("db path is empty")
	}
	if err := c.Dedup.Validate(); err != nil {
		return err
	}
	return c.Rank.Validate()
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hunt tracks job postings from noisy sources, drops duplicates and ranks what is left",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("db", "HUNT_DB"); err != nil {
		log.Fatalf("binding HUNT_DB environment variable: %v", err)
	}

	viper.SetDefault("db", defaultDBPath())
	viper.SetDefault("rank.pay-ceiling", rank.DefaultPayCeiling)
	viper.SetDefault("dedup.fuzzy-threshold", dedup.DefaultFuzzyThreshold)
	viper.SetDefault("dedup.min-substring-length", 0)
	viper.SetDefault("dedup.workers", dedup.DefaultWorkers)
	viper.SetDefault("dedup.max-batch", dedup.DefaultMaxBatch)
	viper.SetDefault("filters.skip-artifacts", false)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hunt.yaml in current directory)")
	rootCmd.PersistentFlags().String("db", "", "path to the database file (env HUNT_DB)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Without an explicit --config the file is optional.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}
	if config.Filters == nil {
		config.Filters = &FiltersConfig{}
	}
	if config.Metrics == nil {
		config.Metrics = &MetricsConfig{}
	}
	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// defaultDBPath follows the XDG data directory layout.
func defaultDBPath() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, app, app+".db")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", app, app+".db")
	}
	return app + ".db"
}

func newLogger() *zap.Logger {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return logger
}

// session is what every command working on the database needs.
type session struct {
	ctx     context.Context
	config  *Config
	logger  *zap.Logger
	db      *store.DB
	tracker *tracker.Service
}

// openSession loads the config and opens the database. Failures are fatal.
func openSession() *session {
	ctx := context.Background()
	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	db, err := store.Open(config.DB)
	if err != nil {
		logger.Fatal("opening the database", zap.Error(err), zap.String("path", config.DB))
	}
	logger.Debug("database opened", zap.String("path", db.Path()))

	svc := tracker.New(tracker.SQLite(db), tracker.Options{
		Resolver: dedup.New(config.Dedup, logger),
		Scorer:   rank.WeightedScorer{Cfg: config.Rank},
		Filters: &filtering.Config{
			BlockedEmployers: config.Filters.BlockedEmployers,
			ExcludeFile:      config.Filters.ExcludeFile,
		},
		Metrics: metrics.New(),
		Logger:  logger,
	})

	return &session{ctx: ctx, config: config, logger: logger, db: db, tracker: svc}
}

func (s *session) close() {
	if err := s.db.Close(); err != nil {
		s.logger.Warn("closing the database", zap.Error(err))
	}
	_ = s.logger.Sync()
}

// writeMetrics writes the counters when a textfile is configured.
func (s *session) writeMetrics() {
	path := s.config.Metrics.Textfile
	if path == "" {
		return
	}
	if err := s.tracker.Metrics().WriteTextfile(path); err != nil {
		s.logger.Warn("writing metrics", zap.Error(err))
		return
	}
	s.logger.Debug("metrics written", zap.String("path", path))
}
