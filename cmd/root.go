package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/px-cli/internal/adapters/repository"
	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/ports"
	"github.com/kamal-hamza/px-cli/internal/core/services"
	"github.com/kamal-hamza/px-cli/internal/logger"
	"github.com/kamal-hamza/px-cli/pkg/config"
	"github.com/kamal-hamza/px-cli/pkg/paths"
	"github.com/kamal-hamza/px-cli/pkg/ui"
)

var (
	// Global locations and settings
	appPaths  *paths.Paths
	appConfig *config.Config

	// Library backend
	photoLibrary ports.PhotoLibrary

	// Services
	sizeEstimator *services.SizeEstimator
	listService   *services.ListService
	filterService *services.FilterService
	deleteService *services.DeleteService
	statsService  *services.StatsService

	// Repositories
	prefsRepo *repository.FilePreferenceRepository

	// Global flags
	flagConfigPath string
	flagLibrary    string
	flagLogLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "px",
	Short: "PX - A terminal photo library browser",
	Long: ui.StyleTitle.Render("PX") + " - Photo Library Browser\n\n" +
		"Browse, sort, filter and prune a photo library from the terminal.\n" +
		"Works with a local directory, an Immich server or an S3 bucket.",
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: shutdownApp,
	RunE:               runGallery,
	SilenceUsage:       true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.FormatError(err.Error()))
		os.Exit(1)
	}
}

func init() {
	// Add subcommands
	rootCmd.AddCommand(galleryCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Config file (default $XDG_CONFIG_HOME/px/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&flagLibrary, "library", "L", "", "Library backend to use: local, immich or s3")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn or error")

	addGalleryFlags(rootCmd)
}

// needsLibrary reports whether a command talks to the photo library
func needsLibrary(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "init", "version", "help", "completion":
		return false
	}
	if cmd.Parent() != nil && cmd.Parent().Name() == "config" {
		return false
	}
	return cmd.Name() != "config"
}

// initializeApp initializes the application components
func initializeApp(cmd *cobra.Command, args []string) error {
	p, err := paths.New()
	if err != nil {
		return fmt.Errorf("failed to resolve paths: %w", err)
	}
	appPaths = p

	// Skip the rest for init command
	if cmd.Name() == "init" || cmd.Name() == "version" {
		return nil
	}

	if err := config.LoadEnv(appPaths.EnvPath, ".env"); err != nil {
		return err
	}

	configPath := appPaths.ConfigPath
	if flagConfigPath != "" {
		configPath = flagConfigPath
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if flagLibrary != "" {
		cfg.Library = flagLibrary
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}
	appConfig = cfg

	ui.SetTheme(cfg.ColorTheme)

	logOutput := cfg.Logging.Output
	if logOutput == "" {
		logOutput = appPaths.LogPath
	}
	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: logOutput,
	}); err != nil {
		return err
	}

	// Initialize repositories
	prefsRepo = repository.NewFilePreferenceRepository(appPaths.StatePath)

	if !needsLibrary(cmd) {
		return nil
	}

	lib, err := newLibrary(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	photoLibrary = lib
	logger.Debug("library ready", logger.KeyLibrary, lib.Name(), "command", cmd.Name())

	// Initialize services
	sizeEstimator = services.NewSizeEstimator(photoLibrary, cfg.SizeTimeout, cfg.MaxWorkers)
	listService = services.NewListService(photoLibrary, sizeEstimator, cfg.PageSize)
	filterService = services.NewFilterService(photoLibrary, sizeEstimator)
	deleteService = services.NewDeleteService(photoLibrary)
	statsService = services.NewStatsService(photoLibrary, listService)

	return nil
}

func shutdownApp(cmd *cobra.Command, args []string) error {
	return logger.Close()
}

// newDeleteGate returns a confirmation gate backed by the stored preference
func newDeleteGate() *services.DeleteGate {
	return services.NewDeleteGate(prefsRepo)
}

// defaultSortKey returns the configured initial sort key
func defaultSortKey() domain.SortKey {
	key, err := domain.ParseSortKey(appConfig.DefaultSort)
	if err != nil {
		return domain.SortByDate
	}
	return key
}

// getContext returns a context that is cancelled on interrupt
func getContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
