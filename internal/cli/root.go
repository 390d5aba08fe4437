package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"WooFeedSync/internal/config"
	"WooFeedSync/internal/database"
	"WooFeedSync/internal/feed"
	"WooFeedSync/internal/sync"
	"WooFeedSync/internal/version"
	"WooFeedSync/pkg/logging"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "woofeedsync",
	Short: "Reconcile a spreadsheet product feed with a WooCommerce catalog",
	Long: `woofeedsync reads product rows from an xlsx feed, creates or updates the
matching WooCommerce products, categories, brands, images and variations,
and writes the outcome of every row back into the feed.`,
	Version:           version.GetVersion().String(),
	PersistentPreRunE: setup,
	SilenceUsage:      true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "INI config file")
}

// Execute runs the CLI until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func setup(_ *cobra.Command, _ []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logging.Init(c.LOG.Dir, c.LOG.Debug == 1); err != nil {
		return errors.Wrap(err, "failed in logging.Init")
	}
	logging.GetLogger().Debugf("Version %s, config %s", version.GetVersion().String(), configPath)
	cfg = c
	return nil
}

func openDB() (*sqlx.DB, error) {
	return database.Open(cfg.DBSQLITE.DB)
}

// session is everything a command touching the feed needs. close saves nothing;
// write-backs are saved by the service.
type session struct {
	db      *sqlx.DB
	wb      *feed.Workbook
	service *sync.Service
}

func openSession() (*session, error) {
	db, err := openDB()
	if err != nil {
		return nil, err
	}
	wb, err := feed.Open(cfg.FEED.Path)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s, err := sync.NewFromConfig(cfg, wb, db)
	if err != nil {
		_ = wb.Close()
		_ = db.Close()
		return nil, err
	}
	return &session{db: db, wb: wb, service: s}, nil
}

func (s *session) close() {
	logger := logging.GetLogger()
	if err := s.wb.Close(); err != nil {
		logger.Error(err)
	}
	if err := s.db.Close(); err != nil {
		logger.Error(err)
	}
}
