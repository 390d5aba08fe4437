package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"WooFeedSync/internal/database"
	"WooFeedSync/internal/feed"
	handlers "WooFeedSync/internal/handlers/http"
	"WooFeedSync/pkg/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP control API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := logging.GetLogger()
	logger.Info("Start Serve")
	defer logger.Info("End Serve")

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	ctx := cmd.Context()
	// Every request sees the file as it is on disk now.
	sheet := func(name string) func() (*feed.Sheet, error) {
		return func() (*feed.Sheet, error) {
			if err := s.wb.Reload(); err != nil {
				return nil, err
			}
			return s.wb.Sheet(name)
		}
	}
	h := handlers.NewHandler(ctx, s.service, database.NewStopFlag(s.db), sheet(cfg.FEED.Sheet), sheet(cfg.SYNC.RulesSheet))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.SERVICE.PORT),
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			logger.Error(err)
		}
	}()

	logger.Infof("listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
