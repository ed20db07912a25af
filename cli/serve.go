package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	qhttp "insurancecost/http"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the model and start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			// 1. Load config
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Http.Port = port
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			// 2. Load model, fatal when every strategy fails
			svc, err := newService(cfg, logger)
			if err != nil {
				logger.Error("model unavailable, refusing to start", zap.Error(err))
				return err
			}

			page, closePage, err := svc.page()
			if err != nil {
				logger.Error("index page unavailable", zap.Error(err))
				return err
			}
			defer closePage()

			// 3. Start HTTP server
			handlers := qhttp.NewHandlers(svc.predictor, page, svc.rounding(), svc.column, logger)
			server := qhttp.NewServer(qhttp.ServerConfig{
				Port:           cfg.Http.Port,
				ReadTimeout:    cfg.Http.ReadTimeout,
				MaxBodyBytes:   cfg.Http.MaxBodyBytes,
				AllowedOrigins: cfg.Http.AllowedOrigins,
				StaticDir:      cfg.Static.Dir,
			}, handlers, logger)

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			// 4. Handle graceful shutdown
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case err := <-errCh:
				if err != nil {
					logger.Error("HTTP server failed", zap.Error(err))
				}
				return err
			case sig := <-quit:
				logger.Info("shutting down", zap.String("signal", sig.String()), zap.String("addr", server.Addr()))
			}

			if err := server.Stop(); err != nil {
				logger.Warn("server forced to shutdown", zap.Error(err))
			}
			logger.Info("exiting")
			return nil
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides http.port)")
	return cmd
}
