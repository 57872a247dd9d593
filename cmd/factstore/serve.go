package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/aleksaelezovic/factstore/internal/logger"
	"github.com/aleksaelezovic/factstore/pkg/server"
	"github.com/aleksaelezovic/factstore/pkg/sparql/results"
	"github.com/aleksaelezovic/factstore/pkg/sparql/tripleterm"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var (
	serveAddr string
	serveData []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if _, err := loadFiles(st, serveData); err != nil {
			return err
		}

		addr := cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		if !cfg.Log.JSON && cfg.Log.Level != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}

		srv := server.NewServer(st, addr,
			server.WithLogger(logger.Named("http")),
			server.WithTransformer(tripleterm.NewTransformer(tripleterm.WithMaxIterations(cfg.Transform.MaxIterations))),
			server.WithResultOptions(results.Options{Pretty: cfg.Results.Pretty, Indent: cfg.Results.Indent}),
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().StringSliceVarP(&serveData, "data", "d", nil, "N-Triples files to load before serving")
}
