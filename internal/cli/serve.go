package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/YuminosukeSato/churnguard/internal/prediction"
	"github.com/YuminosukeSato/churnguard/internal/server"
	"github.com/YuminosukeSato/churnguard/internal/telemetry"
	"github.com/YuminosukeSato/churnguard/pkg/log"
	"github.com/spf13/cobra"
)

// ServeCmd runs the HTTP API until SIGINT or SIGTERM.
func ServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the artifacts and serve predictions over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().String("host", "", "listen host")
	cmd.Flags().Int("port", 0, "listen port")
	cmd.Flags().Bool("metrics", true, "expose prometheus metrics")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	var (
		opts    []prediction.Option
		srvOpts []server.Option
		metrics *telemetry.Metrics
	)
	if a.cfg.Metrics.Enabled {
		metrics = telemetry.New()
		opts = append(opts, prediction.WithRecorder(metrics))
		srvOpts = append(srvOpts, server.WithMetrics(a.cfg.Metrics.Path, metrics.Handler(), metrics.GinMiddleware()))
	}

	svc, arts, err := a.loadService(opts...)
	if err != nil {
		a.logger.Error("Refusing to serve predictions", err,
			log.PhaseKey, log.PhaseStartup,
			log.ErrorCodeKey, log.ErrorArtifactLoad,
		)
		return err
	}
	if metrics != nil {
		metrics.SetModelInfo(arts.ModelType, arts.Version)
	}

	return server.New(a.cfg.Server, svc, srvOpts...).Run(ctx)
}
