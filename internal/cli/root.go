// Package cli holds the churnguard cobra commands.
package cli

import (
	"github.com/YuminosukeSato/churnguard/internal/artifact"
	"github.com/YuminosukeSato/churnguard/internal/config"
	"github.com/YuminosukeSato/churnguard/internal/prediction"
	"github.com/YuminosukeSato/churnguard/pkg/log"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// app is the state shared by every subcommand after the root pre-run.
type app struct {
	cfg    *config.Config
	logger log.Logger

	envFiles []string
	environ  func() []string
}

// RootCmd returns the churnguard command tree.
func RootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "churnguard",
		Short:         "Serve customer churn predictions from fitted artifacts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringArrayVar(&a.envFiles, "env-file", nil, "load variables from a .env file (repeatable)")
	flags.String("model", "", "classifier artifact (.json or .gob)")
	flags.String("encoders", "", "encoders artifact (.json or .gob)")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.Bool("log-json", false, "write logs as JSON lines")

	root.AddCommand(
		ServeCmd(a),
		PredictCmd(a),
		EvaluateCmd(a),
		VersionCmd(),
	)
	return root
}

// setup loads configuration, with changed flags taking precedence over
// the environment, and installs the process logger.
func (a *app) setup(cmd *cobra.Command) error {
	overrides := map[string]any{}
	flagToKey := map[string]string{
		"model":     "artifacts.model_path",
		"encoders":  "artifacts.encoders_path",
		"log-level": "log.level",
		"log-json":  "log.json",
		"host":      "server.host",
		"port":      "server.port",
		"metrics":   "metrics.enabled",
	}
	for name, key := range flagToKey {
		f := cmd.Flags().Lookup(name)
		if f != nil && f.Changed {
			overrides[key] = f.Value.String()
		}
	}

	cfg, err := config.Load(config.Options{
		EnvFiles:  a.envFiles,
		Overrides: overrides,
		Environ:   a.environ,
	})
	if err != nil {
		return err
	}
	a.cfg = cfg

	provider, err := log.SetupLogger(log.Options{
		Level:  cfg.Log.Level,
		JSON:   cfg.Log.JSON,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	a.logger = provider.GetLoggerWithName("cli")
	return nil
}

// loadService loads both artifacts and builds the prediction service.
// A load failure is fatal for every command that predicts.
func (a *app) loadService(opts ...prediction.Option) (*prediction.Service, *artifact.Artifacts, error) {
	store := artifact.NewStore(a.cfg.Artifacts.ModelPath, a.cfg.Artifacts.EncodersPath)
	arts, err := store.Load()
	if err != nil {
		return nil, nil, err
	}
	svc, err := prediction.NewServiceFromArtifacts(arts, opts...)
	if err != nil {
		return nil, nil, err
	}
	return svc, arts, nil
}
