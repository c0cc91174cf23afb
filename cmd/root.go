// -- cmd/root.go --
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/htmlview/internal/config"
	"github.com/xkilldash9x/htmlview/internal/observability"
)

type contextKey string

const configKey contextKey = "config"

// newRootCmd builds the command tree around its own viper instance, so
// every invocation (and every test) starts from a clean configuration.
func newRootCmd() *cobra.Command {
	var cfgFile string
	v := viper.New()
	config.SetDefaults(v)

	cmd := &cobra.Command{
		Use:           "htmlview",
		Short:         "htmlview lays out HTML documents styled with CSS.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initializeConfig(v, cfgFile); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}
			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				return fmt.Errorf("failed to load or validate config: %w", err)
			}

			observability.InitializeLogger(cfg.Logger)
			observability.GetLogger().Debug("Starting htmlview", zap.String("version", Version))

			cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./htmlview.yaml)")
	cmd.SetVersionTemplate(`{{printf "%s version %s\n" .Name .Version}}`)

	cmd.AddCommand(newRenderCmd(v))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the command line. ctx is cancelled on interrupt by the
// caller.
func Execute(ctx context.Context, args []string) error {
	root := newRootCmd()
	root.SetArgs(args)
	defer observability.Sync()
	if err := root.ExecuteContext(ctx); err != nil {
		observability.GetLogger().Error("Command execution failed", zap.Error(err))
		return err
	}
	return nil
}

// initializeConfig reads the config file, if any. A missing default file is
// not an error; a missing explicit file is.
func initializeConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("htmlview")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// configFromContext returns the configuration stored by the root command.
func configFromContext(ctx context.Context) (*config.Config, error) {
	if ctx != nil {
		if cfg, ok := ctx.Value(configKey).(*config.Config); ok && cfg != nil {
			return cfg, nil
		}
	}
	return nil, errors.New("configuration not initialized")
}
