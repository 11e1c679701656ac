package main

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/infrastructure/artifact"
	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/pkg/observability"
)

// envPrefix namespaces environment overrides, e.g. MEDCOST_ARTIFACTS.
const envPrefix = "MEDCOST"

// newRootCmd builds the command tree with its own viper instance so flag
// bindings never leak between invocations.
func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "medcostctl",
		Short: "Operate the medical cost predictor",
		Long: `medcostctl runs the cost model offline, validates artifact sets,
checks a running predictor over gRPC health, and follows prediction events.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(v, cfgFile)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file with flag defaults")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("artifacts", "./models", "artifact directory or s3://bucket/prefix")
	rootCmd.PersistentFlags().String("aws-region", "", "AWS region for s3:// artifacts")

	_ = v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("artifacts", rootCmd.PersistentFlags().Lookup("artifacts"))
	_ = v.BindPFlag("aws_region", rootCmd.PersistentFlags().Lookup("aws-region"))

	rootCmd.AddCommand(
		newPredictCmd(v),
		newValidateCmd(v),
		newTailCmd(v),
		newHealthCmd(v),
		newDevCertsCmd(v),
	)
	return rootCmd
}

// initConfig layers the optional config file and MEDCOST_* environment
// variables under the command-line flags.
func initConfig(v *viper.Viper, cfgFile string) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if cfgFile == "" {
		return nil
	}
	v.SetConfigFile(cfgFile)
	return v.ReadInConfig()
}

func newLogger(cmd *cobra.Command, v *viper.Viper) *slog.Logger {
	return observability.NewLogger(cmd.ErrOrStderr(), observability.LogConfig{
		Level:  v.GetString("log_level"),
		Format: "text",
	})
}

// loadArtifacts opens and validates the configured artifact set.
func loadArtifacts(cmd *cobra.Command, v *viper.Viper, logger *slog.Logger) (*artifact.Set, error) {
	source, err := artifact.NewSource(cmd.Context(), v.GetString("artifacts"), v.GetString("aws_region"))
	if err != nil {
		return nil, err
	}
	return artifact.NewLoader(source, logger).Load(cmd.Context())
}
