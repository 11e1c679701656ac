package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newValidateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load an artifact set and run the same checks as service start-up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(cmd, v)

			set, err := loadArtifacts(cmd, v, logger)
			if err != nil {
				return err
			}
			if _, _, err := set.Pipeline(logger, nil); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "artifacts:  %s\n", v.GetString("artifacts"))
			fmt.Fprintf(w, "version:    %s\n", set.Version())
			if set.Manifest.Description != "" {
				fmt.Fprintf(w, "about:      %s\n", set.Manifest.Description)
			}
			fmt.Fprintf(w, "columns:    %d (%s)\n", set.Schema.Len(), strings.Join(set.Schema.Names(), ", "))
			fmt.Fprintf(w, "scaled:     %s\n", strings.Join(set.Scaler.Features(), ", "))
			fmt.Fprintf(w, "model:      %d features\n", set.Regressor.NumFeatures())
			if len(set.Manifest.SHA256) > 0 {
				fmt.Fprintf(w, "checksums:  %d verified\n", len(set.Manifest.SHA256))
			}
			_, err = fmt.Fprintln(w, "OK")
			return err
		},
	}
}
