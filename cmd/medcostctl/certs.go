package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/pkg/tlsutil"
)

func newDevCertsCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev-certs",
		Short: "Generate a development CA and server certificate for gRPC TLS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pki, err := tlsutil.NewDevPKI(v.GetStringSlice("certs.hosts"), v.GetDuration("certs.validity"))
			if err != nil {
				return err
			}
			dir := v.GetString("certs.out")
			if err := pki.WriteFiles(dir); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "wrote %s, %s, %s and %s to %s\n",
				tlsutil.CAFile, tlsutil.CAKeyFile, tlsutil.ServerFile, tlsutil.ServerKeyFile, dir)
			fmt.Fprintf(w, "GRPC_TLS_CERT_FILE=%s\n", filepath.Join(dir, tlsutil.ServerFile))
			fmt.Fprintf(w, "GRPC_TLS_KEY_FILE=%s\n", filepath.Join(dir, tlsutil.ServerKeyFile))
			return nil
		},
	}

	cmd.Flags().String("out", "./certs", "output directory")
	cmd.Flags().StringSlice("hosts", []string{"localhost", "127.0.0.1"}, "DNS names and IPs for the server certificate")
	cmd.Flags().Duration("validity", tlsutil.DefaultDevValidity, "certificate lifetime")

	_ = v.BindPFlag("certs.out", cmd.Flags().Lookup("out"))
	_ = v.BindPFlag("certs.hosts", cmd.Flags().Lookup("hosts"))
	_ = v.BindPFlag("certs.validity", cmd.Flags().Lookup("validity"))

	return cmd
}
