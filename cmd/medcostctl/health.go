package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	grpcpresentation "github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/presentation/grpc"
	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/pkg/tlsutil"
)

func newHealthCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Query the predictor's gRPC health service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds := insecure.NewCredentials()
			if v.GetBool("grpc.tls") {
				var err error
				creds, err = tlsutil.ClientTLSConfig(tlsutil.ClientOptions{
					CAFile:             v.GetString("grpc.ca_file"),
					ServerName:         v.GetString("grpc.server_name"),
					InsecureSkipVerify: v.GetBool("grpc.insecure_skip_verify"),
				})
				if err != nil {
					return err
				}
			}

			status, err := checkHealth(cmd.Context(), v.GetString("grpc.addr"), v.GetString("grpc.service"), creds, v.GetDuration("grpc.timeout"))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), status.String())
			if status != healthpb.HealthCheckResponse_SERVING {
				return fmt.Errorf("service is %s", status)
			}
			return nil
		},
	}

	cmd.Flags().String("addr", "localhost:9000", "gRPC address of the predictor")
	cmd.Flags().String("service", grpcpresentation.HealthService, "health service name; empty checks the whole server")
	cmd.Flags().Duration("timeout", 5*time.Second, "request timeout")
	cmd.Flags().Bool("tls", false, "connect over TLS")
	cmd.Flags().String("ca-file", "", "CA certificate for TLS; system roots when empty")
	cmd.Flags().String("server-name", "", "override the TLS server name")
	cmd.Flags().Bool("insecure-skip-verify", false, "skip TLS certificate verification (development only)")

	_ = v.BindPFlag("grpc.addr", cmd.Flags().Lookup("addr"))
	_ = v.BindPFlag("grpc.service", cmd.Flags().Lookup("service"))
	_ = v.BindPFlag("grpc.timeout", cmd.Flags().Lookup("timeout"))
	_ = v.BindPFlag("grpc.tls", cmd.Flags().Lookup("tls"))
	_ = v.BindPFlag("grpc.ca_file", cmd.Flags().Lookup("ca-file"))
	_ = v.BindPFlag("grpc.server_name", cmd.Flags().Lookup("server-name"))
	_ = v.BindPFlag("grpc.insecure_skip_verify", cmd.Flags().Lookup("insecure-skip-verify"))

	return cmd
}

func checkHealth(ctx context.Context, addr, service string, creds credentials.TransportCredentials, timeout time.Duration) (healthpb.HealthCheckResponse_ServingStatus, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(creds))
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, fmt.Errorf("dialing %s: %w", addr, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, fmt.Errorf("health check %s: %w", addr, err)
	}
	return resp.GetStatus(), nil
}
