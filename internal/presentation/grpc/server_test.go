package grpc

import (
	"context"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/pkg/tlsutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startBufServer serves s on an in-memory listener and returns a connected
// health client.
func startBufServer(t *testing.T, s *Server, creds credentials.TransportCredentials) healthpb.HealthClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(creds),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return healthpb.NewHealthClient(conn)
}

func check(t *testing.T, client healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestServer_HealthStartsNotServing(t *testing.T) {
	s, err := NewServer("127.0.0.1:0", Options{}, discardLogger())
	require.NoError(t, err)
	client := startBufServer(t, s, insecure.NewCredentials())

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, HealthService))
}

func TestServer_SetServing(t *testing.T) {
	s, err := NewServer("127.0.0.1:0", Options{}, discardLogger())
	require.NoError(t, err)
	client := startBufServer(t, s, insecure.NewCredentials())

	s.SetServing(true)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, HealthService))

	s.SetServing(false)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, HealthService))
}

func TestServer_UnknownService(t *testing.T) {
	s, err := NewServer("127.0.0.1:0", Options{}, discardLogger())
	require.NoError(t, err)
	client := startBufServer(t, s, insecure.NewCredentials())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: "payments.Ledger"})
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestServer_TLS(t *testing.T) {
	dir := t.TempDir()
	pki, err := tlsutil.NewDevPKI([]string{"localhost", "127.0.0.1"}, time.Hour)
	require.NoError(t, err)
	require.NoError(t, pki.WriteFiles(dir))

	s, err := NewServer("127.0.0.1:0", Options{
		TLSCertFile: filepath.Join(dir, tlsutil.ServerFile),
		TLSKeyFile:  filepath.Join(dir, tlsutil.ServerKeyFile),
	}, discardLogger())
	require.NoError(t, err)

	creds, err := tlsutil.ClientTLSConfig(tlsutil.ClientOptions{
		CAFile:     filepath.Join(dir, tlsutil.CAFile),
		ServerName: "localhost",
	})
	require.NoError(t, err)

	client := startBufServer(t, s, creds)
	s.SetServing(true)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, HealthService))
}

func TestNewServer_BadTLSFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := NewServer("127.0.0.1:0", Options{
		TLSCertFile: filepath.Join(dir, "missing.pem"),
		TLSKeyFile:  filepath.Join(dir, "missing-key.pem"),
	}, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gRPC TLS credentials")
}

func TestRecoveryInterceptor(t *testing.T) {
	interceptor := RecoveryInterceptor(discardLogger())
	info := &grpc.UnaryServerInfo{FullMethod: "/test.Service/Boom"}

	_, err := interceptor(context.Background(), nil, info, func(context.Context, interface{}) (interface{}, error) {
		panic("boom")
	})
	require.Error(t, err)
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	interceptor := LoggingInterceptor(discardLogger())
	info := &grpc.UnaryServerInfo{FullMethod: "/test.Service/Echo"}

	resp, err := interceptor(context.Background(), "in", info, func(_ context.Context, req interface{}) (interface{}, error) {
		return req, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "in", resp)
}
