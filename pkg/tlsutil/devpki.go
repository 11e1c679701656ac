package tlsutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

// File names written by DevPKI.WriteFiles.
const (
	CAFile        = "ca.pem"
	CAKeyFile     = "ca-key.pem"
	ServerFile    = "server.pem"
	ServerKeyFile = "server-key.pem"
)

// DefaultDevValidity is used when NewDevPKI gets a non-positive validity.
const DefaultDevValidity = 365 * 24 * time.Hour

// keyPair is a certificate with its private key, both in PEM.
type keyPair struct {
	cert    *x509.Certificate
	key     *ecdsa.PrivateKey
	certPEM []byte
	keyPEM  []byte
}

// DevPKI is a development CA and one server certificate signed by it, held
// in memory until written.
type DevPKI struct {
	ca     keyPair
	server keyPair
}

// NewDevPKI issues a CA and a server certificate covering hosts. Each host is
// added as an IP SAN when it parses as an IP, else as a DNS SAN; the first
// host is also the common name.
func NewDevPKI(hosts []string, validity time.Duration) (*DevPKI, error) {
	if len(hosts) == 0 {
		return nil, errors.New("tlsutil: at least one host is required")
	}
	if validity <= 0 {
		validity = DefaultDevValidity
	}
	notBefore := time.Now().Add(-time.Minute)
	notAfter := notBefore.Add(validity)

	ca, err := issue(&x509.Certificate{
		Subject:               pkix.Name{Organization: []string{"medcost dev CA"}},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: issue CA: %w", err)
	}

	tmpl := &x509.Certificate{
		Subject:     pkix.Name{Organization: []string{"medcost dev"}, CommonName: hosts[0]},
		NotBefore:   notBefore,
		NotAfter:    notAfter,
		KeyUsage:    x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			tmpl.IPAddresses = append(tmpl.IPAddresses, ip)
		} else {
			tmpl.DNSNames = append(tmpl.DNSNames, h)
		}
	}
	server, err := issue(tmpl, &ca)
	if err != nil {
		return nil, fmt.Errorf("tlsutil: issue server certificate: %w", err)
	}

	return &DevPKI{ca: ca, server: server}, nil
}

// issue signs tmpl with parent, or self-signs when parent is nil.
func issue(tmpl *x509.Certificate, parent *keyPair) (keyPair, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return keyPair{}, err
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return keyPair{}, err
	}
	tmpl.SerialNumber = serial

	signer, signerCert := key, tmpl
	if parent != nil {
		signer, signerCert = parent.key, parent.cert
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, signerCert, &key.PublicKey, signer)
	if err != nil {
		return keyPair{}, err
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return keyPair{}, err
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return keyPair{}, err
	}

	return keyPair{
		cert:    cert,
		key:     key,
		certPEM: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
		keyPEM:  pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}),
	}, nil
}

// CACertificate returns the parsed CA certificate.
func (p *DevPKI) CACertificate() *x509.Certificate { return p.ca.cert }

// ServerCertificate returns the server certificate and key for tls.Config.
func (p *DevPKI) ServerCertificate() (tls.Certificate, error) {
	return tls.X509KeyPair(p.server.certPEM, p.server.keyPEM)
}

// WriteFiles writes the CA and server material to dir with mode 0600.
func (p *DevPKI) WriteFiles(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("tlsutil: mkdir %s: %w", dir, err)
	}
	files := []struct {
		name string
		data []byte
	}{
		{CAFile, p.ca.certPEM},
		{CAKeyFile, p.ca.keyPEM},
		{ServerFile, p.server.certPEM},
		{ServerKeyFile, p.server.keyPEM},
	}
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, f.data, 0o600); err != nil {
			return fmt.Errorf("tlsutil: write %s: %w", path, err)
		}
	}
	return nil
}
