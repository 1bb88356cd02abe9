// Package tlsmaterial implements on-demand generation, caching, and
// loading of the self-signed certificate the TLS listener presents (spec
// §4.B), grounded on original_source/server/src/tls.rs. Where the
// prototype hand-rolls base64 and PEM parsing, this uses the standard
// library's crypto/x509, encoding/pem, and encoding/base64 per the
// spec's own design note (§9): "Prefer a well-audited base64 decoder in
// any reimplementation."
package tlsmaterial

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	certDirName = ".ljc-certs"
	certFile    = "cert.pem"
	keyFile     = "key.pem"
	ipFile      = "ip.txt"

	dirPerm = 0o700
	keyPerm = 0o600
)

// notAfter matches the prototype's fixed 2036-01-01 expiry (spec §4.B).
var notAfter = time.Date(2036, time.January, 1, 0, 0, 0, 0, time.UTC)

// Dir returns the canonical cache directory, creating it with owner-only
// permissions if it doesn't exist (spec §3: "directory 0700").
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	dir := filepath.Join(home, certDirName)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("create cert dir: %w", err)
	}
	if err := os.Chmod(dir, dirPerm); err != nil {
		return "", fmt.Errorf("chmod cert dir: %w", err)
	}
	return dir, nil
}

// Load builds a *tls.Config for localIP, reusing the cached certificate
// when its recorded IP still matches, otherwise generating and caching a
// fresh one (spec §4.B).
func Load(localIP string) (*tls.Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	certPath := filepath.Join(dir, certFile)
	keyPath := filepath.Join(dir, keyFile)
	ipPath := filepath.Join(dir, ipFile)

	certPEM, keyPEM, err := loadCached(certPath, keyPath, ipPath, localIP)
	if err != nil {
		return nil, err
	}
	if certPEM == nil {
		certPEM, keyPEM, err = generateAndCache(certPath, keyPath, ipPath, localIP)
		if err != nil {
			return nil, err
		}
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse generated certificate: %w", err)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		ClientAuth:   tls.NoClientCert,
	}, nil
}

// loadCached returns (nil, nil, nil) when there is nothing usable cached,
// signalling the caller to generate fresh material.
func loadCached(certPath, keyPath, ipPath, localIP string) (certPEM, keyPEM []byte, err error) {
	cachedIP, readErr := os.ReadFile(ipPath)
	if readErr != nil || strings.TrimSpace(string(cachedIP)) != localIP {
		return nil, nil, nil
	}

	cert, certErr := os.ReadFile(certPath)
	key, keyErr := os.ReadFile(keyPath)
	if certErr != nil || keyErr != nil {
		return nil, nil, nil
	}

	return cert, key, nil
}

func generateAndCache(certPath, keyPath, ipPath, localIP string) (certPEM, keyPEM []byte, err error) {
	certPEM, keyPEM, err = generateSelfSigned(localIP)
	if err != nil {
		return nil, nil, err
	}

	if err := os.WriteFile(certPath, certPEM, 0o644); err != nil {
		return nil, nil, fmt.Errorf("write cert.pem: %w", err)
	}
	if err := os.WriteFile(keyPath, keyPEM, keyPerm); err != nil {
		return nil, nil, fmt.Errorf("write key.pem: %w", err)
	}
	if err := os.Chmod(keyPath, keyPerm); err != nil {
		return nil, nil, fmt.Errorf("chmod key.pem: %w", err)
	}
	if err := os.WriteFile(ipPath, []byte(localIP), 0o644); err != nil {
		return nil, nil, fmt.Errorf("write ip.txt: %w", err)
	}

	return certPEM, keyPEM, nil
}

// generateSelfSigned builds a fresh certificate whose SAN set is
// {IP:localIP, DNS:localhost, IP:127.0.0.1} (spec §4.B, §8).
func generateSelfSigned(localIP string) (certPEM, keyPEM []byte, err error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generate key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, nil, fmt.Errorf("generate serial: %w", err)
	}

	ip := net.ParseIP(localIP)
	if ip == nil {
		return nil, nil, fmt.Errorf("tlsmaterial: %q is not a valid IP address", localIP)
	}

	template := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: "ljc-server"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     notAfter,
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:     []string{"localhost"},
		IPAddresses:  []net.IP{ip, net.ParseIP("127.0.0.1")},
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &priv.PublicKey, priv)
	if err != nil {
		return nil, nil, fmt.Errorf("create certificate: %w", err)
	}

	keyDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal private key: %w", err)
	}

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})
	return certPEM, keyPEM, nil
}
