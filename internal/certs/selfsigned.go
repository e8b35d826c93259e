// Package certs generates ephemeral self-signed TLS certificates for
// local development and testing, where a real certificate authority
// isn't available.
package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"fmt"
	"math/big"
	"net"
	"time"
)

// maxValidity is the longest a generated certificate is ever allowed
// to live, regardless of the requested validity.
const maxValidity = 14 * 24 * time.Hour

// SelfSigned is a generated certificate paired with its fingerprint,
// the form WebTransport clients use to pin an otherwise-untrusted
// development certificate.
type SelfSigned struct {
	TLSCert     tls.Certificate
	Fingerprint [32]byte
}

// FingerprintBase64 returns the certificate's SHA-256 fingerprint,
// standard base64 encoded.
func (s *SelfSigned) FingerprintBase64() string {
	return base64.StdEncoding.EncodeToString(s.Fingerprint[:])
}

// Generate creates a self-signed ECDSA certificate for localhost,
// valid for validity (capped at 14 days, the maximum WebTransport
// clients will accept for a pinned certificate).
func Generate(validity time.Duration) (*SelfSigned, error) {
	if validity > maxValidity {
		validity = maxValidity
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("certs: generate key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("certs: generate serial: %w", err)
	}

	notBefore := time.Now().Add(-5 * time.Minute)
	template := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: "localhost"},
		NotBefore:    notBefore,
		NotAfter:     notBefore.Add(validity),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:     []string{"localhost"},
		IPAddresses:  []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("certs: create certificate: %w", err)
	}

	return &SelfSigned{
		TLSCert: tls.Certificate{
			Certificate: [][]byte{der},
			PrivateKey:  key,
		},
		Fingerprint: sha256.Sum256(der),
	}, nil
}
