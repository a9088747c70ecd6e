// Package tlscert generates the self-signed server certificate the
// HTTP API listener presents, adapted from pkg/pki/cert.go's
// IssueServerCertificate shape — but with the CA hierarchy collapsed
// into a single self-signed leaf, since this system has no agent
// enrollment flow to issue client certificates for.
package tlscert

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"net"
	"time"
)

// ValidityDays is how long the generated certificate remains valid.
const ValidityDays = 365

// Generate builds a self-signed ECDSA P-256 certificate for commonName,
// valid for the DNS names and IPs given, and returns it as a
// tls.Certificate ready to hand to an http.Server's TLSConfig.
func Generate(commonName string, dnsNames []string, ips []net.IP) (tls.Certificate, error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("tlscert: generate key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("tlscert: serial: %w", err)
	}

	template := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: commonName, Organization: []string{"ma5801-olt-manager"}},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().AddDate(0, 0, ValidityDays),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:     dnsNames,
		IPAddresses:  ips,
		IsCA:         false,
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("tlscert: create certificate: %w", err)
	}

	return tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  privateKey,
		Leaf:        template,
	}, nil
}
