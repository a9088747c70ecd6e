package tlscert

import (
	"crypto/x509"
	"net"
	"testing"
)

func TestGenerateProducesValidLeaf(t *testing.T) {
	cert, err := Generate("olt-manager.local", []string{"olt-manager.local"}, []net.IP{net.ParseIP("127.0.0.1")})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(cert.Certificate) != 1 {
		t.Fatalf("expected exactly one certificate in the chain, got %d", len(cert.Certificate))
	}

	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		t.Fatalf("ParseCertificate() error = %v", err)
	}
	if leaf.Subject.CommonName != "olt-manager.local" {
		t.Errorf("CommonName = %q, want olt-manager.local", leaf.Subject.CommonName)
	}

	pool := x509.NewCertPool()
	pool.AddCert(leaf)
	if _, err := leaf.Verify(x509.VerifyOptions{Roots: pool}); err != nil {
		t.Errorf("self-signed leaf did not verify against itself: %v", err)
	}
}
