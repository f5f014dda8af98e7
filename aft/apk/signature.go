package apk

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/avast/apkverifier"
)

// Signer describes a signing certificate found in an APK.
type Signer struct {
	Subject   string    `json:"subject"`
	Issuer    string    `json:"issuer"`
	SHA256    string    `json:"sha256"`
	ValidFrom time.Time `json:"valid_from"`
	ValidTo   time.Time `json:"valid_to"`
	Best      bool      `json:"best"`
}

// Signature is the outcome of verifying an APK signature.
type Signature struct {
	Scheme  int      `json:"scheme"`
	Signers []Signer `json:"signers"`
}

// VerifySignature checks the APK signature (all v1 to v4 schemes) and describes the signing certificates. A
// returned error means the APK is unsigned or its signature is invalid; any signers discovered are still returned.
func VerifySignature(path string) (*Signature, error) {
	res, err := apkverifier.Verify(path, nil)

	sig := &Signature{
		Scheme: res.SigningSchemeId,
	}

	_, best := apkverifier.PickBestApkCert(res.SignerCerts)
	for _, chain := range res.SignerCerts {
		if len(chain) == 0 || chain[0] == nil {
			continue
		}
		signer := newSigner(chain[0])
		signer.Best = best != nil && chain[0].Equal(best)
		sig.Signers = append(sig.Signers, signer)
	}

	if err != nil {
		return sig, fmt.Errorf("APK verification failed: %w", err)
	}
	if len(sig.Signers) == 0 {
		return sig, fmt.Errorf("no signing certificate found")
	}
	return sig, nil
}

func newSigner(cert *x509.Certificate) Signer {
	fingerprint := sha256.Sum256(cert.Raw)
	return Signer{
		Subject:   cert.Subject.String(),
		Issuer:    cert.Issuer.String(),
		SHA256:    hex.EncodeToString(fingerprint[:]),
		ValidFrom: cert.NotBefore,
		ValidTo:   cert.NotAfter,
	}
}
