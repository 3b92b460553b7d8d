package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/sigstore/sigstore-go/pkg/bundle"
	"github.com/sigstore/sigstore-go/pkg/root"
	"github.com/sigstore/sigstore-go/pkg/verify"
)

// Verifier checks downloaded payloads.
type Verifier struct {
	keyring     string
	trustedRoot string
	identity    string
	issuer      string

	// fetchTrustedRoot is swapped out in tests to avoid TUF network access.
	fetchTrustedRoot func() (root.TrustedMaterial, error)
}

// NewVerifier creates a verifier using the keyring and sigstore settings in checks.
func NewVerifier(checks Checks) *Verifier {
	return &Verifier{
		keyring:     checks.Keyring,
		trustedRoot: checks.TrustedRoot,
		identity:    checks.Identity,
		issuer:      checks.Issuer,
		fetchTrustedRoot: func() (root.TrustedMaterial, error) {
			return root.FetchTrustedRoot()
		},
	}
}

// VerifyFile runs every check configured for info and returns the strongest
// method that passed. signaturePath and bundlePath may be empty.
func (v *Verifier) VerifyFile(path string, info *DownloadInfo, signaturePath, bundlePath string) (VerificationMethod, error) {
	if info == nil {
		return VerificationNone, fmt.Errorf("download info is required")
	}

	method := VerificationNone

	if info.SHA256 != "" {
		if err := verifySHA256(path, info.SHA256); err != nil {
			return VerificationNone, fmt.Errorf("SHA256 verification failed: %w", err)
		}
		method = VerificationSHA256
	}

	if signaturePath != "" {
		if err := v.verifyGPG(path, signaturePath); err != nil {
			return VerificationNone, fmt.Errorf("GPG verification failed: %w", err)
		}
		method = VerificationGPG
	}

	if bundlePath != "" {
		if err := v.verifySigstore(path, bundlePath); err != nil {
			return VerificationNone, fmt.Errorf("sigstore verification failed: %w", err)
		}
		method = VerificationSigstore
	}

	return method, nil
}

// verifySHA256 compares the file digest with expected, case-insensitively.
func verifySHA256(path, expected string) error {
	actual, err := calculateSHA256(path)
	if err != nil {
		return fmt.Errorf("calculate checksum: %w", err)
	}
	if !strings.EqualFold(actual, strings.TrimSpace(expected)) {
		return fmt.Errorf("checksum mismatch:\nactual:   %s\nexpected: %s", actual, expected)
	}
	return nil
}

// verifyGPG checks a detached signature, armored or binary.
func (v *Verifier) verifyGPG(path, signaturePath string) error {
	keyring, err := loadKeyring(v.keyring)
	if err != nil {
		return err
	}

	payload, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open payload: %w", err)
	}
	defer payload.Close()

	sig, err := os.Open(signaturePath)
	if err != nil {
		return fmt.Errorf("open signature: %w", err)
	}
	defer sig.Close()

	_, err = openpgp.CheckArmoredDetachedSignature(keyring, payload, sig, nil)
	if err != nil {
		if _, serr := payload.Seek(0, io.SeekStart); serr != nil {
			return fmt.Errorf("rewind payload: %w", serr)
		}
		if _, serr := sig.Seek(0, io.SeekStart); serr != nil {
			return fmt.Errorf("rewind signature: %w", serr)
		}
		_, err = openpgp.CheckDetachedSignature(keyring, payload, sig, nil)
	}
	if err != nil {
		return fmt.Errorf("verify signature: %w", err)
	}
	return nil
}

// verifySigstore checks a sigstore bundle for path against the configured
// certificate identity.
func (v *Verifier) verifySigstore(path, bundlePath string) error {
	if v.identity == "" || v.issuer == "" {
		return errors.New("sigstore verification needs both identity and issuer")
	}

	b, err := bundle.LoadJSONFromPath(bundlePath)
	if err != nil {
		return fmt.Errorf("load bundle: %w", err)
	}

	var trusted root.TrustedMaterial
	if v.trustedRoot != "" {
		trusted, err = root.NewTrustedRootFromPath(v.trustedRoot)
	} else {
		trusted, err = v.fetchTrustedRoot()
	}
	if err != nil {
		return fmt.Errorf("load trusted root: %w", err)
	}

	verifier, err := verify.NewVerifier(trusted,
		verify.WithSignedCertificateTimestamps(1),
		verify.WithTransparencyLog(1),
		verify.WithObserverTimestamps(1),
	)
	if err != nil {
		return fmt.Errorf("create verifier: %w", err)
	}

	id, err := verify.NewShortCertificateIdentity(v.issuer, "", v.identity, "")
	if err != nil {
		return fmt.Errorf("certificate identity: %w", err)
	}

	artifact, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open payload: %w", err)
	}
	defer artifact.Close()

	if _, err := verifier.Verify(b, verify.NewPolicy(verify.WithArtifact(artifact), verify.WithCertificateIdentity(id))); err != nil {
		return err
	}
	return nil
}

// loadKeyring reads an armored or binary OpenPGP keyring.
func loadKeyring(path string) (openpgp.EntityList, error) {
	if path == "" {
		return nil, errors.New("no keyring configured")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	defer f.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(f)
	if err != nil {
		if _, serr := f.Seek(0, io.SeekStart); serr != nil {
			return nil, fmt.Errorf("rewind keyring: %w", serr)
		}
		keyring, err = openpgp.ReadKeyRing(f)
		if err != nil {
			return nil, fmt.Errorf("read keyring: %w", err)
		}
	}

	if len(keyring) == 0 {
		return nil, errors.New("keyring is empty")
	}
	return keyring, nil
}

// calculateSHA256 calculates the SHA256 checksum of a file
func calculateSHA256(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
