package sessions

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-oidc-portal/internal/errors"
	"github.com/jrsteele09/go-oidc-portal/token"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	signingKeyInfo    = "portal session signing"
	encryptionKeyInfo = "portal session encryption"
	minSecretLength   = 16
)

// Sealer signs claims as an HS256 JWT and encrypts the result with
// XChaCha20-Poly1305, so cookie contents are neither readable nor forgeable
// by the browser. Each configured secret yields one signing key and one
// encryption key; the first secret seals, all of them open.
type Sealer struct {
	signers []*token.HMACsigner
	aeads   []cipher.AEAD
	now     func() time.Time
}

func NewSealer(secrets []string) (*Sealer, error) {
	if len(secrets) == 0 {
		return nil, fmt.Errorf("[sessions NewSealer] at least one cookie key is required")
	}
	s := &Sealer{now: time.Now}
	for i, secret := range secrets {
		if len(secret) < minSecretLength {
			return nil, fmt.Errorf("[sessions NewSealer] cookie key %d is shorter than %d bytes", i, minSecretLength)
		}
		signingKey, err := deriveKey(secret, signingKeyInfo, 32)
		if err != nil {
			return nil, err
		}
		encryptionKey, err := deriveKey(secret, encryptionKeyInfo, chacha20poly1305.KeySize)
		if err != nil {
			return nil, err
		}
		aead, err := chacha20poly1305.NewX(encryptionKey)
		if err != nil {
			return nil, fmt.Errorf("[sessions NewSealer] cipher: %w", err)
		}
		s.signers = append(s.signers, token.NewHMACSigner(signingKey))
		s.aeads = append(s.aeads, aead)
	}
	return s, nil
}

func deriveKey(secret, info string, size int) ([]byte, error) {
	key := make([]byte, size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("[sessions deriveKey] %s: %w", info, err)
	}
	return key, nil
}

// Seal returns an opaque, URL safe value carrying claims until ttl elapses.
func (s *Sealer) Seal(claims jwt.MapClaims, ttl time.Duration) (string, error) {
	now := s.now()
	stamped := jwt.MapClaims{}
	for k, v := range claims {
		stamped[k] = v
	}
	stamped["iat"] = now.Unix()
	stamped["exp"] = now.Add(ttl).Unix()

	signed, err := s.signers[0].Sign(stamped)
	if err != nil {
		return "", fmt.Errorf("[sessions Seal] %w", err)
	}

	aead := s.aeads[0]
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(signed)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("[sessions Seal] nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(signed), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal. Any tampering, unknown key or expiry yields ErrInvalidSession.
func (s *Sealer) Open(value string) (jwt.MapClaims, error) {
	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidSession, "decoding")
	}
	for i, aead := range s.aeads {
		if len(data) < aead.NonceSize()+aead.Overhead() {
			break
		}
		nonce, ciphertext := data[:aead.NonceSize()], data[aead.NonceSize():]
		plain, err := aead.Open(nil, nonce, ciphertext, nil)
		if err != nil {
			continue
		}
		claims, err := token.Parse(s.signers[i], string(plain))
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", errors.ErrInvalidSession, errors.ErrSessionExpired)
		}
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidSession, "%v", err)
		}
		return claims, nil
	}
	return nil, errors.Wrapf(errors.ErrInvalidSession, "no key opens value")
}
