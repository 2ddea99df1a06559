package store

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var errUnsealable = errors.New("session value cannot be opened")

// Sealed encrypts every value before it reaches the wrapped backend, since
// the backend now holds API tokens that used to live in the browser.
type Sealed struct {
	Backend Backend
	key     [32]byte
}

// NewSealed derives the box key from secret.
func NewSealed(backend Backend, secret string) *Sealed {
	return &Sealed{Backend: backend, key: sha256.Sum256([]byte(secret))}
}

func (s *Sealed) Load(ctx context.Context, sessionID string) (map[string]string, error) {
	values, err := s.Backend.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		plain, err := s.open(v)
		if err != nil {
			// unreadable values are treated like corrupt localStorage entries
			continue
		}
		out[k] = plain
	}
	return out, nil
}

func (s *Sealed) Save(ctx context.Context, sessionID, key, value string) error {
	sealed, err := s.seal(value)
	if err != nil {
		return err
	}
	return s.Backend.Save(ctx, sessionID, key, sealed)
}

func (s *Sealed) Delete(ctx context.Context, sessionID, key string) error {
	return s.Backend.Delete(ctx, sessionID, key)
}

func (s *Sealed) seal(value string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", err
	}
	box := secretbox.Seal(nonce[:], []byte(value), &nonce, &s.key)
	return base64.StdEncoding.EncodeToString(box), nil
}

func (s *Sealed) open(encoded string) (string, error) {
	box, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(box) < nonceSize {
		return "", errUnsealable
	}
	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", errUnsealable
	}
	return string(plain), nil
}
