// Package password hashes and verifies credentials with Argon2id.
//
// Digests use the PHC string format, so the salt and cost parameters travel
// with the hash and verification needs only the digest and the plaintext:
//
//	$argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
//
// Hash and Verify run the key derivation off the calling goroutine and
// honour context cancellation; a weighted semaphore bounds how many
// derivations run at once so bursts of signins cannot exhaust memory.
package password

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"runtime"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/sync/semaphore"
)

// maxMemoryKiB caps the memory cost accepted from config or from a stored
// digest (1 GiB).
const maxMemoryKiB = 1024 * 1024

// Hasher implements Argon2id hashing.
type Hasher struct {
	time    uint32
	memory  uint32
	threads uint8
	keyLen  uint32
	saltLen int
	slots   int64
	sem     *semaphore.Weighted
}

// Argon2Option configures the hasher.
type Argon2Option func(*Hasher)

// WithArgon2Time sets the number of iterations (default: 3).
func WithArgon2Time(t uint32) Argon2Option {
	return func(h *Hasher) { h.time = t }
}

// WithArgon2Memory sets the memory usage in KiB (default: 64*1024 = 64MB).
func WithArgon2Memory(m uint32) Argon2Option {
	return func(h *Hasher) { h.memory = m }
}

// WithArgon2Threads sets the parallelism (default: 4).
func WithArgon2Threads(t uint8) Argon2Option {
	return func(h *Hasher) { h.threads = t }
}

// WithMaxConcurrent bounds the number of derivations in flight.
func WithMaxConcurrent(n int) Argon2Option {
	return func(h *Hasher) {
		if n > 0 {
			h.slots = int64(n)
		}
	}
}

// NewArgon2Hasher creates an argon2id-based password hasher.
func NewArgon2Hasher(opts ...Argon2Option) *Hasher {
	h := &Hasher{
		time:    3,
		memory:  64 * 1024,
		threads: 4,
		keyLen:  32,
		saltLen: 16,
		slots:   int64(runtime.NumCPU()),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.sem = semaphore.NewWeighted(h.slots)
	return h
}

// Hash derives a digest for plaintext with a fresh random salt.
func (h *Hasher) Hash(ctx context.Context, plaintext string) (string, error) {
	salt := make([]byte, h.saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("password: generate salt: %w", err)
	}

	key, err := h.derive(ctx, []byte(plaintext), salt, h.time, h.memory, h.threads, h.keyLen)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.memory, h.time, h.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether plaintext matches digest. A digest that cannot be
// parsed simply does not match; the only error returned is the context's.
func (h *Hasher) Verify(ctx context.Context, digest, plaintext string) (bool, error) {
	p, ok := decode(digest)
	if !ok {
		return false, nil
	}
	key, err := h.derive(ctx, []byte(plaintext), p.salt, p.time, p.memory, p.threads, uint32(len(p.key)))
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(key, p.key) == 1, nil
}

type result struct {
	key []byte
}

func (h *Hasher) derive(ctx context.Context, plaintext, salt []byte, t, m uint32, p uint8, keyLen uint32) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("password: %w", err)
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("password: wait for hashing slot: %w", err)
	}

	done := make(chan result, 1)
	go func() {
		defer h.sem.Release(1)
		done <- result{key: argon2.IDKey(plaintext, salt, t, m, p, keyLen)}
	}()

	select {
	case r := <-done:
		return r.key, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("password: %w", ctx.Err())
	}
}

type params struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

func decode(digest string) (params, bool) {
	var p params
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, false
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, false
	}
	if p.time == 0 || p.threads == 0 || p.memory > maxMemoryKiB || p.memory < 8*uint32(p.threads) {
		return p, false
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(p.salt) == 0 {
		return p, false
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(p.key) == 0 {
		return p, false
	}
	return p, true
}
