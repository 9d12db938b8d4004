package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id cost parameters. Compare honours whatever parameters are embedded
// in the stored hash, so raising these does not invalidate existing hashes.
const (
	argon2Memory  = 64 * 1024 // KiB
	argon2Time    = 3
	argon2Threads = 4
	argon2SaltLen = 16
	argon2KeyLen  = 32

	argon2MaxMemory = 1024 * 1024
	argon2MaxTime   = 16
)

type PasswordService struct {
	memory  uint32
	time    uint32
	threads uint8
}

func NewPasswordService() *PasswordService {
	return &PasswordService{memory: argon2Memory, time: argon2Time, threads: argon2Threads}
}

// Hash returns a PHC-encoded argon2id hash with a fresh random salt:
// $argon2id$v=19$m=65536,t=3,p=4$<salt>$<key>
func (s *PasswordService) Hash(plain string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(plain), salt, s.time, s.memory, s.threads, argon2KeyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		s.memory,
		s.time,
		s.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Compare reports whether plain matches encoded. A malformed hash is reported
// as a mismatch, never as an error.
func (s *PasswordService) Compare(plain string, encoded string) bool {
	params, salt, expected, ok := decodeArgon2Hash(encoded)
	if !ok {
		return false
	}

	computed := argon2.IDKey([]byte(plain), salt, params.time, params.memory, params.threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(computed, expected) == 1
}

type argon2Params struct {
	memory  uint32
	time    uint32
	threads uint8
}

func decodeArgon2Hash(encoded string) (argon2Params, []byte, []byte, bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return argon2Params{}, nil, nil, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return argon2Params{}, nil, nil, false
	}

	var memory, iterations, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return argon2Params{}, nil, nil, false
	}
	// bounded so a crafted hash cannot make Compare allocate without limit
	if memory == 0 || memory > argon2MaxMemory || iterations == 0 || iterations > argon2MaxTime ||
		threads == 0 || threads > 255 {
		return argon2Params{}, nil, nil, false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return argon2Params{}, nil, nil, false
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 || len(key) > 1024 {
		return argon2Params{}, nil, nil, false
	}

	return argon2Params{memory: memory, time: iterations, threads: uint8(threads)}, salt, key, true
}
