package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for one-time code hashing. Codes live for five minutes
// and carry little entropy, so the cost is tuned below interactive-password
// levels while still resisting offline guessing of a dumped store.
const (
	codeHashMemory      = 32 * 1024
	codeHashIterations  = 2
	codeHashParallelism = 1
	codeHashSaltLength  = 16
	codeHashKeyLength   = 32
)

// ErrCodeMismatch reports that a code does not match its stored hash.
var ErrCodeMismatch = errors.New("cryptox: code does not match")

// HashCode generates a PHC-format Argon2id hash of a one-time code,
// including salt and parameters. Pending codes are persisted only in this
// form; the plaintext never reaches storage.
func HashCode(code string) (string, error) {
	salt := make([]byte, codeHashSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey(
		[]byte(code),
		salt,
		codeHashIterations,
		codeHashMemory,
		codeHashParallelism,
		codeHashKeyLength,
	)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		codeHashMemory,
		codeHashIterations,
		codeHashParallelism,
		b64Salt,
		b64Hash,
	), nil
}

// VerifyCode compares a plaintext code against a PHC-style Argon2id hash.
// Returns nil on an exact match, ErrCodeMismatch on a clean mismatch, and a
// descriptive error for malformed hashes.
func VerifyCode(code, encodedHash string) error {
	// Parse PHC format: $argon2id$v=19$m=X,t=Y,p=Z$salt$hash
	parts := make([]string, 0, 6)
	start := 0
	for i := range len(encodedHash) {
		if encodedHash[i] == '$' {
			parts = append(parts, encodedHash[start:i])
			start = i + 1
		}
	}
	parts = append(parts, encodedHash[start:])

	// Validate structure: ["", "argon2id", "v=19", "m=X,t=Y,p=Z", "salt", "hash"]
	if len(parts) != 6 {
		return errors.New("invalid hash format: expected 6 parts")
	}
	if parts[1] != "argon2id" {
		return errors.New("invalid hash format: not argon2id")
	}
	if parts[2] != "v=19" {
		return errors.New("invalid hash format: wrong version")
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return fmt.Errorf("invalid hash format: failed to parse parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("invalid hash format: failed to decode salt: %w", err)
	}
	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("invalid hash format: failed to decode hash: %w", err)
	}

	computed := argon2.IDKey(
		[]byte(code),
		salt,
		iters,
		mem,
		par,
		uint32(len(expectedHash)), // #nosec G115 - hash lengths are bounded by the format
	)

	if subtle.ConstantTimeCompare(computed, expectedHash) == 1 {
		return nil
	}
	return ErrCodeMismatch
}
