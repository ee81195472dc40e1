package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math/big"
	"strconv"

	"github.com/google/uuid"
)

const (
	sessionTokenRawSize = 48
	changeTokenRawSize  = 32
)

// NewAccountID returns a fresh 32-character lowercase hex identifier.
// The wire format matches the framework's historical uuid column
// (16 random bytes, hex encoded).
func NewAccountID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// NewSessionToken returns a 96-character hex bearer token (384 bits).
func NewSessionToken() (string, error) {
	var raw [sessionTokenRawSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw[:]), nil
}

// NewChangeToken returns the 64-character hex secret embedded in password
// reset and e-mail change links.
func NewChangeToken() (string, error) {
	var raw [changeTokenRawSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw[:]), nil
}

// NewCode returns a human-typed numeric code with the given digit count,
// drawn uniformly without a leading zero, e.g. 100000..999999 for 6 digits.
func NewCode(digits int) (string, error) {
	if digits < 6 || digits > 10 {
		return "", errors.New("invalid code digits")
	}

	low := int64(1)
	for i := 1; i < digits; i++ {
		low *= 10
	}
	span := low*10 - low

	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(low+n.Int64(), 10), nil
}

// HashSecret reduces a presented secret to the fixed-size digest stored in
// challenge records. Comparisons on the digest are constant time.
func HashSecret(secret string) [32]byte {
	return sha256.Sum256([]byte(secret))
}
