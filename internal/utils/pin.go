package utils

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// codeAlphabet excludes characters that are easy to misread when a code is
// shared verbally or typed from a screenshot (0/O, 1/I/L).
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// CodeLength is the length of a room code.
const CodeLength = 6

// GenerateRoomCode returns a random short code suitable for sharing.
// Uniqueness among live rooms is enforced by the caller via collision retry.
func GenerateRoomCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, CodeLength)
	for i, b := range buf {
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(out), nil
}

// GeneratePIN returns a random 4-digit PIN as a string, zero-padded.
func GeneratePIN() (string, error) {
	var b [2]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint16(b[:]) % 10000
	return fmt.Sprintf("%04d", n), nil
}

// NewPoolSeed returns a random non-negative seed for the shared title pool.
// The seed only needs to be unpredictable enough to deter guessing; it is
// not a security credential.
func NewPoolSeed() (int64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	n := int64(binary.BigEndian.Uint64(b[:]) &^ (1 << 63))
	return n, nil
}

// HashPIN returns a bcrypt hash of the PIN using the given cost.
func HashPIN(pin string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pin), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPIN safely compares a bcrypt hash and a plain PIN.
func VerifyPIN(hash, pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
