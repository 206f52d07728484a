// Package cryptox implements the column cipher used by encrypted Jabber
// archives: AES-256 in CBC mode with a fixed key and IV, PKCS#7 padding and
// base64 text encoding.
//
// The IV never changes, so encryption is deterministic. Two plaintexts that
// share their first 16 bytes produce the same first ciphertext block, which
// is what lets the database answer prefix searches (see Blind) without ever
// seeing the key. The same property leaks equality and common prefixes of
// stored values to anyone who can read the table. This is a known
// confidentiality trade-off of the archive format, not something this
// package can fix.
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/jabbersearch/internal/common"
)

// KeySize is the only accepted key length (AES-256).
const KeySize = 32

// BlindLength is the number of base64 characters kept by Blind. 16 characters
// encode the first 12 ciphertext bytes, all of which belong to the first block.
const BlindLength = 16

// MinBlindInput is the shortest identifier Blind can narrow: the whole first
// block must come from the identifier itself.
const MinBlindInput = aes.BlockSize

var (
	errBadPadding = errors.New("bad padding")
	errNotText    = errors.New("decrypted value is not valid UTF-8")
)

// Codec encrypts and decrypts archive column values. A nil *Codec is valid and
// means the archive is plaintext; Encrypt and Decrypt then fail with
// common.ErrMissingKey.
type Codec struct {
	block cipher.Block
	iv    []byte
}

// NewCodec returns a Codec for a 32-byte key and a 16-byte IV.
func NewCodec(key, iv []byte) (*Codec, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", common.ErrInvalidKey, KeySize, len(key))
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("%w: IV must be %d bytes, got %d", common.ErrInvalidKey, aes.BlockSize, len(iv))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidKey, err)
	}

	return &Codec{block: block, iv: bytes.Clone(iv)}, nil
}

// ParseHex builds a Codec from hex strings as they appear in Jabber settings.
// When both strings are empty it returns (nil, nil): the archive is plaintext.
func ParseHex(keyHex, ivHex string) (*Codec, error) {
	keyHex = strings.TrimSpace(keyHex)
	ivHex = strings.TrimSpace(ivHex)

	if keyHex == "" && ivHex == "" {
		return nil, nil
	}
	if keyHex == "" {
		return nil, common.ErrMissingKey
	}
	if ivHex == "" {
		return nil, fmt.Errorf("%w: IV is required with a key", common.ErrInvalidKey)
	}

	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: key is not hex: %v", common.ErrInvalidKey, err)
	}
	defer Wipe(key)
	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return nil, fmt.Errorf("%w: IV is not hex: %v", common.ErrInvalidKey, err)
	}

	return NewCodec(key, iv)
}

// Wipe zeroes b. Use it on key material once a Codec has been built from it.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Enabled reports whether a key is configured.
func (c *Codec) Enabled() bool {
	return c != nil
}

// EncryptBytes pads and encrypts plaintext, returning raw ciphertext.
func (c *Codec) EncryptBytes(plaintext []byte) ([]byte, error) {
	if c == nil {
		return nil, common.ErrMissingKey
	}

	padded := Pad(plaintext, aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, c.iv).CryptBlocks(out, padded)
	return out, nil
}

// Encrypt returns the base64 ciphertext of s.
func (c *Codec) Encrypt(s string) (string, error) {
	raw, err := c.EncryptBytes([]byte(s))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Decrypt reverses Encrypt. Malformed base64, a ciphertext that is not a whole
// number of blocks, bad padding and a plaintext that is not UTF-8 are all
// reported as errors.
func (c *Codec) Decrypt(s string) (string, error) {
	if c == nil {
		return "", common.ErrMissingKey
	}

	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", err
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return "", fmt.Errorf("ciphertext length %d is not a multiple of %d", len(raw), aes.BlockSize)
	}

	out := make([]byte, len(raw))
	cipher.NewCBCDecrypter(c.block, c.iv).CryptBlocks(out, raw)

	plain, err := Unpad(out, aes.BlockSize)
	if err != nil {
		return "", err
	}
	// A wrong key still yields valid padding for about one value in 256.
	if !utf8.Valid(plain) {
		return "", errNotText
	}
	return string(plain), nil
}

// Blind returns the searchable prefix of the encrypted identifier. The boolean
// is false when the identifier is shorter than one block: its first block then
// holds padding bytes, which never match a stored value carrying a resource
// suffix, so the prefix cannot be used as a search key.
func (c *Codec) Blind(identifier string) (string, bool, error) {
	if len(identifier) < MinBlindInput {
		return "", false, nil
	}
	enc, err := c.Encrypt(identifier)
	if err != nil {
		return "", false, err
	}
	return enc[:BlindLength], true, nil
}

// Pad appends PKCS#7 padding. It always adds between 1 and blockSize bytes.
func Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	out := make([]byte, len(b), len(b)+n)
	copy(out, b)
	return append(out, bytes.Repeat([]byte{byte(n)}, n)...)
}

// Unpad strips PKCS#7 padding added by Pad.
func Unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, errBadPadding
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize {
		return nil, errBadPadding
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, errBadPadding
		}
	}
	return b[:len(b)-n], nil
}
