package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/binary"
	"fmt"

	"github.com/jcmturner/aescts/v2"
	"golang.org/x/crypto/pbkdf2"

	"github.com/chemikadze/dirkdc/datamodel"
)

// aesCtsHmac implements the RFC 3962 AES-CTS-HMAC-SHA1-96 encryption
// types (etypes 17 and 18). It follows RFC 3961's simplified profile:
// a confounder is prepended to the plaintext, the result is sealed with
// AES in CBC mode with ciphertext stealing (so no padding grows the
// message), and a truncated HMAC-SHA1 over the same confounder||
// plaintext is appended for integrity. Key derivation (DK/DR/n-fold)
// follows RFC 3961 section 5.1, deriving separate Ke/Ki subkeys per
// key-usage number so a single long-term key can seal many message
// kinds without key reuse across them.
type aesCtsHmac struct {
	etype   int32
	keyBits int
}

// NewAes128CtsHmacSha1 returns the Algorithm for etype 17.
func NewAes128CtsHmacSha1() Algorithm { return aesCtsHmac{etype: datamodel.EtypeAes128CtsHmacSha1, keyBits: 128} }

// NewAes256CtsHmacSha1 returns the Algorithm for etype 18.
func NewAes256CtsHmacSha1() Algorithm { return aesCtsHmac{etype: datamodel.EtypeAes256CtsHmacSha1, keyBits: 256} }

func (a aesCtsHmac) EType() int32 { return a.etype }

const confounderSize = 16
const checksumSize = 12 // HMAC-SHA1-96

func (a aesCtsHmac) keyLen() int { return a.keyBits / 8 }

func (a aesCtsHmac) GenerateKey() []byte {
	key := make([]byte, a.keyLen())
	if _, err := rand.Read(key); err != nil {
		panic("crypto: failed to read random key material")
	}
	return key
}

func (a aesCtsHmac) StringToKey(passphrase, salt string) []byte {
	tkey := pbkdf2.Key([]byte(passphrase), []byte(salt), 4096, a.keyLen(), sha1.New)
	return deriveKey(tkey, nFold(kerberosConstant, 128), a.keyLen())
}

// Encrypt seals plaintext under key for the given RFC 4120 key-usage
// number, returning the wire EncryptedData (confounder and checksum
// folded into Cipher, per the simplified profile).
func (a aesCtsHmac) Encrypt(key datamodel.EncryptionKey, usage int, plaintext []byte) (datamodel.EncryptedData, error) {
	ke := deriveUsageKey(key.KeyValue, usage, 0xAA, a.keyLen())
	ki := deriveUsageKey(key.KeyValue, usage, 0x55, a.keyLen())

	confounder := make([]byte, confounderSize)
	if _, err := rand.Read(confounder); err != nil {
		return datamodel.EncryptedData{}, fmt.Errorf("crypto: failed to read confounder: %w", err)
	}
	plain := append(append([]byte{}, confounder...), plaintext...)

	mic := hmac.New(sha1.New, ki)
	mic.Write(plain)
	checksum := mic.Sum(nil)[:checksumSize]

	_, ciphertext, err := aescts.Encrypt(ke, make([]byte, confounderSize), plain)
	if err != nil {
		return datamodel.EncryptedData{}, fmt.Errorf("crypto: aes-cts encrypt: %w", err)
	}

	return datamodel.EncryptedData{
		EType:  a.etype,
		Cipher: append(ciphertext, checksum...),
	}, nil
}

// Decrypt verifies and removes the checksum, then unseals the
// confounder-prefixed plaintext, returning the plaintext only.
func (a aesCtsHmac) Decrypt(input datamodel.EncryptedData, key datamodel.EncryptionKey, usage int) ([]byte, error) {
	if len(input.Cipher) < checksumSize+confounderSize {
		return nil, fmt.Errorf("crypto: ciphertext too short")
	}
	ke := deriveUsageKey(key.KeyValue, usage, 0xAA, a.keyLen())
	ki := deriveUsageKey(key.KeyValue, usage, 0x55, a.keyLen())

	ciphertext := input.Cipher[:len(input.Cipher)-checksumSize]
	wantChecksum := input.Cipher[len(input.Cipher)-checksumSize:]

	plain, err := aescts.Decrypt(ke, make([]byte, confounderSize), ciphertext)
	if err != nil {
		return nil, fmt.Errorf("crypto: aes-cts decrypt: %w", err)
	}

	mic := hmac.New(sha1.New, ki)
	mic.Write(plain)
	gotChecksum := mic.Sum(nil)[:checksumSize]
	if !hmac.Equal(gotChecksum, wantChecksum) {
		return nil, fmt.Errorf("crypto: checksum mismatch (KRB_AP_ERR_BAD_INTEGRITY)")
	}

	return plain[confounderSize:], nil
}

var kerberosConstant = []byte("kerberos")

// deriveUsageKey implements RFC 3961 section 5.3's Ke/Ki/Kc derivation:
// the 5-octet constant is the big-endian key-usage number followed by
// a one-octet tag selecting which of the three subkeys is being made.
func deriveUsageKey(baseKey []byte, usage int, tag byte, keyLen int) []byte {
	constant := make([]byte, 5)
	binary.BigEndian.PutUint32(constant, uint32(usage))
	constant[4] = tag
	return deriveKey(baseKey, nFold(constant, 128), keyLen)
}

// deriveKey implements RFC 3961's DK(key, constant) using the AES
// block cipher as DR's pseudo-random function: DR produces keyLen
// bytes by repeatedly AES-encrypting the n-folded constant in CFB-like
// feedback (here, straight CBC encryption of successive blocks seeded
// by the previous block, as RFC 3961 section 5.1 describes for block
// ciphers with a 1:1 input/output block size).
func deriveKey(baseKey, foldedConstant []byte, keyLen int) []byte {
	block, err := newAesBlock(baseKey)
	if err != nil {
		panic("crypto: invalid base key length: " + err.Error())
	}
	out := make([]byte, 0, keyLen)
	block0 := append([]byte{}, foldedConstant...)
	for len(out) < keyLen {
		block.Encrypt(block0, block0)
		out = append(out, block0...)
	}
	return out[:keyLen]
}
