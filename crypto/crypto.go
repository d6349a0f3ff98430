// Package crypto defines the seal/unseal/checksum contract the TGS
// pipeline treats as an external collaborator: stage functions never
// touch key bytes directly, they call through a Factory.
package crypto

import (
	"github.com/chemikadze/dirkdc/datamodel"
)

// Factory resolves an encryption or checksum type to the Algorithm that
// implements it. A KDC installation wires one Factory covering every
// etype/cksumtype it is configured to support.
type Factory interface {
	EncryptionFactory
	ChecksumFactory
}

type EncryptionFactory interface {
	Create(etype int32) Algorithm
	SupportedETypes() []int32
}

type ChecksumFactory interface {
	CreateChecksum(cksumtype int32) ChecksumAlgorithm
	ChecksumTypeForEncryption(etype int32) (cksumtype int32)
}

// Algorithm seals and unseals a single RFC 3961 encryption type. Decrypt
// and Encrypt operate on plaintext bytes only; callers are responsible
// for ASN.1-decoding/encoding the plaintext via the wire package. This
// is a deliberate departure from the teacher's Algorithm, whose Decrypt
// unmarshaled into a caller-supplied interface{} directly -- keeping
// ASN.1 concerns out of crypto/ lets Algorithm be tested with plain
// byte fixtures and keeps wire as the one place that knows the DER
// shapes.
type Algorithm interface {
	EType() int32
	Decrypt(input datamodel.EncryptedData, key datamodel.EncryptionKey, usage int) ([]byte, error)
	Encrypt(key datamodel.EncryptionKey, usage int, plaintext []byte) (datamodel.EncryptedData, error)
	GenerateKey() []byte
	StringToKey(passphrase, salt string) []byte
}

// MIC is a message integrity code produced by a ChecksumAlgorithm.
type MIC []byte

type ChecksumAlgorithm interface {
	GetMic(key datamodel.EncryptionKey, usage int, data []byte) MIC
	VerifyMic(key datamodel.EncryptionKey, usage int, data []byte, mic MIC) bool
}

// see https://tools.ietf.org/html/rfc3961
const (
	CkCrc32           = 1
	CkRsaMd4          = 2
	CkRsaMd4Des       = 3
	CkDesMac          = 4
	CkDesMacK         = 5
	CkRsaMd4DesK      = 6
	CkRsaMd5          = 7
	CkRsaMd5Des       = 8
	CkHmacSha1Des3Kd  = 12
	CkHmacSha1Aes128  = 15
	CkHmacSha1Aes256  = 16
)
