package crypto

import "github.com/chemikadze/dirkdc/datamodel"

// RandomKeyFactory is the Factory the daemon wires by default, covering
// the two AES-CTS-HMAC-SHA1 encryption types this module implements.
// Installations that need RC4 or 3DES for legacy client compatibility
// would add cases here; this KDC intentionally does not, per
// SPEC_FULL.md's domain-stack decision to target RFC 3962 only.
type RandomKeyFactory struct{}

func (RandomKeyFactory) Create(etype int32) Algorithm {
	switch etype {
	case datamodel.EtypeAes128CtsHmacSha1:
		return NewAes128CtsHmacSha1()
	case datamodel.EtypeAes256CtsHmacSha1:
		return NewAes256CtsHmacSha1()
	default:
		return nil
	}
}

func (RandomKeyFactory) SupportedETypes() []int32 {
	return []int32{datamodel.EtypeAes256CtsHmacSha1, datamodel.EtypeAes128CtsHmacSha1}
}

func (RandomKeyFactory) CreateChecksum(cksumtype int32) ChecksumAlgorithm {
	switch cksumtype {
	case datamodel.CksumHmacSha1Aes128:
		return hmacSha1Checksum{cksumtype: cksumtype, keyLen: 16}
	case datamodel.CksumHmacSha1Aes256:
		return hmacSha1Checksum{cksumtype: cksumtype, keyLen: 32}
	default:
		return nil
	}
}

func (RandomKeyFactory) ChecksumTypeForEncryption(etype int32) int32 {
	switch etype {
	case datamodel.EtypeAes128CtsHmacSha1:
		return datamodel.CksumHmacSha1Aes128
	case datamodel.EtypeAes256CtsHmacSha1:
		return datamodel.CksumHmacSha1Aes256
	default:
		return 0
	}
}

var _ Factory = RandomKeyFactory{}
