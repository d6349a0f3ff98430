package tgs

import (
	"errors"

	"github.com/chemikadze/dirkdc/crypto"
	"github.com/chemikadze/dirkdc/datamodel"
)

// mockEtype is the only encryption type the mock crypto factory in this
// package's tests understands. Its Algorithm is an identity cipher: it
// exists to exercise the TGS pipeline's control flow, not to prove
// anything about real cryptography (that's crypto/aesctshmac_test.go's
// job), mirroring the teacher's client/test_utils.go mockAlgo.
const mockEtype int32 = 42

type mockFactory struct{}

func (mockFactory) Create(etype int32) crypto.Algorithm {
	return mockAlgo{etype: etype}
}

func (mockFactory) SupportedETypes() []int32 {
	return []int32{mockEtype}
}

func (mockFactory) CreateChecksum(cksumtype int32) crypto.ChecksumAlgorithm {
	return mockChecksum{}
}

func (mockFactory) ChecksumTypeForEncryption(etype int32) int32 {
	return 99
}

type mockAlgo struct {
	etype int32
}

func (a mockAlgo) EType() int32 {
	return a.etype
}

func (a mockAlgo) Decrypt(input datamodel.EncryptedData, key datamodel.EncryptionKey, usage int) ([]byte, error) {
	if input.EType != a.etype {
		return nil, errors.New("mock: unsupported etype")
	}
	return input.Cipher, nil
}

func (a mockAlgo) Encrypt(key datamodel.EncryptionKey, usage int, plaintext []byte) (datamodel.EncryptedData, error) {
	return datamodel.EncryptedData{EType: a.etype, Cipher: plaintext}, nil
}

func (a mockAlgo) GenerateKey() []byte {
	return []byte{1, 2, 3, 4, 5, 6, 7, 8}
}

func (a mockAlgo) StringToKey(passphrase, salt string) []byte {
	return []byte(passphrase + salt)
}

type mockChecksum struct{}

func (mockChecksum) GetMic(key datamodel.EncryptionKey, usage int, data []byte) crypto.MIC {
	return crypto.MIC([]byte("mock-mic"))
}

func (mockChecksum) VerifyMic(key datamodel.EncryptionKey, usage int, data []byte, mic crypto.MIC) bool {
	return string(mic) == "mock-mic"
}
