package crypto

import (
	"crypto/hmac"
	"crypto/sha1"

	"github.com/chemikadze/dirkdc/datamodel"
)

// hmacSha1Checksum implements the keyed checksum type paired with an
// AES-CTS-HMAC-SHA1 encryption type (RFC 3962 section 6): a 96-bit
// truncated HMAC-SHA1 over the data, keyed by the Kc subkey RFC 3961
// section 5.3 derives from the base key under the caller's key-usage
// number (e.g. the TGS-REQ body checksum carried in the authenticator's
// cksum field uses KeyUsageTgsBodyChecksum).
type hmacSha1Checksum struct {
	cksumtype int32
	keyLen    int
}

func (c hmacSha1Checksum) GetMic(key datamodel.EncryptionKey, usage int, data []byte) MIC {
	kc := deriveUsageKey(key.KeyValue, usage, 0x99, c.keyLen)
	mic := hmac.New(sha1.New, kc)
	mic.Write(data)
	return MIC(mic.Sum(nil)[:checksumSize])
}

func (c hmacSha1Checksum) VerifyMic(key datamodel.EncryptionKey, usage int, data []byte, mic MIC) bool {
	got := c.GetMic(key, usage, data)
	return hmac.Equal(got, mic)
}
