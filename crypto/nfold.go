package crypto

import "crypto/aes"

// nFold implements the n-fold operation from RFC 3961 section 5.1: it
// takes the lcm(len(in), outbits/8)-byte rotation sum of in and folds
// it down to outbits/8 bytes. Kerberos key derivation uses it to turn
// an arbitrary-length constant (e.g. "kerberos") into exactly one AES
// block's worth of seed material, regardless of the cipher's block
// size. Translated from the reference algorithm in MIT krb5's
// lib/crypto/krb/nfold.c, which every from-scratch Go Kerberos
// implementation in this ecosystem re-derives from directly (there is
// no widely reused Go package for it).
func nFold(in []byte, outBits uint) []byte {
	inBits := uint(len(in))
	outBytes := outBits >> 3

	a, b := outBytes, inBits
	for b != 0 {
		a, b = b, a%b
	}
	lcm := outBytes * inBits / a

	out := make([]byte, outBytes)
	var carry uint

	for i := int(lcm - 1); i >= 0; i-- {
		msbit := (((inBits << 3) - 1) +
			(((inBits << 3) + 13) * (uint(i) / inBits)) +
			((inBits - (uint(i) % inBits)) << 3)) % (inBits << 3)

		byteVal := carry + (((uint(in[((inBits-1)-(msbit>>3))%inBits]) << 8) |
			uint(in[(inBits-(msbit>>3))%inBits])) >> ((msbit & 7) + 1) & 0xff)
		byteVal += uint(out[uint(i)%outBytes])
		out[uint(i)%outBytes] = byte(byteVal & 0xff)
		carry = byteVal >> 8
	}
	if carry > 0 {
		for i := int(outBytes - 1); i >= 0; i-- {
			carry += uint(out[i])
			out[i] = byte(carry & 0xff)
			carry >>= 8
		}
	}
	return out
}

func newAesBlock(key []byte) (interface {
	Encrypt(dst, src []byte)
}, error) {
	return aes.NewCipher(key)
}
