package crypto

import (
	"bytes"
	"testing"

	"github.com/chemikadze/dirkdc/datamodel"
)

func TestAesCtsHmac_EncryptDecryptRoundTrip(t *testing.T) {
	alg := NewAes128CtsHmacSha1()
	key := datamodel.EncryptionKey{EType: alg.EType(), KeyValue: alg.GenerateKey()}

	plaintext := []byte("the quick brown fox jumps over the lazy dog")
	ed, err := alg.Encrypt(key, datamodel.KeyUsageTgsRepSessionKey, plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if ed.EType != alg.EType() {
		t.Errorf("got etype %d, want %d", ed.EType, alg.EType())
	}

	got, err := alg.Decrypt(ed, key, datamodel.KeyUsageTgsRepSessionKey)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("got %q, want %q", got, plaintext)
	}
}

func TestAesCtsHmac_ShortPlaintext(t *testing.T) {
	alg := NewAes256CtsHmacSha1()
	key := datamodel.EncryptionKey{EType: alg.EType(), KeyValue: alg.GenerateKey()}

	plaintext := []byte("x")
	ed, err := alg.Encrypt(key, datamodel.KeyUsageTicketSeal, plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	got, err := alg.Decrypt(ed, key, datamodel.KeyUsageTicketSeal)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("got %q, want %q", got, plaintext)
	}
}

func TestAesCtsHmac_TamperedChecksumRejected(t *testing.T) {
	alg := NewAes128CtsHmacSha1()
	key := datamodel.EncryptionKey{EType: alg.EType(), KeyValue: alg.GenerateKey()}

	ed, err := alg.Encrypt(key, datamodel.KeyUsageAuthorizationData, []byte("authdata payload"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	ed.Cipher[len(ed.Cipher)-1] ^= 0xFF

	if _, err := alg.Decrypt(ed, key, datamodel.KeyUsageAuthorizationData); err == nil {
		t.Error("expected checksum mismatch error, got nil")
	}
}

func TestAesCtsHmac_StringToKeyDeterministic(t *testing.T) {
	alg := NewAes128CtsHmacSha1()
	k1 := alg.StringToKey("s3cr3t", "EXAMPLE.COMalice")
	k2 := alg.StringToKey("s3cr3t", "EXAMPLE.COMalice")
	if !bytes.Equal(k1, k2) {
		t.Error("StringToKey should be deterministic for the same inputs")
	}
	k3 := alg.StringToKey("s3cr3t", "EXAMPLE.COMbob")
	if bytes.Equal(k1, k3) {
		t.Error("StringToKey should differ with a different salt")
	}
}

func TestRandomKeyFactory_RoundTrip(t *testing.T) {
	f := RandomKeyFactory{}
	for _, etype := range f.SupportedETypes() {
		alg := f.Create(etype)
		if alg == nil {
			t.Fatalf("Create(%d) returned nil", etype)
		}
		key := datamodel.EncryptionKey{EType: etype, KeyValue: alg.GenerateKey()}
		ed, err := alg.Encrypt(key, datamodel.KeyUsageTgsReqAuthenticator, []byte("hello"))
		if err != nil {
			t.Fatalf("Encrypt(etype=%d): %v", etype, err)
		}
		got, err := alg.Decrypt(ed, key, datamodel.KeyUsageTgsReqAuthenticator)
		if err != nil {
			t.Fatalf("Decrypt(etype=%d): %v", etype, err)
		}
		if string(got) != "hello" {
			t.Errorf("etype=%d: got %q, want hello", etype, got)
		}

		cksumtype := f.ChecksumTypeForEncryption(etype)
		ck := f.CreateChecksum(cksumtype)
		mic := ck.GetMic(key, datamodel.KeyUsageTgsBodyChecksum, []byte("body bytes"))
		if !ck.VerifyMic(key, datamodel.KeyUsageTgsBodyChecksum, []byte("body bytes"), mic) {
			t.Errorf("etype=%d: VerifyMic rejected its own GetMic output", etype)
		}
	}
}
