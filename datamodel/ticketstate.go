package datamodel

// EncTicketPartState models the pair (opaque ciphertext, lazily-decrypted
// body) that both a TGT and the newly issued service ticket are during
// the TGS exchange: every ticket arrives as an EncryptedData blob, and a
// stage further down the pipeline must decrypt it exactly once with the
// right key before the rest of the pipeline can read its flags, client
// name, and validity window. Representing the two states as one type
// keeps a stage from reading fields off a ticket nobody has decrypted
// yet; it does not stop a caller from recording a second decryption via
// WithDecrypted.
type EncTicketPartState struct {
	encrypted EncryptedData
	decrypted *EncTicketPart
}

// NewEncryptedTicketPart wraps the raw ciphertext pulled off the wire.
func NewEncryptedTicketPart(data EncryptedData) EncTicketPartState {
	return EncTicketPartState{encrypted: data}
}

// NewDecryptedTicketPart wraps an already-decrypted part, for tickets
// this KDC is constructing itself rather than reading off the wire.
func NewDecryptedTicketPart(part EncTicketPart) EncTicketPartState {
	return EncTicketPartState{decrypted: &part}
}

func (s EncTicketPartState) IsDecrypted() bool {
	return s.decrypted != nil
}

// Encrypted returns the original ciphertext, still available after
// decryption so the unmodified Ticket can be re-serialized verbatim.
func (s EncTicketPartState) Encrypted() EncryptedData {
	return s.encrypted
}

// Decrypted returns the cleartext EncTicketPart and whether decryption
// has happened yet; callers must check the bool rather than assume a
// zero-value EncTicketPart means "not yet decrypted".
func (s EncTicketPartState) Decrypted() (EncTicketPart, bool) {
	if s.decrypted == nil {
		return EncTicketPart{}, false
	}
	return *s.decrypted, true
}

// WithDecrypted returns a copy of s transitioned into the Decrypted
// state. Decryption itself (choosing the key, running the cipher) is a
// crypto-package concern and happens before this call; this method only
// records the result.
func (s EncTicketPartState) WithDecrypted(part EncTicketPart) EncTicketPartState {
	s.decrypted = &part
	return s
}
