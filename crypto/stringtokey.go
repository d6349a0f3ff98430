package crypto

import "github.com/chemikadze/dirkdc/datamodel"

// DefaultSalt builds the RFC 4120 section 4 default string-to-key
// salt: the principal's realm concatenated with each name component,
// in order, with no separators. Callers that need PA-PW-SALT-style
// custom salts build their own string instead of calling this.
func DefaultSalt(realm datamodel.Realm, principal datamodel.PrincipalName) string {
	salt := realm.String()
	for _, component := range principal.NameString {
		salt += component
	}
	return salt
}

// DeriveKey runs the algorithm's string-to-key function over a
// passphrase and default salt, producing a long-term EncryptionKey
// suitable for storage in a PrincipalStoreEntry.
func DeriveKey(factory EncryptionFactory, etype int32, passphrase string, realm datamodel.Realm, principal datamodel.PrincipalName) datamodel.EncryptionKey {
	alg := factory.Create(etype)
	return datamodel.EncryptionKey{
		EType:    etype,
		KeyValue: alg.StringToKey(passphrase, DefaultSalt(realm, principal)),
	}
}
