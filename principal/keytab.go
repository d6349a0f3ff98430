package principal

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/chemikadze/dirkdc/datamodel"
)

// keytabFile is dirkdc's own on-disk keytab format. The pack carries no
// MIT/Heimdal binary keytab codec, so this is a plain JSON document
// rather than an invented binary format: one entry per principal, keys
// base64-encoded per etype.
type keytabFile struct {
	Entries []keytabEntry `json:"entries"`
}

type keytabEntry struct {
	Principal  []string        `json:"principal"`
	Realm      string          `json:"realm"`
	CommonName string          `json:"common_name,omitempty"`
	Keys       []keytabKeyPair `json:"keys"`
}

type keytabKeyPair struct {
	EType int32  `json:"etype"`
	KVNo  int    `json:"kvno"`
	Key   string `json:"key"` // base64
}

// LoadKeytabFile reads a keytab written by SaveKeytabFile (or the genkeys command)
// into a ready-to-use Store+Writer. A missing file yields an empty
// store rather than an error, matching config.Load's tolerance for an
// absent config file.
func LoadKeytabFile(path string) (interface {
	Store
	Writer
	Lister
}, error) {
	store := NewMemStore()
	if path == "" {
		return store, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("principal: failed to read keytab %s: %w", path, err)
	}

	var file keytabFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("principal: failed to parse keytab %s: %w", path, err)
	}

	for _, e := range file.Entries {
		entry, err := e.toDomain()
		if err != nil {
			return nil, fmt.Errorf("principal: keytab %s: %w", path, err)
		}
		if err := store.Put(entry); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// SaveKeytabFile writes entries to path in dirkdc's JSON keytab format,
// creating or truncating the file with owner-only permissions since it
// carries long-term secret keys.
func SaveKeytabFile(path string, entries []datamodel.PrincipalStoreEntry) error {
	file := keytabFile{Entries: make([]keytabEntry, 0, len(entries))}
	for _, entry := range entries {
		file.Entries = append(file.Entries, fromDomain(entry))
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("principal: failed to encode keytab: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("principal: failed to write keytab %s: %w", path, err)
	}
	return nil
}

func fromDomain(entry datamodel.PrincipalStoreEntry) keytabEntry {
	keys := make([]keytabKeyPair, 0, len(entry.KeyMap))
	for etype, key := range entry.KeyMap {
		keys = append(keys, keytabKeyPair{
			EType: etype,
			KVNo:  key.KVNo,
			Key:   base64.StdEncoding.EncodeToString(key.KeyValue),
		})
	}
	return keytabEntry{
		Principal:  entry.Principal.NameString,
		Realm:      entry.RealmName.String(),
		CommonName: entry.CommonName,
		Keys:       keys,
	}
}

func (e keytabEntry) toDomain() (datamodel.PrincipalStoreEntry, error) {
	keyMap := make(map[int32]datamodel.EncryptionKey, len(e.Keys))
	for _, k := range e.Keys {
		raw, err := base64.StdEncoding.DecodeString(k.Key)
		if err != nil {
			return datamodel.PrincipalStoreEntry{}, fmt.Errorf("invalid key material for etype %d: %w", k.EType, err)
		}
		keyMap[k.EType] = datamodel.EncryptionKey{EType: k.EType, KVNo: k.KVNo, KeyValue: raw}
	}
	return datamodel.PrincipalStoreEntry{
		Principal:  datamodel.PrincipalName{NameString: e.Principal},
		RealmName:  datamodel.Realm(e.Realm),
		CommonName: e.CommonName,
		KeyMap:     keyMap,
	}, nil
}
