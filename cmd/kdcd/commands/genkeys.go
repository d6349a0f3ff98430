package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chemikadze/dirkdc/config"
	"github.com/chemikadze/dirkdc/crypto"
	"github.com/chemikadze/dirkdc/datamodel"
	"github.com/chemikadze/dirkdc/principal"
)

var (
	genKeysPassphrase string
	genKeysOutPath    string
)

var genKeysCmd = &cobra.Command{
	Use:   "genkeys PRINCIPAL [PRINCIPAL...]",
	Short: "Derive long-term keys for principals and write them to a keytab",
	Long: `genkeys derives one long-term key per configured encryption type for
each given principal name, via RFC 4120 section 4's string-to-key function,
and writes the result to a dirkdc keytab file (--out, merged with any
existing keytab at that path).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenKeys,
}

func init() {
	genKeysCmd.Flags().StringVar(&genKeysPassphrase, "passphrase", "", "passphrase to derive keys from (required)")
	genKeysCmd.Flags().StringVar(&genKeysOutPath, "out", "", "keytab path to write (default: config's keytab_path)")
	_ = genKeysCmd.MarkFlagRequired("passphrase")
}

func runGenKeys(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}

	outPath := genKeysOutPath
	if outPath == "" {
		outPath = cfg.KeytabPath
	}
	if outPath == "" {
		return fmt.Errorf("no keytab path given: pass --out or set keytab_path in config")
	}

	store, err := principal.LoadKeytabFile(outPath)
	if err != nil {
		return err
	}

	realm := datamodel.Realm(cfg.Realm)
	factory := crypto.RandomKeyFactory{}

	for _, name := range args {
		principalName := datamodel.PrincipalNameFromString(name)
		keyMap := make(map[int32]datamodel.EncryptionKey, len(cfg.EncryptionTypes))
		for _, etype := range cfg.EncryptionTypes {
			keyMap[etype] = crypto.DeriveKey(factory, etype, genKeysPassphrase, realm, principalName)
		}

		entry := datamodel.PrincipalStoreEntry{
			Principal:  principalName,
			RealmName:  realm,
			CommonName: name,
			KeyMap:     keyMap,
		}
		if err := store.Put(entry); err != nil {
			return fmt.Errorf("failed to stage key for %s: %w", name, err)
		}
		cmd.Printf("derived keys for %s (etypes: %v)\n", name, cfg.EncryptionTypes)
	}

	if err := principal.SaveKeytabFile(outPath, store.All()); err != nil {
		return err
	}
	cmd.Printf("wrote keytab to %s\n", outPath)
	return nil
}
