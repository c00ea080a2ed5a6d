package solana

// TokenMetadataProgramID is the well-known address of the Metaplex token
// metadata program. Metadata accounts for a mint live at the program derived
// address of ("metadata", program id, mint) under this program.
var TokenMetadataProgramID = mustPubkeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

// metadataSeedTag is the literal first seed of every token metadata PDA.
const metadataSeedTag = "metadata"

func mustPubkeyFromBase58(s string) Pubkey {
	pk, err := PubkeyFromBase58(s)
	if err != nil {
		panic(err)
	}
	return pk
}

// DeriveMetadataAddress returns the canonical metadata account address for the
// given mint under the Metaplex token metadata program.
func DeriveMetadataAddress(mint Pubkey) (Pubkey, error) {
	seeds := [][]byte{
		[]byte(metadataSeedTag),
		TokenMetadataProgramID.Bytes(),
		mint.Bytes(),
	}

	pk, _, err := FindProgramAddress(seeds, TokenMetadataProgramID)
	return pk, err
}
