package domain

// ContractConfig is the persisted configuration defaults record.
// Corresponds to the contract_config table in PostgreSQL.
type ContractConfig struct {
	ContractAddress string // deployed item contract address
	OwnerAddress    string // operator/minting account address
	UpdatedAt       int64  // last update timestamp (ms)
}
