package ethereum

// itemTokenABI is the published interface of the game-item contract.
// The write surface is not guaranteed at compile time: deployed contracts
// expose one of several mint entry points, so all known candidates are
// declared here and probed in order at submission time.
const itemTokenABI = `[
	{
		"constant": false,
		"inputs": [
			{"name": "recipient", "type": "address"},
			{"name": "tokenURI",  "type": "string"}
		],
		"name": "mintNFT",
		"outputs": [{"name": "", "type": "uint256"}],
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [
			{"name": "recipient", "type": "address"},
			{"name": "tokenURI",  "type": "string"}
		],
		"name": "mint",
		"outputs": [{"name": "", "type": "uint256"}],
		"type": "function"
	},
	{
		"constant": false,
		"inputs": [
			{"name": "recipient", "type": "address"},
			{"name": "tokenURI",  "type": "string"}
		],
		"name": "safeMint",
		"outputs": [],
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [{"name": "owner", "type": "address"}],
		"name": "balanceOf",
		"outputs": [{"name": "", "type": "uint256"}],
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [{"name": "tokenId", "type": "uint256"}],
		"name": "ownerOf",
		"outputs": [{"name": "", "type": "address"}],
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [
			{"name": "owner", "type": "address"},
			{"name": "index", "type": "uint256"}
		],
		"name": "tokenOfOwnerByIndex",
		"outputs": [{"name": "", "type": "uint256"}],
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [{"name": "tokenId", "type": "uint256"}],
		"name": "tokenURI",
		"outputs": [{"name": "", "type": "string"}],
		"type": "function"
	},
	{
		"constant": true,
		"inputs": [],
		"name": "totalSupply",
		"outputs": [{"name": "", "type": "uint256"}],
		"type": "function"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "from",    "type": "address"},
			{"indexed": true, "name": "to",      "type": "address"},
			{"indexed": true, "name": "tokenId", "type": "uint256"}
		],
		"name": "Transfer",
		"type": "event"
	}
]`
