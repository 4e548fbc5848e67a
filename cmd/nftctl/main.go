// Package main provides nftctl, a command-line client for the game-item
// token lifecycle: mint, get, list, and verify, straight against the ledger
// RPC endpoint without going through the API server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/big"
	"os"
	"time"

	"gameitem-nft/internal/config"
	"gameitem-nft/internal/domain"
	"gameitem-nft/internal/token"
)

const usage = `Usage: nftctl <command> [flags]

Commands:
  mint    Mint a new item token
  get     Retrieve one token with its metadata
  list    List all tokens held by an address
  verify  Check whether an address holds a token

Run 'nftctl <command> -h' for command flags.
`

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "mint":
		err = runMint(os.Args[2:])
	case "get":
		err = runGet(os.Args[2:])
	case "list":
		err = runList(os.Args[2:])
	case "verify":
		err = runVerify(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("nftctl: %v", err)
	}
}

// commonFlags registers the flags shared by every command.
func commonFlags(fs *flag.FlagSet) (contract, endpoint *string) {
	contract = fs.String("contract", os.Getenv("CONTRACT_ADDRESS"), "Contract address")
	endpoint = fs.String("endpoint", os.Getenv("ETH_RPC_ENDPOINT"), "Ledger RPC endpoint")
	return contract, endpoint
}

func newService() *token.Service {
	return token.NewService(token.Options{
		Resolver: config.NewResolver(nil, nil, ""),
		Logger:   log.New(os.Stderr, "", 0),
	})
}

func override(contract, endpoint, signingKey string) *config.Override {
	return &config.Override{
		ContractAddress: contract,
		EndpointURL:     endpoint,
		SigningKey:      signingKey,
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runMint(args []string) error {
	fs := flag.NewFlagSet("mint", flag.ExitOnError)
	contract, endpoint := commonFlags(fs)
	to := fs.String("to", "", "Destination address")
	image := fs.String("image", "", "Image reference (https://, ipfs://, ar://, data:)")
	traitsJSON := fs.String("traits", "{}", "Traits as a JSON object")
	keyFile := fs.String("signing-key-file", os.Getenv("SIGNING_KEY_FILE"), "Path to the hex-encoded signing key file")
	timeout := fs.Duration("timeout", 6*time.Minute, "Overall mint timeout")
	fs.Parse(args)

	var traits map[string]any
	if err := json.Unmarshal([]byte(*traitsJSON), &traits); err != nil {
		return fmt.Errorf("parse --traits: %w", err)
	}

	signingKey := ""
	if *keyFile != "" {
		key, err := config.FileCredential{Path: *keyFile}.SigningKey(context.Background())
		if err != nil {
			return err
		}
		signingKey = key
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := newService().Mint(ctx, &domain.MintRequest{
		Destination:    *to,
		ImageReference: *image,
		Traits:         traits,
	}, override(*contract, *endpoint, signingKey))
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runGet(args []string) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	contract, endpoint := commonFlags(fs)
	id := fs.String("id", "", "Token identifier (decimal)")
	fs.Parse(args)

	tokenID, ok := new(big.Int).SetString(*id, 10)
	if !ok {
		return fmt.Errorf("malformed --id %q", *id)
	}

	view, err := newService().GetToken(context.Background(), tokenID, override(*contract, *endpoint, ""))
	if err != nil {
		return err
	}
	return printJSON(view)
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	contract, endpoint := commonFlags(fs)
	owner := fs.String("owner", "", "Holder address")
	fs.Parse(args)

	views, err := newService().ListOwned(context.Background(), *owner, override(*contract, *endpoint, ""))
	if err != nil {
		return err
	}
	return printJSON(views)
}

func runVerify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	contract, endpoint := commonFlags(fs)
	id := fs.String("id", "", "Token identifier (decimal)")
	owner := fs.String("owner", "", "Address to check")
	fs.Parse(args)

	tokenID, ok := new(big.Int).SetString(*id, 10)
	if !ok {
		return fmt.Errorf("malformed --id %q", *id)
	}

	result, err := newService().VerifyOwnership(context.Background(), tokenID, *owner, override(*contract, *endpoint, ""))
	if err != nil {
		return err
	}
	return printJSON(result)
}
