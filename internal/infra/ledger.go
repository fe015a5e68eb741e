package infra

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/BahMbeirik/Dossiers-Medicaux/config"
	"github.com/BahMbeirik/Dossiers-Medicaux/internal/domain"
)

// documentRegistryABI is the ABI of the DocumentRegistry contract. The
// contract itself is external: this client only submits and reads anchors.
const documentRegistryABI = `[
	{"inputs":[{"internalType":"string","name":"documentId","type":"string"},{"internalType":"string","name":"documentHash","type":"string"}],"name":"storeDocument","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"internalType":"string","name":"documentId","type":"string"}],"name":"getDocumentHash","outputs":[{"internalType":"string","name":"","type":"string"}],"stateMutability":"view","type":"function"}
]`

// anchorGasLimit is a fixed gas budget for storeDocument transactions.
const anchorGasLimit = 2_000_000

// LedgerClient anchors document fingerprints on the DocumentRegistry contract
// and reads them back. Every call is single-attempt: no retry loop, no
// idempotency check before writing (a second anchor for the same ID is
// submitted as-is).
type LedgerClient struct {
	client   *ethclient.Client
	registry abi.ABI
	contract common.Address
	key      *ecdsa.PrivateKey
	from     common.Address
	chainID  *big.Int
	timeout  time.Duration
}

// NewLedgerClient connects to the ledger RPC endpoint and prepares the signing
// account from the configured private key.
func NewLedgerClient(ctx context.Context, cfg *config.Config) (*LedgerClient, error) {
	if cfg.LedgerRPCURL == "" {
		return nil, fmt.Errorf("LEDGER_RPC_URL environment variable is required")
	}
	if cfg.LedgerContractAddress == "" {
		return nil, fmt.Errorf("LEDGER_CONTRACT_ADDRESS environment variable is required")
	}

	registry, err := abi.JSON(strings.NewReader(documentRegistryABI))
	if err != nil {
		return nil, fmt.Errorf("parsing registry ABI: %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.LedgerPrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parsing ledger private key: %w", err)
	}

	client, err := ethclient.DialContext(ctx, cfg.LedgerRPCURL)
	if err != nil {
		return nil, fmt.Errorf("dialing ledger RPC: %w", err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("fetching chain ID: %w", err)
	}

	return &LedgerClient{
		client:   client,
		registry: registry,
		contract: common.HexToAddress(cfg.LedgerContractAddress),
		key:      key,
		from:     crypto.PubkeyToAddress(key.PublicKey),
		chainID:  chainID,
		timeout:  cfg.LedgerTimeout,
	}, nil
}

// Anchor submits a signed storeDocument(id, fingerprint) transaction and
// returns its hash. Any failure (network, nonce, rejected transaction) wraps
// domain.ErrAnchorFailed with the underlying cause; the caller decides whether
// a local-only seal without an anchor is acceptable.
func (c *LedgerClient) Anchor(ctx context.Context, id, fingerprint string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	nonce, err := c.client.PendingNonceAt(ctx, c.from)
	if err != nil {
		return "", fmt.Errorf("%w: fetching nonce: %v", domain.ErrAnchorFailed, err)
	}

	gasPrice, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: fetching gas price: %v", domain.ErrAnchorFailed, err)
	}

	data, err := c.registry.Pack("storeDocument", id, fingerprint)
	if err != nil {
		return "", fmt.Errorf("%w: packing call data: %v", domain.ErrAnchorFailed, err)
	}

	tx := types.NewTransaction(nonce, c.contract, big.NewInt(0), anchorGasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.key)
	if err != nil {
		return "", fmt.Errorf("%w: signing transaction: %v", domain.ErrAnchorFailed, err)
	}

	if err := c.client.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("%w: sending transaction: %v", domain.ErrAnchorFailed, err)
	}

	return signed.Hash().Hex(), nil
}

// ReadFingerprint queries getDocumentHash(id) with a read-only call. An empty
// result means no anchor was ever written (domain.ErrAnchorNotFound); a
// transport failure means the ledger could not be asked at all
// (domain.ErrLedgerUnavailable). The two must stay distinct.
func (c *LedgerClient) ReadFingerprint(ctx context.Context, id string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	data, err := c.registry.Pack("getDocumentHash", id)
	if err != nil {
		return "", fmt.Errorf("%w: packing call data: %v", domain.ErrLedgerUnavailable, err)
	}

	out, err := c.client.CallContract(ctx, ethereum.CallMsg{To: &c.contract, Data: data}, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}

	results, err := c.registry.Unpack("getDocumentHash", out)
	if err != nil {
		return "", fmt.Errorf("%w: unpacking result: %v", domain.ErrLedgerUnavailable, err)
	}
	fingerprint, ok := results[0].(string)
	if !ok {
		return "", fmt.Errorf("%w: unexpected result type", domain.ErrLedgerUnavailable)
	}
	if fingerprint == "" {
		return "", domain.ErrAnchorNotFound
	}
	return fingerprint, nil
}

// Close releases the underlying RPC connection.
func (c *LedgerClient) Close() {
	c.client.Close()
}
