// Package evm implements the offchain verifier proxy for EVM chains. The
// verification-info call runs as an eth_call simulation; the interesting
// outcome is the revert, whose payload names the offchain endpoints.
package evm

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"

	"github.com/crosslane/relayer"
	"github.com/crosslane/relayer/protocol"
)

const verifyInfoMethod = "getOffchainVerifyInfo"

// offchainVerifierABI is the slice of the verifier interface this relayer
// exercises.
const offchainVerifierABI = `[{"type":"function","name":"getOffchainVerifyInfo","stateMutability":"view","inputs":[{"name":"message","type":"bytes"}],"outputs":[]}]`

var verifierABI = mustParseABI(offchainVerifierABI)

func mustParseABI(abiJSON string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		panic(err)
	}
	return parsed
}

// Verifier simulates verification-info calls against one contract address.
type Verifier struct {
	lggr    logger.Logger
	caller  bind.ContractCaller
	address common.Address
}

var _ relayer.OffchainVerifier = (*Verifier)(nil)

// NewVerifier creates a proxy for the verifier contract at address.
func NewVerifier(lggr logger.Logger, caller bind.ContractCaller, address protocol.UnknownAddress) *Verifier {
	return &Verifier{
		lggr:    lggr,
		caller:  caller,
		address: common.BytesToAddress(address),
	}
}

func (v *Verifier) Address() protocol.UnknownAddress {
	return protocol.UnknownAddress(v.address.Bytes())
}

// GetOffchainVerifyInfo simulates getOffchainVerifyInfo(messageBytes) on the
// verifier contract. nil means the call succeeded. A revert that carries data
// comes back as an error whose text leads with the hex payload, ahead of any
// other hex the node's message might contain, so the payload is always the
// first run a scraper finds. Failures with no revert data attached are
// joined with ErrVerifierUnreachable.
func (v *Verifier) GetOffchainVerifyInfo(ctx context.Context, messageBytes []byte) error {
	callData, err := verifierABI.Pack(verifyInfoMethod, messageBytes)
	if err != nil {
		return fmt.Errorf("failed to pack %s call: %w", verifyInfoMethod, err)
	}

	_, callErr := v.caller.CallContract(ctx, ethereum.CallMsg{To: &v.address, Data: callData}, nil)
	if callErr == nil {
		return nil
	}

	data, found := extractRevertData(callErr)
	if !found {
		return errors.Join(relayer.ErrVerifierUnreachable, callErr)
	}

	v.lggr.Debugw("Verifier call reverted",
		"verifierAddress", v.address.Hex(),
		"dataLen", len(data),
	)
	if len(data) == 0 {
		return fmt.Errorf("verifier call reverted with no data: %v", callErr)
	}
	return fmt.Errorf("verifier call reverted with data 0x%s: %v", hex.EncodeToString(data), callErr)
}

// dataError is the shape chain clients use to expose revert data on JSON-RPC
// errors.
type dataError interface{ ErrorData() interface{} }

// extractRevertData unwraps the error chain looking for attached revert data.
func extractRevertData(err error) ([]byte, bool) {
	for e := err; e != nil; e = errors.Unwrap(e) {
		var de dataError
		if errors.As(e, &de) {
			if b, ok := revertDataBytes(de.ErrorData()); ok {
				return b, true
			}
		}
	}

	return nil, false
}

func revertDataBytes(v interface{}) ([]byte, bool) {
	decodeHex := func(s string) ([]byte, bool) {
		if strings.HasPrefix(s, "0x") {
			if b, err := hexutil.Decode(s); err == nil {
				return b, true
			}
		}
		return nil, false
	}

	switch t := v.(type) {
	case string:
		return decodeHex(t)
	case []byte:
		return t, true
	case hexutil.Bytes:
		return t, true
	case map[string]interface{}:
		for _, key := range []string{"data", "return", "returnValue"} {
			if s, ok := t[key].(string); ok {
				if b, ok := decodeHex(s); ok {
					return b, true
				}
			}
		}
	}

	return nil, false
}

// Provider resolves verifier addresses to proxies over a single chain client.
type Provider struct {
	lggr   logger.Logger
	caller bind.ContractCaller
}

var _ relayer.VerifierProvider = (*Provider)(nil)

// NewProvider creates a provider backed by caller.
func NewProvider(lggr logger.Logger, caller bind.ContractCaller) *Provider {
	return &Provider{
		lggr:   lggr,
		caller: caller,
	}
}

func (p *Provider) GetVerifier(_ context.Context, address protocol.UnknownAddress) (relayer.OffchainVerifier, error) {
	if address.IsEmpty() {
		return nil, errors.New("verifier address is empty")
	}

	return NewVerifier(p.lggr, p.caller, address), nil
}
