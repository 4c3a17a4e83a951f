// Package ccipread resolves offchain verification metadata for messages whose
// destination verifier follows the offchain lookup (CCIP-Read / EIP-3668)
// convention: the verifier's info call reverts with a payload naming the
// endpoints that serve the missing proof, and the relayer fetches it over
// HTTP before submitting the message.
package ccipread

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/crosslane/relayer/protocol"
)

// Like abi.NewType but panics if it fails for use in static declarations.
func newStaticType(t string) abi.Type {
	ty, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return ty
}

var (
	addressType     = newStaticType("address")
	stringArrayType = newStaticType("string[]")
	bytesType       = newStaticType("bytes")
	bytes4Type      = newStaticType("bytes4")
)

// offchainLookupError is the OffchainLookup(address,string[],bytes,bytes4,bytes)
// custom error from EIP-3668, selector 0x556f1830.
var offchainLookupError = abi.NewError("OffchainLookup", abi.Arguments{
	{Name: "sender", Type: addressType},
	{Name: "urls", Type: stringArrayType},
	{Name: "callData", Type: bytesType},
	{Name: "callbackFunction", Type: bytes4Type},
	{Name: "extraData", Type: bytesType},
})

// OffchainLookup describes where and how to fetch the offchain proof for one
// message: which endpoints serve it, the call data to present, and the
// callback that will verify the result on chain. URL order is the fallback
// order. The JSON form is the cache representation and round-trips
// losslessly, so a rehydrated lookup is indistinguishable from a freshly
// decoded one.
type OffchainLookup struct {
	Sender           protocol.UnknownAddress `json:"sender"`
	URLs             []string                `json:"urls"`
	CallData         protocol.ByteSlice      `json:"callData"`
	CallbackFunction protocol.Bytes4         `json:"callbackFunction"`
	ExtraData        protocol.ByteSlice      `json:"extraData"`
}

// DecodeOffchainLookup ABI-decodes a selector-prefixed OffchainLookup error
// payload.
func DecodeOffchainLookup(payload []byte) (*OffchainLookup, error) {
	decoded, err := offchainLookupError.Unpack(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack OffchainLookup error: %w", err)
	}

	values, ok := decoded.([]any)
	if !ok || len(values) != 5 {
		return nil, fmt.Errorf("unexpected OffchainLookup shape: %T", decoded)
	}

	sender, okSender := values[0].(common.Address)
	urls, okURLs := values[1].([]string)
	callData, okCallData := values[2].([]byte)
	callbackFunction, okCallback := values[3].([4]byte)
	extraData, okExtraData := values[4].([]byte)
	if !okSender || !okURLs || !okCallData || !okCallback || !okExtraData {
		return nil, fmt.Errorf("unexpected OffchainLookup field types")
	}

	return &OffchainLookup{
		Sender:           protocol.UnknownAddress(sender.Bytes()),
		URLs:             urls,
		CallData:         callData,
		CallbackFunction: protocol.Bytes4(callbackFunction),
		ExtraData:        extraData,
	}, nil
}

// Encode packs the lookup back into the selector-prefixed error payload.
// Decode then Encode reproduces the original payload byte for byte.
func (l *OffchainLookup) Encode() (protocol.ByteSlice, error) {
	packed, err := offchainLookupError.Inputs.Pack(
		common.BytesToAddress(l.Sender),
		l.URLs,
		[]byte(l.CallData),
		[4]byte(l.CallbackFunction),
		[]byte(l.ExtraData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to pack OffchainLookup error: %w", err)
	}

	out := make(protocol.ByteSlice, 0, 4+len(packed))
	out = append(out, offchainLookupError.ID[:4]...)
	out = append(out, packed...)
	return out, nil
}
