package operator

import (
	"fmt"
	"math/big"

	"github.com/mitchellh/mapstructure"
	"github.com/umbracle/ethgo/abi"

	"github.com/0xPolygon/edge-vault/types"
)

// Privileged vault methods carried inside a signed envelope. The method
// name selects the ABI tuple layout of the envelope params.
const (
	MethodReleaseValue         = "releaseValue"
	MethodSendTokenToUser      = "sendTokenToUser"
	MethodSequenceReceived     = "sequenceReceived"
	MethodSequenceAllocated    = "sequenceAllocated"
	MethodSetChainWhitelist    = "setChainWhitelist"
	MethodSetTokenWhitelist    = "setTokenWhitelist"
	MethodSetMinTransferAmount = "setMinTransferAmount"
	MethodSetFeeRate           = "setFeeRate"
)

var (
	releaseValueParamsType         = abi.MustNewType("tuple(uint256 sourceChainId, uint256 destChainId, address to, address tokenId, uint256 amount)")
	sendTokenToUserParamsType      = abi.MustNewType("tuple(address tokenId, address to, uint256 amount)")
	sequenceReceivedParamsType     = abi.MustNewType("tuple(address from, address to, uint256 amount)")
	sequenceAllocatedParamsType    = abi.MustNewType("tuple(address target, address from, address to, uint256 amount, uint256 gasLimit)")
	setChainWhitelistParamsType    = abi.MustNewType("tuple(uint256 chainId, bool allowed)")
	setTokenWhitelistParamsType    = abi.MustNewType("tuple(address tokenId, bool allowed)")
	setMinTransferAmountParamsType = abi.MustNewType("tuple(uint256 amount)")
	setFeeRateParamsType           = abi.MustNewType("tuple(uint256 rate)")
)

// ReleaseValueParams are the arguments of the releaseValue method
type ReleaseValueParams struct {
	SourceChainID *big.Int      `abi:"sourceChainId"`
	DestChainID   *big.Int      `abi:"destChainId"`
	To            types.Address `abi:"to"`
	TokenID       types.Address `abi:"tokenId"`
	Amount        *big.Int      `abi:"amount"`
}

func (r *ReleaseValueParams) EncodeAbi() ([]byte, error) {
	return releaseValueParamsType.Encode(r)
}

func (r *ReleaseValueParams) DecodeAbi(buf []byte) error {
	return decodeParams(releaseValueParamsType, buf, r)
}

// SendTokenToUserParams are the arguments of the sendTokenToUser method
type SendTokenToUserParams struct {
	TokenID types.Address `abi:"tokenId"`
	To      types.Address `abi:"to"`
	Amount  *big.Int      `abi:"amount"`
}

func (s *SendTokenToUserParams) EncodeAbi() ([]byte, error) {
	return sendTokenToUserParamsType.Encode(s)
}

func (s *SendTokenToUserParams) DecodeAbi(buf []byte) error {
	return decodeParams(sendTokenToUserParamsType, buf, s)
}

// SequenceReceivedParams are the arguments of the sequenceReceived method
type SequenceReceivedParams struct {
	From   types.Address `abi:"from"`
	To     types.Address `abi:"to"`
	Amount *big.Int      `abi:"amount"`
}

func (s *SequenceReceivedParams) EncodeAbi() ([]byte, error) {
	return sequenceReceivedParamsType.Encode(s)
}

func (s *SequenceReceivedParams) DecodeAbi(buf []byte) error {
	return decodeParams(sequenceReceivedParamsType, buf, s)
}

// SequenceAllocatedParams are the arguments of the sequenceAllocated method
type SequenceAllocatedParams struct {
	Target   types.Address `abi:"target"`
	From     types.Address `abi:"from"`
	To       types.Address `abi:"to"`
	Amount   *big.Int      `abi:"amount"`
	GasLimit *big.Int      `abi:"gasLimit"`
}

func (s *SequenceAllocatedParams) EncodeAbi() ([]byte, error) {
	return sequenceAllocatedParamsType.Encode(s)
}

func (s *SequenceAllocatedParams) DecodeAbi(buf []byte) error {
	return decodeParams(sequenceAllocatedParamsType, buf, s)
}

// SetChainWhitelistParams are the arguments of the setChainWhitelist method
type SetChainWhitelistParams struct {
	ChainID *big.Int `abi:"chainId"`
	Allowed bool     `abi:"allowed"`
}

func (s *SetChainWhitelistParams) EncodeAbi() ([]byte, error) {
	return setChainWhitelistParamsType.Encode(s)
}

func (s *SetChainWhitelistParams) DecodeAbi(buf []byte) error {
	return decodeParams(setChainWhitelistParamsType, buf, s)
}

// SetTokenWhitelistParams are the arguments of the setTokenWhitelist method
type SetTokenWhitelistParams struct {
	TokenID types.Address `abi:"tokenId"`
	Allowed bool          `abi:"allowed"`
}

func (s *SetTokenWhitelistParams) EncodeAbi() ([]byte, error) {
	return setTokenWhitelistParamsType.Encode(s)
}

func (s *SetTokenWhitelistParams) DecodeAbi(buf []byte) error {
	return decodeParams(setTokenWhitelistParamsType, buf, s)
}

// SetMinTransferAmountParams are the arguments of the setMinTransferAmount method
type SetMinTransferAmountParams struct {
	Amount *big.Int `abi:"amount"`
}

func (s *SetMinTransferAmountParams) EncodeAbi() ([]byte, error) {
	return setMinTransferAmountParamsType.Encode(s)
}

func (s *SetMinTransferAmountParams) DecodeAbi(buf []byte) error {
	return decodeParams(setMinTransferAmountParamsType, buf, s)
}

// SetFeeRateParams are the arguments of the setFeeRate method
type SetFeeRateParams struct {
	Rate *big.Int `abi:"rate"`
}

func (s *SetFeeRateParams) EncodeAbi() ([]byte, error) {
	return setFeeRateParamsType.Encode(s)
}

func (s *SetFeeRateParams) DecodeAbi(buf []byte) error {
	return decodeParams(setFeeRateParamsType, buf, s)
}

// OperationReceipt is the response of a processed envelope. Sequencing
// methods also report the ordinal and commitment hash of the recorded
// message.
type OperationReceipt struct {
	EnvelopeHash types.Hash `json:"envelopeHash"`
	Method       string     `json:"method"`
	Nonce        uint64     `json:"nonce"`

	MessageNonce *uint64     `json:"messageNonce,omitempty"`
	MessageHash  *types.Hash `json:"messageHash,omitempty"`
}

func decodeParams(paramsType *abi.Type, buf []byte, out interface{}) error {
	val, err := paramsType.Decode(buf)
	if err != nil {
		return err
	}

	metadata := &mapstructure.Metadata{}
	dc := &mapstructure.DecoderConfig{
		Result:   out,
		TagName:  "abi",
		Metadata: metadata,
	}

	ms, err := mapstructure.NewDecoder(dc)
	if err != nil {
		return err
	}

	if err = ms.Decode(val); err != nil {
		return err
	}

	if len(metadata.Unused) != 0 {
		return fmt.Errorf("some keys not used: %v", metadata.Unused)
	}

	return nil
}
