package jsonrpc

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/0xPolygon/edge-vault/helper/hex"
	"github.com/0xPolygon/edge-vault/types"
	"github.com/0xPolygon/edge-vault/vault"
)

// event is the wire rendering of a vault log record. Fields that do
// not apply to the event type are omitted.
type event struct {
	Index         argUint64     `json:"index"`
	Type          string        `json:"type"`
	SourceChainID argUint64     `json:"sourceChainId"`
	DestChainID   argUint64     `json:"destChainId"`
	From          types.Address `json:"from"`
	To            types.Address `json:"to"`
	TokenID       types.Address `json:"tokenId"`
	Amount        argBig        `json:"amount"`
	Fee           argBig        `json:"fee"`

	Target   *types.Address `json:"target,omitempty"`
	GasLimit *argUint64     `json:"gasLimit,omitempty"`
	Nonce    *argUint64     `json:"nonce,omitempty"`
	Hash     *types.Hash    `json:"hash,omitempty"`

	Op   string    `json:"op,omitempty"`
	Args *argBytes `json:"args,omitempty"`
}

func toEvent(e *vault.Event) *event {
	res := &event{
		Index:         argUint64(e.Index),
		Type:          e.Type.String(),
		SourceChainID: argUint64(e.SourceChainID),
		DestChainID:   argUint64(e.DestChainID),
		From:          e.From,
		To:            e.To,
		TokenID:       e.TokenID,
		Amount:        argBig(*e.Amount),
		Fee:           argBig(*e.Fee),
		Op:            e.Op,
	}

	switch e.Type {
	case vault.MessageReceived, vault.MessageAllocated:
		hash := e.Hash
		res.Nonce = argUintPtr(e.Nonce)
		res.Hash = &hash
	}

	if e.Type == vault.MessageAllocated {
		target := e.Target
		res.Target = &target
		res.GasLimit = argUintPtr(e.GasLimit)
	}

	if len(e.Args) > 0 {
		res.Args = argBytesPtr(e.Args)
	}

	return res
}

// message is the wire rendering of a sequenced message
type message struct {
	Nonce     argUint64     `json:"nonce"`
	Hash      types.Hash    `json:"hash"`
	From      types.Address `json:"from"`
	To        types.Address `json:"to"`
	Amount    argBig        `json:"amount"`
	Forwarded bool          `json:"forwarded"`

	Target   *types.Address `json:"target,omitempty"`
	GasLimit *argUint64     `json:"gasLimit,omitempty"`
}

func toMessage(m *vault.Message) *message {
	res := &message{
		Nonce:     argUint64(m.Nonce),
		Hash:      m.Hash,
		From:      m.From,
		To:        m.To,
		Amount:    argBig(*m.Amount),
		Forwarded: m.Forwarded,
	}

	if m.Forwarded {
		target := m.Target
		res.Target = &target
		res.GasLimit = argUintPtr(m.GasLimit)
	}

	return res
}

// toMessageFromEvent renders the message view out of the event that
// recorded its sequencing, so subscription updates need no store reads
func toMessageFromEvent(e *vault.Event) *message {
	res := &message{
		Nonce:     argUint64(e.Nonce),
		Hash:      e.Hash,
		From:      e.From,
		To:        e.To,
		Amount:    argBig(*e.Amount),
		Forwarded: e.Type == vault.MessageAllocated,
	}

	if res.Forwarded {
		target := e.Target
		res.Target = &target
		res.GasLimit = argUintPtr(e.GasLimit)
	}

	return res
}

// checkpoint is the wire rendering of a message log checkpoint
type checkpoint struct {
	MessageCount argUint64  `json:"messageCount"`
	Root         types.Hash `json:"root"`
}

// messageProof carries the inclusion proof of a sequenced message
// together with the root it verifies against
type messageProof struct {
	Message *message     `json:"message"`
	Root    types.Hash   `json:"root"`
	Proof   []types.Hash `json:"proof"`
}

type argBig big.Int

func argBigPtr(b *big.Int) *argBig {
	v := argBig(*b)

	return &v
}

func (a *argBig) UnmarshalText(input []byte) error {
	buf, err := decodeToHex(input)
	if err != nil {
		return err
	}

	b := new(big.Int)
	b.SetBytes(buf)
	*a = argBig(*b)

	return nil
}

func (a argBig) MarshalText() ([]byte, error) {
	b := (*big.Int)(&a)

	return []byte("0x" + b.Text(16)), nil
}

type argUint64 uint64

func argUintPtr(n uint64) *argUint64 {
	v := argUint64(n)

	return &v
}

func (u argUint64) MarshalText() ([]byte, error) {
	buf := make([]byte, 2, 10)
	copy(buf, `0x`)
	buf = strconv.AppendUint(buf, uint64(u), 16)

	return buf, nil
}

func (u *argUint64) UnmarshalText(input []byte) error {
	str := strings.TrimPrefix(string(input), "0x")

	num, err := strconv.ParseUint(str, 16, 64)
	if err != nil {
		return err
	}

	*u = argUint64(num)

	return nil
}

type argBytes []byte

func argBytesPtr(b []byte) *argBytes {
	bb := argBytes(b)

	return &bb
}

func (b argBytes) MarshalText() ([]byte, error) {
	return encodeToHex(b), nil
}

func (b *argBytes) UnmarshalText(input []byte) error {
	hh, err := decodeToHex(input)
	if err != nil {
		return nil
	}

	aux := make([]byte, len(hh))
	copy(aux[:], hh[:])
	*b = aux

	return nil
}

func decodeToHex(b []byte) ([]byte, error) {
	str := string(b)
	str = strings.TrimPrefix(str, "0x")

	if len(str)%2 != 0 {
		str = "0" + str
	}

	return hex.DecodeString(str)
}

func encodeToHex(b []byte) []byte {
	str := hex.EncodeToString(b)
	if len(str)%2 != 0 {
		str = "0" + str
	}

	return []byte("0x" + str)
}
