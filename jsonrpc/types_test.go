package jsonrpc

import (
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/edge-vault/types"
	"github.com/0xPolygon/edge-vault/vault"
)

func TestBasicTypes_Encode(t *testing.T) {
	// decode basic types
	cases := []struct {
		obj interface{}
		dec interface{}
		res string
	}{
		{
			argBig(*big.NewInt(10)),
			&argBig{},
			"0xa",
		},
		{
			argUint64(10),
			argUintPtr(0),
			"0xa",
		},
		{
			argBytes([]byte{0x1, 0x2}),
			&argBytes{},
			"0x0102",
		},
	}

	for _, c := range cases {
		res, err := json.Marshal(c.obj)
		assert.NoError(t, err)
		assert.Equal(t, strings.Trim(string(res), "\""), c.res)
		assert.NoError(t, json.Unmarshal(res, c.dec))
	}
}

func TestEventView_Render(t *testing.T) {
	t.Run("deposit omits message fields", func(t *testing.T) {
		evnt := &vault.Event{
			Index:         3,
			Type:          vault.DepositReceived,
			SourceChainID: 1,
			DestChainID:   2,
			From:          types.StringToAddress("1"),
			To:            types.StringToAddress("2"),
			TokenID:       types.StringToAddress("3"),
			Amount:        big.NewInt(995),
			Fee:           big.NewInt(5),
		}

		out, err := json.Marshal(toEvent(evnt))
		require.NoError(t, err)

		s := string(out)
		assert.Contains(t, s, `"index":"0x3"`)
		assert.Contains(t, s, `"type":"deposit-received"`)
		assert.Contains(t, s, `"amount":"0x3e3"`)
		assert.Contains(t, s, `"fee":"0x5"`)
		assert.NotContains(t, s, `"nonce"`)
		assert.NotContains(t, s, `"target"`)
		assert.NotContains(t, s, `"op"`)
	})

	t.Run("allocation carries target and gas limit", func(t *testing.T) {
		evnt := &vault.Event{
			Type:     vault.MessageAllocated,
			Target:   types.StringToAddress("9"),
			GasLimit: 21000,
			Nonce:    7,
			Hash:     types.StringToHash("1"),
			Amount:   big.NewInt(100),
			Fee:      new(big.Int),
		}

		out, err := json.Marshal(toEvent(evnt))
		require.NoError(t, err)

		s := string(out)
		assert.Contains(t, s, `"type":"message-allocated"`)
		assert.Contains(t, s, `"nonce":"0x7"`)
		assert.Contains(t, s, `"gasLimit":"0x5208"`)
		assert.Contains(t, s, `"target"`)
		assert.Contains(t, s, `"hash"`)
	})

	t.Run("config change carries op and args", func(t *testing.T) {
		evnt := &vault.Event{
			Type:   vault.ConfigChanged,
			Op:     "setFeeRate",
			Args:   []byte{0x1, 0xf4},
			Amount: new(big.Int),
			Fee:    new(big.Int),
		}

		out, err := json.Marshal(toEvent(evnt))
		require.NoError(t, err)

		s := string(out)
		assert.Contains(t, s, `"op":"setFeeRate"`)
		assert.Contains(t, s, `"args":"0x01f4"`)
	})
}

func TestMessageView_Render(t *testing.T) {
	t.Run("plain transfer", func(t *testing.T) {
		msg := &vault.Message{
			Nonce:  2,
			Hash:   types.StringToHash("5"),
			From:   types.StringToAddress("1"),
			To:     types.StringToAddress("2"),
			Amount: big.NewInt(77),
		}

		out, err := json.Marshal(toMessage(msg))
		require.NoError(t, err)

		s := string(out)
		assert.Contains(t, s, `"nonce":"0x2"`)
		assert.Contains(t, s, `"forwarded":false`)
		assert.NotContains(t, s, `"target"`)
		assert.NotContains(t, s, `"gasLimit"`)
	})

	t.Run("forwarded allocation", func(t *testing.T) {
		msg := &vault.Message{
			Nonce:     3,
			Target:    types.StringToAddress("9"),
			GasLimit:  50000,
			Amount:    big.NewInt(10),
			Forwarded: true,
		}

		out, err := json.Marshal(toMessage(msg))
		require.NoError(t, err)

		s := string(out)
		assert.Contains(t, s, `"forwarded":true`)
		assert.Contains(t, s, `"gasLimit":"0xc350"`)
		assert.Contains(t, s, `"target"`)
	})
}

func TestMessageView_FromEvent(t *testing.T) {
	evnt := &vault.Event{
		Type:     vault.MessageAllocated,
		From:     types.StringToAddress("1"),
		To:       types.StringToAddress("2"),
		Target:   types.StringToAddress("9"),
		GasLimit: 30000,
		Nonce:    4,
		Hash:     types.StringToHash("4"),
		Amount:   big.NewInt(42),
		Fee:      new(big.Int),
	}

	view := toMessageFromEvent(evnt)

	assert.Equal(t, argUint64(4), view.Nonce)
	assert.Equal(t, evnt.Hash, view.Hash)
	assert.True(t, view.Forwarded)
	require.NotNil(t, view.Target)
	assert.Equal(t, evnt.Target, *view.Target)
	require.NotNil(t, view.GasLimit)
	assert.Equal(t, argUint64(30000), *view.GasLimit)
}
