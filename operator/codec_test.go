package operator

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/edge-vault/types"
)

func TestParams_AbiRoundtrip(t *testing.T) {
	t.Parallel()

	to := types.StringToAddress("0x11")
	token := types.StringToAddress("0x22")
	target := types.StringToAddress("0x33")

	t.Run("release value", func(t *testing.T) {
		t.Parallel()

		params := &ReleaseValueParams{
			SourceChainID: big.NewInt(10),
			DestChainID:   big.NewInt(100),
			To:            to,
			TokenID:       token,
			Amount:        big.NewInt(5000),
		}

		encoded, err := params.EncodeAbi()
		require.NoError(t, err)

		decoded := &ReleaseValueParams{}
		require.NoError(t, decoded.DecodeAbi(encoded))
		require.Equal(t, params, decoded)
	})

	t.Run("send token to user", func(t *testing.T) {
		t.Parallel()

		params := &SendTokenToUserParams{
			TokenID: token,
			To:      to,
			Amount:  big.NewInt(77),
		}

		encoded, err := params.EncodeAbi()
		require.NoError(t, err)

		decoded := &SendTokenToUserParams{}
		require.NoError(t, decoded.DecodeAbi(encoded))
		require.Equal(t, params, decoded)
	})

	t.Run("sequence received", func(t *testing.T) {
		t.Parallel()

		params := &SequenceReceivedParams{
			From:   to,
			To:     target,
			Amount: big.NewInt(123),
		}

		encoded, err := params.EncodeAbi()
		require.NoError(t, err)

		decoded := &SequenceReceivedParams{}
		require.NoError(t, decoded.DecodeAbi(encoded))
		require.Equal(t, params, decoded)
	})

	t.Run("sequence allocated", func(t *testing.T) {
		t.Parallel()

		params := &SequenceAllocatedParams{
			Target:   target,
			From:     to,
			To:       token,
			Amount:   big.NewInt(9),
			GasLimit: big.NewInt(300000),
		}

		encoded, err := params.EncodeAbi()
		require.NoError(t, err)

		decoded := &SequenceAllocatedParams{}
		require.NoError(t, decoded.DecodeAbi(encoded))
		require.Equal(t, params, decoded)
	})

	t.Run("set chain whitelist", func(t *testing.T) {
		t.Parallel()

		params := &SetChainWhitelistParams{
			ChainID: big.NewInt(10),
			Allowed: true,
		}

		encoded, err := params.EncodeAbi()
		require.NoError(t, err)

		decoded := &SetChainWhitelistParams{}
		require.NoError(t, decoded.DecodeAbi(encoded))
		require.Equal(t, params, decoded)
	})

	t.Run("set token whitelist", func(t *testing.T) {
		t.Parallel()

		params := &SetTokenWhitelistParams{
			TokenID: token,
			Allowed: true,
		}

		encoded, err := params.EncodeAbi()
		require.NoError(t, err)

		decoded := &SetTokenWhitelistParams{}
		require.NoError(t, decoded.DecodeAbi(encoded))
		require.Equal(t, params, decoded)
	})

	t.Run("set min transfer amount", func(t *testing.T) {
		t.Parallel()

		params := &SetMinTransferAmountParams{Amount: big.NewInt(100)}

		encoded, err := params.EncodeAbi()
		require.NoError(t, err)

		decoded := &SetMinTransferAmountParams{}
		require.NoError(t, decoded.DecodeAbi(encoded))
		require.Equal(t, params, decoded)
	})

	t.Run("set fee rate", func(t *testing.T) {
		t.Parallel()

		params := &SetFeeRateParams{Rate: big.NewInt(25)}

		encoded, err := params.EncodeAbi()
		require.NoError(t, err)

		decoded := &SetFeeRateParams{}
		require.NoError(t, decoded.DecodeAbi(encoded))
		require.Equal(t, params, decoded)
	})
}

func TestParams_DecodeInvalid(t *testing.T) {
	t.Parallel()

	encoded, err := (&SetFeeRateParams{Rate: big.NewInt(1)}).EncodeAbi()
	require.NoError(t, err)

	// truncated buffer
	require.Error(t, (&SetFeeRateParams{}).DecodeAbi(encoded[:len(encoded)-1]))

	// tuple layout of a different method
	require.Error(t, (&SetChainWhitelistParams{}).DecodeAbi(encoded))
}
