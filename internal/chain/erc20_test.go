package chain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transferLog(token, from, to common.Address, value *big.Int) *types.Log {
	return &types.Log{
		Address: token,
		Topics: []common.Hash{
			TransferTopic,
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
		},
		Data: common.LeftPadBytes(value.Bytes(), 32),
	}
}

func TestDecodeTransfer(t *testing.T) {
	token := common.HexToAddress("0x4ed4E862860beD51a9570b96d89aF5E1B0Efefed")
	from := common.HexToAddress("0x1111111111111111111111111111111111111111")
	value := big.NewInt(123456789)

	ev, err := DecodeTransfer(transferLog(token, from, DeadAddress, value))
	require.NoError(t, err)

	assert.Equal(t, token, ev.Token)
	assert.Equal(t, from, ev.From)
	assert.Equal(t, DeadAddress, ev.To)
	assert.Equal(t, 0, ev.Value.Cmp(value))
}

func TestDecodeTransfer_NotTransfer(t *testing.T) {
	tests := []struct {
		name string
		lg   *types.Log
	}{
		{
			name: "wrong topic",
			lg: &types.Log{
				Topics: []common.Hash{common.HexToHash("0xdead"), {}, {}},
				Data:   make([]byte, 32),
			},
		},
		{
			name: "approval-like two topics",
			lg: &types.Log{
				Topics: []common.Hash{TransferTopic, {}},
				Data:   make([]byte, 32),
			},
		},
		{
			name: "erc721 transfer with empty data",
			lg: &types.Log{
				Topics: []common.Hash{TransferTopic, {}, {}},
				Data:   nil,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTransfer(tt.lg)
			assert.ErrorIs(t, err, ErrNotTransfer)
		})
	}
}

func TestBalanceOfCalldata(t *testing.T) {
	holder := common.HexToAddress("0x2222222222222222222222222222222222222222")
	data := BalanceOfCalldata(holder)

	require.Len(t, data, 36)
	// selector for balanceOf(address)
	assert.Equal(t, []byte{0x70, 0xa0, 0x82, 0x31}, data[:4])
	assert.Equal(t, common.LeftPadBytes(holder.Bytes(), 32), data[4:])
}

func TestTrimLeadingZeros(t *testing.T) {
	assert.Equal(t, "0xabc", trimLeadingZeros("0x0000abc"))
	assert.Equal(t, "0x0", trimLeadingZeros("0x0000000"))
	assert.Equal(t, "0x1", trimLeadingZeros("0x1"))
}
