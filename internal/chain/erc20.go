package chain

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// DeadAddress 公认的黑洞地址, 转入即销毁
var DeadAddress = common.HexToAddress("0x000000000000000000000000000000000000dEaD")

// TransferTopic = keccak256("Transfer(address,address,uint256)")
var TransferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

var balanceOfSelector = crypto.Keccak256([]byte("balanceOf(address)"))[:4]

var ErrNotTransfer = errors.New("log is not an ERC-20 Transfer event")

// TransferEvent 解码后的 ERC-20 Transfer 日志
type TransferEvent struct {
	Token common.Address // 发出事件的合约
	From  common.Address
	To    common.Address
	Value *big.Int
}

// DecodeTransfer 尝试把一条日志解码为标准 ERC-20 Transfer
// 标准事件: topics = [签名, from, to], data = value (32 字节)
// 非 Transfer 日志返回 ErrNotTransfer, 调用方按需跳过
func DecodeTransfer(lg *types.Log) (*TransferEvent, error) {
	if len(lg.Topics) != 3 || lg.Topics[0] != TransferTopic {
		return nil, ErrNotTransfer
	}
	if len(lg.Data) != 32 {
		// ERC-721 的 Transfer 把 tokenId 放在 topic 里, data 为空, 这里一并排除
		return nil, ErrNotTransfer
	}
	return &TransferEvent{
		Token: lg.Address,
		From:  common.BytesToAddress(lg.Topics[1].Bytes()[12:]),
		To:    common.BytesToAddress(lg.Topics[2].Bytes()[12:]),
		Value: new(big.Int).SetBytes(lg.Data),
	}, nil
}

// BalanceOfCalldata 构造 balanceOf(holder) 的 eth_call 入参
func BalanceOfCalldata(holder common.Address) []byte {
	data := make([]byte, 0, 36)
	data = append(data, balanceOfSelector...)
	data = append(data, common.LeftPadBytes(holder.Bytes(), 32)...)
	return data
}
