package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"molt-core/pkg/logger"
)

// Reader 只读链访问接口
// Verifier / Booster / Scanner 都只依赖这个接口, 测试中用假实现替换
type Reader interface {
	// TransactionReceipt 获取交易回执 (状态 + 日志)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	// TransactionByHash 获取交易本体 (to / value)
	TransactionByHash(ctx context.Context, txHash common.Hash) (*types.Transaction, bool, error)
	// BalanceBatch 批量查询 holder 在多个 token 合约上的余额
	// 返回切片与 tokens 一一对应; 单个调用失败时对应位置为 nil, 不中断整批
	BalanceBatch(ctx context.Context, holder common.Address, tokens []common.Address) ([]*big.Int, error)
}

// Client 基于单个 JSON-RPC 端点的 Reader 实现
type Client struct {
	eth       *ethclient.Client
	rpc       *rpc.Client
	chunkSize int
}

// Dial 连接 RPC 节点
// chunkSize 限制单次批量请求的大小, 避免触发节点的请求体上限
func Dial(rpcURL string, chunkSize int) (*Client, error) {
	rc, err := rpc.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc %s: %w", rpcURL, err)
	}
	if chunkSize <= 0 {
		chunkSize = 50
	}
	return &Client{
		eth:       ethclient.NewClient(rc),
		rpc:       rc,
		chunkSize: chunkSize,
	}, nil
}

func (c *Client) Close() {
	c.rpc.Close()
}

func (c *Client) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return c.eth.TransactionReceipt(ctx, txHash)
}

func (c *Client) TransactionByHash(ctx context.Context, txHash common.Hash) (*types.Transaction, bool, error) {
	return c.eth.TransactionByHash(ctx, txHash)
}

func (c *Client) BalanceBatch(ctx context.Context, holder common.Address, tokens []common.Address) ([]*big.Int, error) {
	results := make([]*big.Int, len(tokens))

	for start := 0; start < len(tokens); start += c.chunkSize {
		end := start + c.chunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		if err := c.balanceChunk(ctx, holder, tokens[start:end], results[start:end]); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// balanceChunk 对一个分片发起一次 JSON-RPC 批量请求
// 整批网络失败返回 error; 单条 eth_call 失败只记日志, 结果置 nil
func (c *Client) balanceChunk(ctx context.Context, holder common.Address, tokens []common.Address, out []*big.Int) error {
	calldata := hexutil.Encode(BalanceOfCalldata(holder))

	batch := make([]rpc.BatchElem, len(tokens))
	raw := make([]string, len(tokens))
	for i, token := range tokens {
		batch[i] = rpc.BatchElem{
			Method: "eth_call",
			Args: []interface{}{
				map[string]interface{}{
					"to":   token.Hex(),
					"data": calldata,
				},
				"latest",
			},
			Result: &raw[i],
		}
	}

	if err := c.rpc.BatchCallContext(ctx, batch); err != nil {
		return fmt.Errorf("balance batch call: %w", err)
	}

	for i := range batch {
		if batch[i].Error != nil {
			logger.Debug("balanceOf call failed, skipping token",
				zap.String("token", tokens[i].Hex()),
				zap.Error(batch[i].Error))
			continue
		}
		val, err := hexutil.DecodeBig(trimLeadingZeros(raw[i]))
		if err != nil {
			logger.Debug("balanceOf returned undecodable data",
				zap.String("token", tokens[i].Hex()),
				zap.String("raw", raw[i]))
			continue
		}
		out[i] = val
	}
	return nil
}

// trimLeadingZeros 把 0x000...0abc 规整成 hexutil.DecodeBig 接受的 0xabc
func trimLeadingZeros(hexStr string) string {
	if len(hexStr) < 3 || hexStr[:2] != "0x" {
		return hexStr
	}
	digits := hexStr[2:]
	i := 0
	for i < len(digits)-1 && digits[i] == '0' {
		i++
	}
	return "0x" + digits[i:]
}
