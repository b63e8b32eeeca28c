package service

import (
	"context"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"molt-core/internal/chain"
	"molt-core/internal/client"
	"molt-core/internal/model"
)

// newTestDB 每个测试一个独立的内存库
// TranslateError 必须开: 幂等逻辑依赖 gorm.ErrDuplicatedKey
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("打开内存数据库失败: %v", err)
	}
	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}
	return db
}

// fakeReader 预置回执/交易/余额的链读取假实现
type fakeReader struct {
	receipts   map[common.Hash]*types.Receipt
	txs        map[common.Hash]*types.Transaction
	balances   map[common.Address]*big.Int
	receiptErr error
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		receipts: make(map[common.Hash]*types.Receipt),
		txs:      make(map[common.Hash]*types.Transaction),
		balances: make(map[common.Address]*big.Int),
	}
}

func (f *fakeReader) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	if f.receiptErr != nil {
		return nil, f.receiptErr
	}
	r, ok := f.receipts[txHash]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return r, nil
}

func (f *fakeReader) TransactionByHash(ctx context.Context, txHash common.Hash) (*types.Transaction, bool, error) {
	tx, ok := f.txs[txHash]
	if !ok {
		return nil, false, fmt.Errorf("not found")
	}
	return tx, false, nil
}

func (f *fakeReader) BalanceBatch(ctx context.Context, holder common.Address, tokens []common.Address) ([]*big.Int, error) {
	out := make([]*big.Int, len(tokens))
	for i, tok := range tokens {
		out[i] = f.balances[tok]
	}
	return out, nil
}

// addTx 注册一笔成功的交易及其回执
func (f *fakeReader) addTx(hash common.Hash, to common.Address, value *big.Int, logs ...*types.Log) {
	f.txs[hash] = types.NewTx(&types.LegacyTx{
		Nonce:    0,
		To:       &to,
		Value:    value,
		Gas:      21000,
		GasPrice: big.NewInt(1),
	})
	f.receipts[hash] = &types.Receipt{
		Status: types.ReceiptStatusSuccessful,
		Logs:   logs,
	}
}

// transferLog 构造一条标准 ERC-20 Transfer 日志
func transferLog(token, from, to common.Address, value *big.Int) *types.Log {
	return &types.Log{
		Address: token,
		Topics: []common.Hash{
			chain.TransferTopic,
			common.BytesToHash(common.LeftPadBytes(from.Bytes(), 32)),
			common.BytesToHash(common.LeftPadBytes(to.Bytes(), 32)),
		},
		Data: common.LeftPadBytes(value.Bytes(), 32),
	}
}

// fakeSocial 预置帖子的社交图假实现
type fakeSocial struct {
	casts map[string]*client.Cast
	users map[int64]*client.FarcasterUser
}

func (f *fakeSocial) CastByURL(ctx context.Context, castURL string) (*client.Cast, error) {
	c, ok := f.casts[castURL]
	if !ok {
		return nil, fmt.Errorf("cast not found")
	}
	return c, nil
}

func (f *fakeSocial) UserByFID(ctx context.Context, fid int64) (*client.FarcasterUser, error) {
	u, ok := f.users[fid]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	return u, nil
}

// seedSubscriber 预置一个订阅到 until 的用户
func seedSubscriber(t *testing.T, db *gorm.DB, fid int64, until time.Time) {
	t.Helper()
	user := model.User{
		FID: fid,
		Metadata: model.UserMetadata{
			SubscriptionStatus: "active",
			SubscriptionPlan:   "subscription",
			SubscriptionEnd:    &until,
		},
		CreatedAt: time.Now(),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("预置订阅用户失败: %v", err)
	}
}
