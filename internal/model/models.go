package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User 玩家表
// fid 由外部社交网络签发, 直接作为主键; 用户只增不删
// 列名显式固定为 fid: 默认命名策略会把 FID 拆成 f_id, 与原生 SQL 对不上
type User struct {
	FID        int64        `gorm:"column:fid;primaryKey;autoIncrement:false" json:"fid"`
	XP         int64        `gorm:"not null;default:0;index" json:"xp"`
	Metadata   UserMetadata `gorm:"serializer:json" json:"data"`
	LastActive time.Time    `json:"last_active"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// UserMetadata 用户扩展数据 (JSON 整体读改写, 禁止部分覆盖)
type UserMetadata struct {
	SubscriptionStatus string          `json:"subscription_status,omitempty"`
	SubscriptionPlan   string          `json:"subscription_plan,omitempty"`
	SubscriptionEnd    *time.Time      `json:"subscription_end,omitempty"`
	LastPaymentHash    string          `json:"last_payment_hash,omitempty"`
	LastSpin           int64           `json:"lastSpin,omitempty"` // ms epoch
	LastQuiz           int64           `json:"lastQuiz,omitempty"` // ms epoch
	TotalBurnedUsd     decimal.Decimal `json:"total_burned_usd"`
	TotalSwappedUsd    decimal.Decimal `json:"total_swapped_usd"`
}

// SubscriptionActive 订阅是否有效 (状态 active 且未过期)
func (m UserMetadata) SubscriptionActive(now time.Time) bool {
	return m.SubscriptionStatus == "active" &&
		m.SubscriptionEnd != nil &&
		m.SubscriptionEnd.After(now)
}

// BurnRecord 已验证交易的奖励记录, 只追加
// 核心设计: tx_hash 上的唯一索引是整个系统唯一的并发控制手段,
// 两个并发请求带同一个 hash 时只有一个能插入成功
type BurnRecord struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TxHash    string          `gorm:"type:varchar(80);not null;uniqueIndex" json:"tx_hash"`
	FID       int64           `gorm:"column:fid;not null;index" json:"fid"`
	Token     string          `gorm:"type:varchar(64);not null" json:"token"`
	Amount    decimal.Decimal `gorm:"type:decimal(78,0);not null;default:0" json:"amount"` // raw 单位
	XPAwarded int64           `gorm:"not null" json:"xp_awarded"`
	CreatedAt time.Time       `json:"created_at"`
}

// Boost 限时推广位
// 主题内容冗余成快照, listActive 不需要任何 join 或外部调用
// 行永不删除, 过期只靠查询时过滤
type Boost struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	FID         int64     `gorm:"column:fid;not null;index" json:"fid"`
	SubjectType string    `gorm:"type:varchar(10);not null" json:"subject_type"` // cast / coin
	SubjectRef  string    `gorm:"type:varchar(255);not null" json:"subject_ref"` // cast hash/url 或 coin 地址
	AuthorName  string    `gorm:"type:varchar(255)" json:"author_name"`
	AuthorPfp   string    `gorm:"type:varchar(512)" json:"author_pfp"`
	Text        string    `gorm:"type:text" json:"text"`
	Image       string    `gorm:"type:varchar(512)" json:"image"`
	BoostedUntil int64    `gorm:"not null;index" json:"boosted_until"` // ms epoch
	TxHash      string    `gorm:"type:varchar(80);not null;index" json:"tx_hash"` // FREE_BOOST 会重复, 不唯一
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// Coin 墓地里的币
type Coin struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol         string    `gorm:"type:varchar(20);not null;uniqueIndex" json:"symbol"`
	Name           string    `gorm:"type:varchar(255)" json:"name"`
	DeathCount     int64     `gorm:"not null;default:0" json:"death_count"`
	Status         string    `gorm:"type:varchar(20);not null;default:'dead'" json:"status"`
	LastDeclaredBy int64     `json:"last_declared_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// OutboxEvent 本地消息表 (Transactional Outbox)
// 与业务写入同事务落库, Relay 轮询后投递到 MQ
type OutboxEvent struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Topic     string    `gorm:"type:varchar(255);not null" json:"topic"`
	Key       string    `gorm:"type:varchar(255)" json:"key"`
	Payload   []byte    `gorm:"type:text;not null" json:"payload"`
	Status    string    `gorm:"type:varchar(50);not null;default:'PENDING';index" json:"status"` // PENDING, SENT
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (User) TableName() string        { return "users" }
func (BurnRecord) TableName() string  { return "burn_records" }
func (Boost) TableName() string       { return "boosts" }
func (Coin) TableName() string        { return "coins" }
func (OutboxEvent) TableName() string { return "outbox_events" }
