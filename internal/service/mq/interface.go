package mq

import "context"

// Producer 生产者接口
// 本服务只产出事件 (奖励/推广), 消费端在下游服务里
type Producer interface {
	// Publish 发送消息
	// key: 分区键 (例如 fid), 传空字符串则随机分区
	Publish(ctx context.Context, topic string, key string, payload []byte) error
}

// 事件主题
const (
	TopicRewards = "molt_events_rewards"
	TopicBoosts  = "molt_events_boosts"
)
