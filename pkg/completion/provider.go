// Package completion abstracts a set of capability-equivalent
// OpenAI-compatible chat providers behind a single interface. Providers are
// tried in a fixed order; the first healthy one wins.
package completion

import (
	"context"
	"errors"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider 单个补全服务
type Provider interface {
	Name() string
	Complete(ctx context.Context, messages []Message) (string, error)
}

// ErrNoProvider is returned when no provider in the chain succeeded
var ErrNoProvider = errors.New("no completion provider available")

// Chain 按序故障转移的 Provider 列表
// 除这个有序切片外没有任何共享状态
type Chain struct {
	providers []Provider
	onFail    func(provider string)
}

func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// OnFailover registers a hook invoked with the failing provider's name
func (c *Chain) OnFailover(fn func(provider string)) {
	c.onFail = fn
}

// Available reports whether at least one provider is configured
func (c *Chain) Available() bool {
	return len(c.providers) > 0
}

// Complete 依次尝试每个 Provider, 全部失败时返回最后一个错误
func (c *Chain) Complete(ctx context.Context, messages []Message) (string, error) {
	if len(c.providers) == 0 {
		return "", ErrNoProvider
	}

	var lastErr error
	for _, p := range c.providers {
		content, err := p.Complete(ctx, messages)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if c.onFail != nil {
			c.onFail(p.Name())
		}
	}
	return "", lastErr
}
