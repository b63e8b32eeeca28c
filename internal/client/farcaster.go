package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// CastAuthor 作者快照, 会被冗余存进 boost 行
type CastAuthor struct {
	FID         int64  `json:"fid"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	PfpURL      string `json:"pfp_url"`
}

type CastEmbed struct {
	URL string `json:"url"`
}

// Cast Neynar 返回的帖子内容
type Cast struct {
	Hash   string      `json:"hash"`
	Author CastAuthor  `json:"author"`
	Text   string      `json:"text"`
	Embeds []CastEmbed `json:"embeds"`
}

// FarcasterUser 社交档案 (bulk 接口返回)
type FarcasterUser struct {
	FID            int64    `json:"fid"`
	Username       string   `json:"username"`
	DisplayName    string   `json:"display_name"`
	PfpURL         string   `json:"pfp_url"`
	FollowerCount  int64    `json:"follower_count"`
	FollowingCount int64    `json:"following_count"`
	Verifications  []string `json:"verifications"`
}

// SocialGraph 社交图读取接口, 测试用假实现替换
type SocialGraph interface {
	CastByURL(ctx context.Context, castURL string) (*Cast, error)
	UserByFID(ctx context.Context, fid int64) (*FarcasterUser, error)
}

// Farcaster Neynar v2 客户端
type Farcaster struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewFarcaster(baseURL, apiKey string) *Farcaster {
	return &Farcaster{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (f *Farcaster) get(ctx context.Context, endpoint string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api_key", f.apiKey)

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("neynar request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("neynar status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

// CastByURL 按 URL 解析帖子, 用于 boost 的 preview 与快照
func (f *Farcaster) CastByURL(ctx context.Context, castURL string) (*Cast, error) {
	endpoint := fmt.Sprintf("%s/v2/farcaster/cast?identifier=%s&type=url",
		f.baseURL, url.QueryEscape(castURL))

	var out struct {
		Cast Cast `json:"cast"`
	}
	if err := f.get(ctx, endpoint, &out); err != nil {
		return nil, err
	}
	return &out.Cast, nil
}

// UserByFID 拉取单个用户档案
func (f *Farcaster) UserByFID(ctx context.Context, fid int64) (*FarcasterUser, error) {
	endpoint := fmt.Sprintf("%s/v2/farcaster/user/bulk?fids=%d", f.baseURL, fid)

	var out struct {
		Users []FarcasterUser `json:"users"`
	}
	if err := f.get(ctx, endpoint, &out); err != nil {
		return nil, err
	}
	if len(out.Users) == 0 {
		return nil, fmt.Errorf("fid %d not found", fid)
	}
	return &out.Users[0], nil
}
