package main

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"molt-core/internal/chain"
	"molt-core/internal/client"
	"molt-core/internal/handler"
	"molt-core/internal/model"
	"molt-core/internal/server"
	"molt-core/internal/service"
	"molt-core/internal/service/mq"

	"molt-core/pkg/cache"
	"molt-core/pkg/completion"
	"molt-core/pkg/config"
	"molt-core/pkg/database"
	"molt-core/pkg/logger"
	"molt-core/pkg/monitor"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	_ "molt-core/docs/swagger"
)

// @title Molt Core API
// @version 1.0
// @description Burn-to-earn Game Backend API
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
func main() {
	// 0. 初始化 Config
	config.Init()

	// 1. 初始化 Logger
	logger.Init(config.Global.App.Env)
	defer logger.Sync()

	// 2. 构造 DSN 并连接数据库
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		config.Global.DB.Host,
		config.Global.DB.User,
		config.Global.DB.Password,
		config.Global.DB.Name,
		config.Global.DB.Port,
	)
	db, err := database.ConnectPostgres(dsn)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	// 3. 连接 Redis
	rdb, err := database.ConnectRedis(config.Global.Redis.Addr, config.Global.Redis.Password, config.Global.Redis.DB)
	if err != nil {
		logger.Fatal("Redis 连接失败", zap.Error(err))
	}

	// 4. 执行数据库迁移 (Auto Migrate)
	if config.Global.App.Env == "development" {
		logger.Info("开发环境: 尝试自动迁移 Schema (GORM AutoMigrate)...")
		if err := db.AutoMigrate(model.AllModels()...); err != nil {
			logger.Fatal("数据库自动迁移失败", zap.Error(err))
		}
		logger.Info("数据库自动迁移完成 (Dev Mode)")
	} else {
		logger.Info("生产环境: 跳过 AutoMigrate，请使用 migrate 工具管理 Schema")
	}

	// 5. 链访问与外部数据源
	reader, err := chain.Dial(config.Global.Chain.RpcUrl, config.Global.Scanner.BalanceChunkSize)
	if err != nil {
		logger.Fatal("RPC 节点连接失败", zap.Error(err))
	}
	indexer := client.NewIndexer(config.Global.Chain.IndexerUrl)
	prices := client.NewPriceOracle(config.Global.Chain.PriceUrl, config.Global.Scanner.PriceChunkSize)
	social := client.NewFarcaster(config.Global.Neynar.BaseUrl, config.Global.Neynar.ApiKey)

	platformWallet := common.HexToAddress(config.Global.Chain.PlatformWallet)

	// 6. 业务服务
	redisCache := cache.NewRedisCache(rdb)
	verifier := service.NewVerifier(db, reader)
	ledger := service.NewLedger(db)
	booster := service.NewBooster(db, reader, social, redisCache, service.BoosterConfig{
		PlatformWallet: platformWallet,
		PriceShortWei:  mustParseWei(config.Global.Boost.PriceShortWei),
		PriceLongWei:   mustParseWei(config.Global.Boost.PriceLongWei),
		BurnRatePerUsd: config.Global.Boost.BurnRatePerUsd,
	})
	shop := service.NewShop(db, reader, service.ShopConfig{
		PlatformWallet:       platformWallet,
		PriceSubscriptionWei: mustParseWei(config.Global.Shop.PriceSubscriptionWei),
		PriceTrialWei:        mustParseWei(config.Global.Shop.PriceTrialWei),
	})
	scanTTL := time.Duration(config.Global.Scanner.CacheTTLSeconds) * time.Second
	scanner := service.NewScanner(reader, indexer, prices, redisCache, scanTTL)
	arcade := service.NewArcade(db)
	graveyard := service.NewGraveyard(db)

	// 7. 助手补全链: 按顺序故障转移, Key 为空的 Provider 跳过
	assistant := buildCompletionChain()

	// 8. 消息队列 + 中继
	var producer mq.Producer
	if config.Global.Redis.MQType == "kafka" {
		logger.Info("使用 Kafka 作为消息队列...")
		producer = mq.NewKafkaProducer(config.Global.Kafka.Brokers)
	} else {
		logger.Info("使用 Redis Streams 作为消息队列...")
		producer = mq.NewRedisProducer(rdb)
	}

	ctx, cancel := context.WithCancel(context.Background())
	relay := service.NewRelayService(db, producer)
	go relay.Start(ctx)

	// 9. HTTP Router
	r := server.NewHTTPRouter(server.Handlers{
		Action:    handler.NewActionHandler(verifier, ledger),
		Boost:     handler.NewBoostHandler(booster),
		Scan:      handler.NewScanHandler(scanner),
		Stats:     handler.NewStatsHandler(ledger, social),
		Shop:      handler.NewShopHandler(shop),
		Play:      handler.NewPlayHandler(arcade),
		Graveyard: handler.NewGraveyardHandler(graveyard),
		Assistant: handler.NewAssistantHandler(assistant),
	})

	// 10. 启动应用 (阻塞)
	app := server.New(server.Config{HttpPort: config.Global.App.HttpPort}, r, cancel)
	app.Run()

	// 11. 退出后资源清理
	logger.Info("正在关闭数据库连接...")
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	rdb.Close()
	reader.Close()
	logger.Info("系统已退出")
}

// buildCompletionChain 按 Groq -> OpenRouter -> GitHub Models 的顺序组装
func buildCompletionChain() *completion.Chain {
	var providers []completion.Provider
	cfg := config.Global.Molt

	if cfg.GroqKey != "" {
		providers = append(providers, completion.NewOpenAICompatible(
			"groq",
			"https://api.groq.com/openai/v1/chat/completions",
			cfg.GroqKey,
			"llama-3.3-70b-versatile",
			nil,
		))
	}
	if cfg.OpenRouterKey != "" {
		providers = append(providers, completion.NewOpenAICompatible(
			"openrouter",
			"https://openrouter.ai/api/v1/chat/completions",
			cfg.OpenRouterKey,
			"meta-llama/llama-3.3-70b-instruct",
			map[string]string{"HTTP-Referer": cfg.AppUrl},
		))
	}
	if cfg.GithubKey != "" {
		providers = append(providers, completion.NewOpenAICompatible(
			"github",
			"https://models.inference.ai.azure.com/chat/completions",
			cfg.GithubKey,
			"gpt-4o-mini",
			nil,
		))
	}

	chain := completion.NewChain(providers...)
	chain.OnFailover(func(provider string) {
		logger.Warn("completion provider failed, failing over", zap.String("provider", provider))
		if monitor.Business != nil {
			monitor.Business.CompletionFailovers.WithLabelValues(provider).Inc()
		}
	})
	if !chain.Available() {
		logger.Info("未配置任何补全 Provider, 助手接口将返回不可用")
	}
	return chain
}

func mustParseWei(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		logger.Fatal("无法解析 wei 价格配置", zap.String("value", s))
	}
	return v
}
