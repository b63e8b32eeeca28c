package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	DB       DBConfig       `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Neynar   NeynarConfig   `mapstructure:"neynar"`
	Boost    BoostConfig    `mapstructure:"boost"`
	Shop     ShopConfig     `mapstructure:"shop"`
	Molt     MoltBotConfig  `mapstructure:"moltbot"`
	Scanner  ScannerConfig  `mapstructure:"scanner"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	HttpPort string `mapstructure:"http_port"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	MQType   string `mapstructure:"mq_type"` // "redis" or "kafka"
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
}

// ChainConfig Base 链访问配置
type ChainConfig struct {
	RpcUrl         string `mapstructure:"rpc_url"`
	IndexerUrl     string `mapstructure:"indexer_url"`     // Blockscout 根地址
	PriceUrl       string `mapstructure:"price_url"`       // DefiLlama 根地址
	PlatformWallet string `mapstructure:"platform_wallet"` // 平台收款地址
}

type NeynarConfig struct {
	ApiKey  string `mapstructure:"api_key"`
	BaseUrl string `mapstructure:"base_url"`
}

// BoostConfig 推广位价格与时长参数
type BoostConfig struct {
	PriceShortWei string `mapstructure:"price_short_wei"` // 10 分钟档价格下限
	PriceLongWei  string `mapstructure:"price_long_wei"`  // 30 分钟档价格下限
	BurnRatePerUsd int   `mapstructure:"burn_rate_per_usd"` // 每燃烧 1 USD 兑换的分钟数
}

type ShopConfig struct {
	PriceSubscriptionWei string `mapstructure:"price_subscription_wei"`
	PriceTrialWei        string `mapstructure:"price_trial_wei"`
}

// MoltBotConfig 按顺序排列的补全服务 Provider (Key 为空的会被跳过)
type MoltBotConfig struct {
	GroqKey       string `mapstructure:"groq_key"`
	OpenRouterKey string `mapstructure:"openrouter_key"`
	GithubKey     string `mapstructure:"github_key"`
	AppUrl        string `mapstructure:"app_url"`
}

type ScannerConfig struct {
	BalanceChunkSize int `mapstructure:"balance_chunk_size"`
	PriceChunkSize   int `mapstructure:"price_chunk_size"`
	CacheTTLSeconds  int `mapstructure:"cache_ttl_seconds"`
}

var Global Config

func Init() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// 环境变量覆盖 (MOLT_DB_PASSWORD 等)
	viper.SetEnvPrefix("molt")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Warning: Config file not found, using defaults and environment variables")
		} else {
			log.Fatalf("Fatal error config file: %s \n", err)
		}
	}

	if err := viper.Unmarshal(&Global); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	log.Printf("Configuration loaded successfully. Env: %s", Global.App.Env)
}

func setDefaults() {
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.http_port", "8080")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.user", "molt_user")
	viper.SetDefault("db.password", "molt_password")
	viper.SetDefault("db.name", "molt_db")

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.mq_type", "redis")

	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})

	viper.SetDefault("chain.rpc_url", "https://mainnet.base.org")
	viper.SetDefault("chain.indexer_url", "https://base.blockscout.com")
	viper.SetDefault("chain.price_url", "https://coins.llama.fi")
	viper.SetDefault("chain.platform_wallet", "0x0000000000000000000000000000000000000000")

	viper.SetDefault("neynar.base_url", "https://api.neynar.com")

	// 0.0005 ETH / 0.001 ETH
	viper.SetDefault("boost.price_short_wei", "500000000000000")
	viper.SetDefault("boost.price_long_wei", "1000000000000000")
	viper.SetDefault("boost.burn_rate_per_usd", 2)

	// 0.002 ETH 月订阅, 0.0002 ETH 体验
	viper.SetDefault("shop.price_subscription_wei", "2000000000000000")
	viper.SetDefault("shop.price_trial_wei", "200000000000000")

	viper.SetDefault("moltbot.app_url", "https://molt.example.app")

	viper.SetDefault("scanner.balance_chunk_size", 50)
	viper.SetDefault("scanner.price_chunk_size", 30)
	viper.SetDefault("scanner.cache_ttl_seconds", 30)
}
