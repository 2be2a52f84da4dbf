package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port  string // サーバーポート（8080）
	GoEnv string // development/production

	DatabaseURL      string // あれば最優先
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	JWTSecret  string        // JWT署名シークレット
	JWTTTL     time.Duration // アクセストークンの有効期限（7日）
	BcryptCost int

	FEURL string // フロントURL（CORS）

	RedisAddr       string // 空ならキャッシュなし
	RedisPassword   string
	ProductCacheTTL time.Duration

	KafkaBrokers        []string // 空ならイベント送信なし
	KafkaTopic          string
	KafkaPublishTimeout time.Duration

	JaegerEndpoint string // 空ならトレースを外に出さない

	StripeSecretKey string
	PaymentCurrency string

	SMTPHost     string // 空ならログ出力のみ
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	EmailFrom    string
	SupportEmail string
}

func (c Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// Loadは環境変数から読む（.envはmainで先に読み込む）
func Load() (Config, error) {
	pgPort, err := getInt("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	bcryptCost, err := getInt("BCRYPT_COST", 10)
	if err != nil {
		return Config{}, err
	}
	smtpPort, err := getInt("SMTP_PORT", 587)
	if err != nil {
		return Config{}, err
	}
	jwtTTL, err := getDuration("JWT_TTL", 7*24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	cacheTTL, err := getDuration("PRODUCT_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return Config{}, err
	}
	publishTimeout, err := getDuration("KAFKA_PUBLISH_TIMEOUT", 2*time.Second)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:  getEnv("PORT", "3001"),
		GoEnv: getEnv("GO_ENV", "development"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getEnv("POSTGRES_DB", "storefront"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		JWTTTL:     jwtTTL,
		BcryptCost: bcryptCost,

		FEURL: getEnv("FE_URL", "http://localhost:3000"),

		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		ProductCacheTTL: cacheTTL,

		KafkaBrokers:        splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:          getEnv("KAFKA_TOPIC", "order-events"),
		KafkaPublishTimeout: publishTimeout,

		JaegerEndpoint: os.Getenv("JAEGER_ENDPOINT"),

		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		PaymentCurrency: strings.ToLower(getEnv("PAYMENT_CURRENCY", "usd")),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     smtpPort,
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		EmailFrom:    getEnv("EMAIL_FROM", "noreply@storefront.local"),
		SupportEmail: getEnv("SUPPORT_EMAIL", "support@storefront.local"),
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.IsProduction() && cfg.StripeSecretKey == "" {
		return Config{}, fmt.Errorf("STRIPE_SECRET_KEY is required in production")
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return Config{}, fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}

	return cfg, nil
}

// PostgresDSN はDATABASE_URLが無いときの接続文字列
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
