package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Admin    AdminConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Payment  PaymentConfig
	S3       S3Config
	Loyalty  LoyaltyConfig
	Schedule ScheduleConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxIdleConns int
	MaxOpenConns int
}

type CORSConfig struct {
	AllowedOrigins []string
}

// AdminConfig 운영 도구 접근 키 (출금 목록, 보고서)
type AdminConfig struct {
	APIKey string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers     []string
	LedgerTopic string
}

type PaymentConfig struct {
	KakaoPay KakaoPayConfig
	// WebhookSecret 결제사 완료 통지 서명 키 (HMAC-SHA256). 비우면 통지 API 를 막는다.
	WebhookSecret string
}

type KakaoPayConfig struct {
	AdminKey    string
	CID         string
	BaseURL     string
	ApprovalURL string
	FailURL     string
	CancelURL   string
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
	Endpoint        string // S3 호환 스토리지 (MinIO 등), 비우면 AWS
	ReportPrefix    string
}

// LoyaltyConfig 적립/쿠폰/출금 정책 값
// 요율은 basis point 단위 (300 = 3%)
type LoyaltyConfig struct {
	EntryValidity         time.Duration
	WelcomePoints         int64
	GuestBuyerRateBP      int64 // 비회원 구매자 적립률
	MemberBuyerRateBP     int64 // 추천인 없는 회원 구매자 적립률
	ReferredBuyerRateBP   int64 // 추천인이 있는 회원 구매자 적립률
	ReferrerRateBP        int64 // 추천인 적립률 (등급과 무관)
	WithdrawalMinimum     int64
	WithdrawalStep        int64
	StoreCommissionRateBP int64
	CentralDispatchSLA    time.Duration
	Timezone              string
	BalanceCacheTTL       time.Duration
	PaymentIdempotencyTTL time.Duration
	PaymentGuardWait      time.Duration // 같은 거래 ID 처리 중일 때 기다리는 최대 시간
}

type ScheduleConfig struct {
	ExpirySweepSpec     string
	DispatchMonitorSpec string
	ReportSpec          string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "1234"),
			DBName:   getEnv("DB_NAME", "hwawon"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxIdleConns: parseInt(getEnv("DB_MAX_IDLE_CONNS", "10"), 10),
			MaxOpenConns: parseInt(getEnv("DB_MAX_OPEN_CONNS", "100"), 100),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Admin: AdminConfig{
			APIKey: getEnv("ADMIN_API_KEY", ""),
		},
		Redis: RedisConfig{
			Enabled:  parseBool(getEnv("REDIS_ENABLED", "false")),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		Kafka: KafkaConfig{
			Brokers:     parseSlice(getEnv("KAFKA_BROKERS", "")),
			LedgerTopic: getEnv("KAFKA_LEDGER_TOPIC", "ledger.events.v1"),
		},
		Payment: PaymentConfig{
			KakaoPay: KakaoPayConfig{
				AdminKey:    getEnv("KAKAOPAY_ADMIN_KEY", ""),
				CID:         getEnv("KAKAOPAY_CID", "TC0ONETIME"),
				BaseURL:     getEnv("KAKAOPAY_BASE_URL", "https://open-api.kakaopay.com/online/v1/payment"),
				ApprovalURL: getEnv("KAKAOPAY_APPROVAL_URL", "http://localhost:8080/api/v1/payments/kakao/success"),
				FailURL:     getEnv("KAKAOPAY_FAIL_URL", "http://localhost:8080/api/v1/payments/kakao/fail"),
				CancelURL:   getEnv("KAKAOPAY_CANCEL_URL", "http://localhost:8080/api/v1/payments/kakao/cancel"),
			},
			WebhookSecret: getEnv("PAYMENT_WEBHOOK_SECRET", ""),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "ap-northeast-2"),
			Bucket:          getEnv("AWS_S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
			Endpoint:        getEnv("AWS_S3_ENDPOINT", ""),
			ReportPrefix:    getEnv("AWS_S3_REPORT_PREFIX", "reports/withdrawals"),
		},
		Loyalty: LoyaltyConfig{
			EntryValidity:         parseDuration(getEnv("LEDGER_ENTRY_VALIDITY", "720h"), 30*24*time.Hour),
			WelcomePoints:         parseInt64(getEnv("LOYALTY_WELCOME_POINTS", "3000"), 3000),
			GuestBuyerRateBP:      parseInt64(getEnv("LOYALTY_GUEST_BUYER_RATE_BP", "300"), 300),
			MemberBuyerRateBP:     parseInt64(getEnv("LOYALTY_MEMBER_BUYER_RATE_BP", "300"), 300),
			ReferredBuyerRateBP:   parseInt64(getEnv("LOYALTY_REFERRED_BUYER_RATE_BP", "500"), 500),
			ReferrerRateBP:        parseInt64(getEnv("LOYALTY_REFERRER_RATE_BP", "300"), 300),
			WithdrawalMinimum:     parseInt64(getEnv("WITHDRAWAL_MINIMUM", "5000"), 5000),
			WithdrawalStep:        parseInt64(getEnv("WITHDRAWAL_STEP", "5000"), 5000),
			StoreCommissionRateBP: parseInt64(getEnv("STORE_COMMISSION_RATE_BP", "1000"), 1000),
			CentralDispatchSLA:    parseDuration(getEnv("CENTRAL_DISPATCH_SLA", "30m"), 30*time.Minute),
			Timezone:              getEnv("LOYALTY_TIMEZONE", "Asia/Seoul"),
			BalanceCacheTTL:       parseDuration(getEnv("BALANCE_CACHE_TTL", "5s"), 5*time.Second),
			PaymentIdempotencyTTL: parseDuration(getEnv("PAYMENT_IDEMPOTENCY_TTL", "10m"), 10*time.Minute),
			PaymentGuardWait:      parseDuration(getEnv("PAYMENT_GUARD_WAIT", "5s"), 5*time.Second),
		},
		Schedule: ScheduleConfig{
			ExpirySweepSpec:     getEnv("SCHEDULE_EXPIRY_SWEEP", "*/10 * * * *"),
			DispatchMonitorSpec: getEnv("SCHEDULE_DISPATCH_MONITOR", "* * * * *"),
			ReportSpec:          getEnv("SCHEDULE_WITHDRAWAL_REPORT", "0 9 * * *"),
		},
	}

	if config.Loyalty.WithdrawalStep <= 0 || config.Loyalty.WithdrawalMinimum <= 0 {
		return nil, fmt.Errorf("withdrawal minimum and step must be positive")
	}

	return config, nil
}

// DefaultLoyalty returns the policy values used when no environment overrides exist.
func DefaultLoyalty() LoyaltyConfig {
	return LoyaltyConfig{
		EntryValidity:         30 * 24 * time.Hour,
		WelcomePoints:         3000,
		GuestBuyerRateBP:      300,
		MemberBuyerRateBP:     300,
		ReferredBuyerRateBP:   500,
		ReferrerRateBP:        300,
		WithdrawalMinimum:     5000,
		WithdrawalStep:        5000,
		StoreCommissionRateBP: 1000,
		CentralDispatchSLA:    30 * time.Minute,
		Timezone:              "Asia/Seoul",
		BalanceCacheTTL:       5 * time.Second,
		PaymentIdempotencyTTL: 10 * time.Minute,
		PaymentGuardWait:      5 * time.Second,
	}
}

// Location resolves the configured timezone, falling back to a fixed KST offset.
func (c LoyaltyConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt64(s string, fallback int64) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return v
}

func parseInt(s string, fallback int) int {
	return int(parseInt64(s, int64(fallback)))
}

func parseBool(s string) bool {
	v, err := strconv.ParseBool(s)
	return err == nil && v
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
