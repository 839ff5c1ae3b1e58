package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// 문서 저장소 백엔드
const (
	BackendMongoDB = "mongodb"
	BackendMySQL   = "mysql"
	BackendMemory  = "memory"
)

// Config는 애플리케이션 전체 설정입니다
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Store         StoreConfig         `mapstructure:"store"`
	MongoDB       MongoDBConfig       `mapstructure:"mongodb"`
	MySQL         MySQLConfig         `mapstructure:"mysql"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Content       ContentConfig       `mapstructure:"content"`
	Audit         AuditConfig         `mapstructure:"audit"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AppConfig는 애플리케이션 기본 설정입니다
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig는 서버 설정입니다
type ServerConfig struct {
	HTTP HTTPServerConfig `mapstructure:"http"`
	GRPC GRPCServerConfig `mapstructure:"grpc"`
}

// HTTPServerConfig는 HTTP 서버 설정입니다
type HTTPServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// Addr는 listen 주소입니다
func (c HTTPServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GRPCServerConfig는 gRPC 서버 설정입니다
type GRPCServerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	EnableReflection bool          `mapstructure:"enable_reflection"`
	HealthInterval   time.Duration `mapstructure:"health_interval"`
}

// Addr는 listen 주소입니다
func (c GRPCServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StoreConfig는 문서 저장소 선택입니다
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
}

// MongoDBConfig는 MongoDB 설정입니다
type MongoDBConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	MaxPoolSize    uint64        `mapstructure:"max_pool_size"`
	MinPoolSize    uint64        `mapstructure:"min_pool_size"`
	MaxConnecting  uint64        `mapstructure:"max_connecting"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	Timeout        time.Duration `mapstructure:"timeout"`
	Transactions   bool          `mapstructure:"transactions"`
	UseVault       bool          `mapstructure:"use_vault"`
}

// MySQLConfig는 MySQL 설정입니다
type MySQLConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// RedisConfig는 Redis 설정입니다
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// KafkaConfig는 Kafka 설정입니다
type KafkaConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	Brokers          []string      `mapstructure:"brokers"`
	ClientID         string        `mapstructure:"client_id"`
	Topic            string        `mapstructure:"topic"`
	Compression      string        `mapstructure:"compression"`
	MaxRetries       int           `mapstructure:"max_retries"`
	RetryBackoff     time.Duration `mapstructure:"retry_backoff"`
	EnableIdempotent bool          `mapstructure:"enable_idempotent"`
}

// VaultConfig는 Vault 설정입니다
type VaultConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Address     string        `mapstructure:"address"`
	AuthMethod  string        `mapstructure:"auth_method"`
	Token       string        `mapstructure:"token"`
	RoleID      string        `mapstructure:"role_id"`
	SecretID    string        `mapstructure:"secret_id"`
	Namespace   string        `mapstructure:"namespace"`
	MongoDBPath string        `mapstructure:"mongodb_path"`
	SecretsPath string        `mapstructure:"secrets_path"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
}

// AuthConfig는 관리자 인증 설정입니다
type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	Issuer     string        `mapstructure:"issuer"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`

	// 비어 있지 않으면 시작 시 관리자 계정이 없을 때 생성합니다
	BootstrapEmail    string `mapstructure:"bootstrap_email"`
	BootstrapName     string `mapstructure:"bootstrap_name"`
	BootstrapPassword string `mapstructure:"bootstrap_password"`
}

// ContentConfig는 공개 콘텐츠 설정입니다
type ContentConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	// FollowChanges가 true이면 저장소 변경 스트림으로 다른 인스턴스의 수정도 캐시에 반영합니다
	FollowChanges bool `mapstructure:"follow_changes"`
	// CurrentClassLock이 true이면 현재 기수 변경을 Redis 락으로 직렬화합니다
	CurrentClassLock bool          `mapstructure:"current_class_lock"`
	LockTTL          time.Duration `mapstructure:"lock_ttl"`
	LockWait         time.Duration `mapstructure:"lock_wait"`
}

// AuditConfig는 감사 로그 설정입니다
type AuditConfig struct {
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
	OpenTimeout      time.Duration `mapstructure:"open_timeout"`
}

// RateLimitConfig는 공개 폼과 로그인 rate limit 설정입니다
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int64         `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// ObservabilityConfig는 관찰성 설정입니다
type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LoggingConfig는 로깅 설정입니다
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// TracingConfig는 분산 추적 설정입니다
type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SamplingRate   float64 `mapstructure:"sampling_rate"`
}

// MetricsConfig는 메트릭 설정입니다
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// secretEnv는 APP_ 접두사 없이도 읽는 민감한 설정의 환경변수입니다.
// 앞쪽 이름이 우선합니다
var secretEnv = map[string][]string{
	"mongodb.uri":             {"APP_MONGODB_URI", "MONGODB_URI"},
	"mongodb.username":        {"APP_MONGODB_USERNAME", "MONGODB_USERNAME"},
	"mongodb.password":        {"APP_MONGODB_PASSWORD", "MONGODB_PASSWORD"},
	"mysql.password":          {"APP_MYSQL_PASSWORD", "MYSQL_PASSWORD"},
	"redis.password":          {"APP_REDIS_PASSWORD", "REDIS_PASSWORD"},
	"auth.jwt_secret":         {"APP_AUTH_JWT_SECRET", "AUTH_JWT_SECRET"},
	"auth.bootstrap_password": {"APP_AUTH_BOOTSTRAP_PASSWORD", "AUTH_BOOTSTRAP_PASSWORD"},
	"vault.address":           {"APP_VAULT_ADDRESS", "VAULT_ADDR", "VAULT_ADDRESS"},
	"vault.token":             {"APP_VAULT_TOKEN", "VAULT_TOKEN"},
	"vault.role_id":           {"APP_VAULT_ROLE_ID", "VAULT_ROLE_ID"},
	"vault.secret_id":         {"APP_VAULT_SECRET_ID", "VAULT_SECRET_ID"},
	"vault.namespace":         {"APP_VAULT_NAMESPACE", "VAULT_NAMESPACE"},
}

// LoadConfig는 설정 파일을 로드합니다. 파일이 없으면 기본값과 환경변수만 사용합니다
func LoadConfig(configPath string, configName string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	if configName != "" {
		v.SetConfigName(configName)
	} else {
		v.SetConfigName("config")
	}
	v.SetConfigType("yaml")

	// 환경변수 바인딩
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range secretEnv {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "academy-backoffice")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.http.host", "0.0.0.0")
	v.SetDefault("server.http.port", 8080)
	v.SetDefault("server.http.read_timeout", 15*time.Second)
	v.SetDefault("server.http.write_timeout", 15*time.Second)
	v.SetDefault("server.http.shutdown_timeout", 20*time.Second)
	v.SetDefault("server.http.allowed_origins", []string{})
	v.SetDefault("server.grpc.enabled", true)
	v.SetDefault("server.grpc.host", "0.0.0.0")
	v.SetDefault("server.grpc.port", 9090)
	v.SetDefault("server.grpc.enable_reflection", false)
	v.SetDefault("server.grpc.health_interval", 10*time.Second)

	v.SetDefault("store.backend", BackendMongoDB)

	v.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("mongodb.database", "academy")
	v.SetDefault("mongodb.username", "")
	v.SetDefault("mongodb.password", "")
	v.SetDefault("mongodb.max_pool_size", 50)
	v.SetDefault("mongodb.min_pool_size", 5)
	v.SetDefault("mongodb.max_connecting", 5)
	v.SetDefault("mongodb.connect_timeout", 10*time.Second)
	v.SetDefault("mongodb.timeout", 30*time.Second)
	v.SetDefault("mongodb.transactions", false)
	v.SetDefault("mongodb.use_vault", false)

	v.SetDefault("mysql.host", "localhost")
	v.SetDefault("mysql.port", 3306)
	v.SetDefault("mysql.user", "academy")
	v.SetDefault("mysql.password", "")
	v.SetDefault("mysql.database", "academy")
	v.SetDefault("mysql.max_open_conns", 25)
	v.SetDefault("mysql.max_idle_conns", 5)
	v.SetDefault("mysql.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("mysql.conn_max_idle_time", time.Minute)

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.client_id", "academy-backoffice")
	v.SetDefault("kafka.topic", "academy.leads")
	v.SetDefault("kafka.compression", "snappy")
	v.SetDefault("kafka.max_retries", 3)
	v.SetDefault("kafka.retry_backoff", 100*time.Millisecond)
	v.SetDefault("kafka.enable_idempotent", true)

	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "http://localhost:8200")
	v.SetDefault("vault.auth_method", "token")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.role_id", "")
	v.SetDefault("vault.secret_id", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.mongodb_path", "database/creds/academy-backoffice")
	v.SetDefault("vault.secrets_path", "secret/data/academy-backoffice")
	v.SetDefault("vault.cache_ttl", 5*time.Minute)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "academy-backoffice")
	v.SetDefault("auth.session_ttl", 12*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.bootstrap_email", "")
	v.SetDefault("auth.bootstrap_name", "Administrator")
	v.SetDefault("auth.bootstrap_password", "")

	v.SetDefault("content.cache_ttl", 5*time.Minute)
	v.SetDefault("content.follow_changes", false)
	v.SetDefault("content.current_class_lock", false)
	v.SetDefault("content.lock_ttl", 10*time.Second)
	v.SetDefault("content.lock_wait", 3*time.Second)

	v.SetDefault("audit.failure_threshold", 5)
	v.SetDefault("audit.open_timeout", 30*time.Second)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 10)
	v.SetDefault("rate_limit.window", time.Minute)

	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.tracing.enabled", false)
	v.SetDefault("observability.tracing.jaeger_endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("observability.tracing.sampling_rate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
}

// Validate는 시작 전에 설정을 검증합니다
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Backend {
	case BackendMongoDB:
		if c.MongoDB.URI == "" {
			errs = append(errs, errors.New("mongodb.uri is required"))
		}
		if c.MongoDB.Database == "" {
			errs = append(errs, errors.New("mongodb.database is required"))
		}
	case BackendMySQL:
		if c.MySQL.Host == "" || c.MySQL.Database == "" {
			errs = append(errs, errors.New("mysql.host and mysql.database are required"))
		}
	case BackendMemory:
		if c.App.Environment == "production" {
			errs = append(errs, errors.New("memory store is not allowed in production"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.backend %q", c.Store.Backend))
	}

	// Vault가 켜져 있으면 JWT 시크릿은 Vault에서 가져올 수 있습니다
	if c.Auth.JWTSecret == "" && !c.Vault.Enabled {
		errs = append(errs, errors.New("auth.jwt_secret is required (or enable vault)"))
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("auth.session_ttl must be positive"))
	}
	if c.Auth.BootstrapEmail != "" && c.Auth.BootstrapPassword == "" {
		errs = append(errs, errors.New("auth.bootstrap_password is required with auth.bootstrap_email"))
	}

	if c.Server.HTTP.Port <= 0 {
		errs = append(errs, errors.New("server.http.port must be positive"))
	}
	if c.Server.GRPC.Enabled && c.Server.GRPC.Port <= 0 {
		errs = append(errs, errors.New("server.grpc.port must be positive"))
	}

	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		errs = append(errs, errors.New("kafka.brokers and kafka.topic are required when kafka is enabled"))
	}
	// 관리자 세션은 Redis에만 저장됩니다
	if !c.Redis.Enabled {
		errs = append(errs, errors.New("redis.enabled is required for admin sessions"))
	}
	if c.MongoDB.UseVault && !c.Vault.Enabled {
		errs = append(errs, errors.New("mongodb.use_vault requires vault.enabled"))
	}
	if c.RateLimit.Enabled && c.RateLimit.Requests <= 0 {
		errs = append(errs, errors.New("rate_limit.requests must be positive"))
	}

	return errors.Join(errs...)
}
