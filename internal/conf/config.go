package conf

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lk2023060901/drive-backend/internal/pkg/database"
	"github.com/lk2023060901/drive-backend/internal/pkg/logger"
	"github.com/lk2023060901/drive-backend/internal/pkg/mailer"
	"github.com/lk2023060901/drive-backend/internal/pkg/minio"
	"github.com/lk2023060901/drive-backend/internal/pkg/redis"
	"github.com/lk2023060901/drive-backend/internal/pkg/workerpool"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 DRIVE_AUTH_JWT_SECRET 覆盖 auth.jwt_secret
const EnvPrefix = "DRIVE"

type Config struct {
	Server     ServerConfig      `mapstructure:"server"`
	Database   database.Config   `mapstructure:"database"`
	Redis      redis.Config      `mapstructure:"redis"`
	MinIO      minio.Config      `mapstructure:"minio"`
	Storage    StorageConfig     `mapstructure:"storage"`
	Auth       AuthConfig        `mapstructure:"auth"`
	RateLimit  RateLimitConfig   `mapstructure:"ratelimit"`
	WorkerPool workerpool.Config `mapstructure:"workerpool"`
	Mail       mailer.Config     `mapstructure:"mail"`
	Log        logger.Config     `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// Mode gin 运行模式: debug, release, test
	Mode           string        `mapstructure:"mode"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
	// PublicBaseURL 用于拼接公开分享链接和本地下载地址
	PublicBaseURL string   `mapstructure:"public_base_url"`
	CORSOrigins   []string `mapstructure:"cors_origins"`
}

// Addr 返回监听地址
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type StorageConfig struct {
	// UploadsDir 对象存储不可用时的本地落盘目录
	UploadsDir string `mapstructure:"uploads_dir"`
	// DownloadURLTTL 下载签名 URL 有效期
	DownloadURLTTL time.Duration `mapstructure:"download_url_ttl"`
	// LinkURLTTL 公开链接中文件签名 URL 有效期，不超过 1 小时
	LinkURLTTL time.Duration `mapstructure:"link_url_ttl"`
	// URLSigningSecret 本地文件下载 token 的签名密钥，为空时使用 auth.jwt_secret
	URLSigningSecret string `mapstructure:"url_signing_secret"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	JWTIssuer string        `mapstructure:"jwt_issuer"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	// BcryptCost 密码哈希强度
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type RateLimitConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	LoginMax     int           `mapstructure:"login_max"`
	LoginWindow  time.Duration `mapstructure:"login_window"`
	SignupMax    int           `mapstructure:"signup_max"`
	SignupWindow time.Duration `mapstructure:"signup_window"`
}

// LoadConfig 依次加载 .env、配置文件和 DRIVE_ 前缀的环境变量
// path 为空时在 . 和 ./configs 下查找 config.yaml，找不到则只使用默认值和环境变量
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Storage.URLSigningSecret == "" {
		cfg.Storage.URLSigningSecret = cfg.Auth.JWTSecret
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults 注册所有键的默认值，AutomaticEnv 只覆盖已知键
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.request_timeout", 60*time.Second)
	v.SetDefault("server.max_upload_bytes", 100<<20)
	v.SetDefault("server.public_base_url", "http://localhost:8080")
	v.SetDefault("server.cors_origins", []string{})

	db := database.DefaultConfig()
	v.SetDefault("database.host", db.Host)
	v.SetDefault("database.port", db.Port)
	v.SetDefault("database.user", db.User)
	v.SetDefault("database.password", db.Password)
	v.SetDefault("database.dbname", db.DBName)
	v.SetDefault("database.sslmode", db.SSLMode)
	v.SetDefault("database.timezone", db.Timezone)
	v.SetDefault("database.max_idle_conns", db.MaxIdleConns)
	v.SetDefault("database.max_open_conns", db.MaxOpenConns)
	v.SetDefault("database.conn_max_lifetime", db.ConnMaxLifetime)
	v.SetDefault("database.conn_max_idle_time", db.ConnMaxIdleTime)
	v.SetDefault("database.log_level", db.LogLevel)
	v.SetDefault("database.slow_threshold", db.SlowThreshold)
	v.SetDefault("database.prepare_stmt", db.PrepareStmt)
	v.SetDefault("database.auto_migrate", db.AutoMigrate)

	rd := redis.DefaultConfig()
	v.SetDefault("redis.enabled", rd.Enabled)
	v.SetDefault("redis.mode", string(rd.Mode))
	v.SetDefault("redis.addr", rd.Addr)
	v.SetDefault("redis.sentinel_addrs", []string{})
	v.SetDefault("redis.master_name", "")
	v.SetDefault("redis.cluster_addrs", []string{})
	v.SetDefault("redis.username", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", rd.DB)
	v.SetDefault("redis.pool_size", rd.PoolSize)
	v.SetDefault("redis.min_idle_conns", rd.MinIdleConns)
	v.SetDefault("redis.dial_timeout", rd.DialTimeout)
	v.SetDefault("redis.read_timeout", rd.ReadTimeout)
	v.SetDefault("redis.write_timeout", rd.WriteTimeout)
	v.SetDefault("redis.max_retries", rd.MaxRetries)

	mc := minio.DefaultConfig()
	v.SetDefault("minio.endpoint", mc.Endpoint)
	v.SetDefault("minio.access_key_id", "")
	v.SetDefault("minio.secret_access_key", "")
	v.SetDefault("minio.session_token", "")
	v.SetDefault("minio.region", mc.Region)
	v.SetDefault("minio.use_ssl", mc.UseSSL)
	v.SetDefault("minio.bucket", mc.Bucket)
	v.SetDefault("minio.create_bucket", mc.CreateBucket)
	v.SetDefault("minio.bucket_lookup", string(mc.BucketLookup))
	v.SetDefault("minio.request_timeout", mc.RequestTimeout)

	v.SetDefault("storage.uploads_dir", "uploads")
	v.SetDefault("storage.download_url_ttl", 5*time.Minute)
	v.SetDefault("storage.link_url_ttl", time.Hour)
	v.SetDefault("storage.url_signing_secret", "")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_issuer", "drive-backend")
	v.SetDefault("auth.token_ttl", 7*24*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.login_max", 5)
	v.SetDefault("ratelimit.login_window", 5*time.Minute)
	v.SetDefault("ratelimit.signup_max", 3)
	v.SetDefault("ratelimit.signup_window", time.Hour)

	wp := workerpool.DefaultConfig()
	v.SetDefault("workerpool.workers", wp.Workers)
	v.SetDefault("workerpool.expiry_duration", wp.ExpiryDuration)
	v.SetDefault("workerpool.release_timeout", wp.ReleaseTimeout)

	ml := mailer.DefaultConfig()
	v.SetDefault("mail.enabled", ml.Enabled)
	v.SetDefault("mail.smtp_host", "")
	v.SetDefault("mail.smtp_port", ml.SMTPPort)
	v.SetDefault("mail.tls", string(ml.TLS))
	v.SetDefault("mail.auth", string(ml.Auth))
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from_addr", "")
	v.SetDefault("mail.from_name", ml.FromName)
	v.SetDefault("mail.oauth2.token_url", "")
	v.SetDefault("mail.oauth2.client_id", "")
	v.SetDefault("mail.oauth2.client_secret", "")
	v.SetDefault("mail.oauth2.scopes", []string{})
	v.SetDefault("mail.max_retries", ml.MaxRetries)
	v.SetDefault("mail.retry_interval", ml.RetryInterval)
	v.SetDefault("mail.connect_timeout", ml.ConnectTimeout)
	v.SetDefault("mail.send_timeout", ml.SendTimeout)

	lg := logger.DefaultConfig()
	v.SetDefault("log.level", lg.Level)
	v.SetDefault("log.format", lg.Format)
	v.SetDefault("log.output", lg.Output)
	v.SetDefault("log.enable_caller", lg.EnableCaller)
	v.SetDefault("log.enable_stacktrace", lg.EnableStacktrace)
	v.SetDefault("log.file.filename", lg.File.Filename)
	v.SetDefault("log.file.max_size", lg.File.MaxSize)
	v.SetDefault("log.file.max_age", lg.File.MaxAge)
	v.SetDefault("log.file.max_backups", lg.File.MaxBackups)
	v.SetDefault("log.file.compress", lg.File.Compress)
}

// Validate 校验所有配置段
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if c.Redis.Enabled {
		if err := c.Redis.Validate(); err != nil {
			return err
		}
	}
	if err := c.MinIO.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.RateLimit.Validate(); err != nil {
		return err
	}
	if c.WorkerPool.Workers <= 0 {
		return errors.New("workerpool: workers must be > 0")
	}
	if err := c.Mail.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

func (s *ServerConfig) Validate() error {
	switch {
	case s.Port <= 0 || s.Port > 65535:
		return errors.New("server: port must be between 1 and 65535")
	case s.RequestTimeout <= 0:
		return errors.New("server: request_timeout must be > 0")
	case s.MaxUploadBytes <= 0:
		return errors.New("server: max_upload_bytes must be > 0")
	case s.PublicBaseURL == "":
		return errors.New("server: public_base_url is required")
	case s.Mode != "debug" && s.Mode != "release" && s.Mode != "test":
		return fmt.Errorf("server: unknown mode %q", s.Mode)
	}
	return nil
}

func (s *StorageConfig) Validate() error {
	switch {
	case s.UploadsDir == "":
		return errors.New("storage: uploads_dir is required")
	case s.DownloadURLTTL <= 0:
		return errors.New("storage: download_url_ttl must be > 0")
	case s.LinkURLTTL <= 0 || s.LinkURLTTL > time.Hour:
		return errors.New("storage: link_url_ttl must be within (0, 1h]")
	case s.URLSigningSecret == "":
		return errors.New("storage: url_signing_secret is required")
	}
	return nil
}

func (a *AuthConfig) Validate() error {
	switch {
	case len(a.JWTSecret) < 16:
		return errors.New("auth: jwt_secret must be at least 16 characters")
	case a.TokenTTL <= 0:
		return errors.New("auth: token_ttl must be > 0")
	case a.BcryptCost < 4 || a.BcryptCost > 31:
		return errors.New("auth: bcrypt_cost must be between 4 and 31")
	}
	return nil
}

func (r *RateLimitConfig) Validate() error {
	if !r.Enabled {
		return nil
	}
	if r.LoginMax <= 0 || r.SignupMax <= 0 {
		return errors.New("ratelimit: limits must be > 0")
	}
	if r.LoginWindow < time.Second || r.SignupWindow < time.Second {
		return errors.New("ratelimit: windows must be at least 1s")
	}
	return nil
}
