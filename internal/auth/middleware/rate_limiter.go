package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lk2023060901/drive-backend/internal/pkg/logger"
	"github.com/lk2023060901/drive-backend/internal/pkg/validator"
	"go.uber.org/zap"
)

// ScriptRunner 执行 Lua 脚本的最小接口（*redis.Client 满足该接口）
type ScriptRunner interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error)
}

// RateLimiterConfig 限流配置
type RateLimiterConfig struct {
	// 时间窗口内允许的最大请求数
	MaxRequests int
	// 时间窗口
	Window time.Duration
	// 限流 key 前缀，区分不同端点
	Name string
}

// 滑动窗口：分值为毫秒时间戳，成员为唯一 ID
const slidingWindowScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

local current = redis.call('ZCARD', key)
if current < limit then
	redis.call('ZADD', key, now, member)
	redis.call('PEXPIRE', key, window)
	return {1, limit - current - 1, now + window}
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')[2]
return {0, 0, tonumber(oldest) + window}
`

// RateLimiter 基于 Redis 的滑动窗口限流中间件（按客户端 IP）
// runner 为 nil 或 Redis 故障时放行请求
func RateLimiter(runner ScriptRunner, cfg RateLimiterConfig, log *logger.Logger) gin.HandlerFunc {
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 100
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Name == "" {
		cfg.Name = "default"
	}

	return func(c *gin.Context) {
		if runner == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:ip:%s", cfg.Name, validator.ClientKey(c.ClientIP()))
		allowed, remaining, resetAt, err := checkRateLimit(c.Request.Context(), runner, key, cfg, time.Now())
		if err != nil {
			log.Error("rate limiter error", zap.Error(err), zap.String("key", key))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !allowed {
			retryAfter := int(time.Until(resetAt).Seconds()) + 1
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": fmt.Sprintf("Too many requests, please try again in %d seconds", retryAfter),
			})
			return
		}

		c.Next()
	}
}

func checkRateLimit(ctx context.Context, runner ScriptRunner, key string, cfg RateLimiterConfig, now time.Time) (bool, int, time.Time, error) {
	result, err := runner.Eval(ctx, slidingWindowScript, []string{key},
		now.UnixMilli(), cfg.Window.Milliseconds(), cfg.MaxRequests, uuid.NewString())
	if err != nil {
		return false, 0, time.Time{}, err
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 3 {
		return false, 0, time.Time{}, fmt.Errorf("invalid rate limit result: %v", result)
	}

	allowed, _ := values[0].(int64)
	remaining, _ := values[1].(int64)
	resetMillis, _ := values[2].(int64)

	return allowed == 1, int(remaining), time.UnixMilli(resetMillis), nil
}

// LoginRateLimiter 登录端点限流，默认 5 次 / 5 分钟
func LoginRateLimiter(runner ScriptRunner, maxRequests int, window time.Duration, log *logger.Logger) gin.HandlerFunc {
	return RateLimiter(runner, RateLimiterConfig{
		MaxRequests: maxRequests,
		Window:      window,
		Name:        "login",
	}, log)
}

// SignupRateLimiter 注册端点限流，默认 3 次 / 1 小时
func SignupRateLimiter(runner ScriptRunner, maxRequests int, window time.Duration, log *logger.Logger) gin.HandlerFunc {
	return RateLimiter(runner, RateLimiterConfig{
		MaxRequests: maxRequests,
		Window:      window,
		Name:        "signup",
	}, log)
}
