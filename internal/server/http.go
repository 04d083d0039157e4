package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/drive-backend/internal/auth"
	"github.com/lk2023060901/drive-backend/internal/auth/middleware"
	authservice "github.com/lk2023060901/drive-backend/internal/auth/service"
	"github.com/lk2023060901/drive-backend/internal/conf"
	"github.com/lk2023060901/drive-backend/internal/data"
	driveservice "github.com/lk2023060901/drive-backend/internal/drive/service"
	"github.com/lk2023060901/drive-backend/internal/pkg/logger"
	userservice "github.com/lk2023060901/drive-backend/internal/user/service"
	"go.uber.org/zap"
)

const healthTimeout = 3 * time.Second

type HTTPServer struct {
	server *http.Server
	logger *logger.Logger
}

func NewHTTPServer(
	config *conf.Config,
	log *logger.Logger,
	d *data.Data,
	jwtManager *auth.JWTManager,
	authService *authservice.AuthService,
	userService *userservice.UserService,
	driveService *driveservice.DriveService,
) *HTTPServer {
	gin.SetMode(config.Server.Mode)

	router := gin.New()
	router.Use(logger.GinRecovery(log))
	router.Use(logger.GinLogger(log, logger.MiddlewareOptions{SkipPaths: []string{"/health"}}))
	router.Use(middleware.CORS(config.Server.CORSOrigins))
	router.Use(middleware.Timeout(config.Server.RequestTimeout))

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		checks := d.HealthCheck(ctx)
		status, code := "ok", http.StatusOK
		for _, v := range checks {
			if v != "ok" {
				status, code = "degraded", http.StatusServiceUnavailable
			}
		}
		c.JSON(code, gin.H{
			"status": status,
			"checks": checks,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// 未启用 Redis 时限流中间件直接放行
	var runner middleware.ScriptRunner
	if d.Redis != nil {
		runner = d.Redis
	}
	rl := config.RateLimit
	signupLimiter := middleware.SignupRateLimiter(runner, rl.SignupMax, rl.SignupWindow, log)
	loginLimiter := middleware.LoginRateLimiter(runner, rl.LoginMax, rl.LoginWindow, log)

	api := router.Group("/api")
	authService.RegisterRoutes(api, signupLimiter, loginLimiter)
	driveService.RegisterPublicRoutes(api, router)

	authed := api.Group("", middleware.JWTAuth(jwtManager, log))
	userService.RegisterRoutes(authed)
	driveService.RegisterRoutes(authed)

	return &HTTPServer{
		server: &http.Server{
			Addr:              config.Server.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: log,
	}
}

// Handler 返回路由，供测试直接调用
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}
