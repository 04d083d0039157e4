package data

import (
	"context"
	"fmt"
	"time"

	"github.com/lk2023060901/drive-backend/internal/conf"
	drivedata "github.com/lk2023060901/drive-backend/internal/drive/data"
	"github.com/lk2023060901/drive-backend/internal/pkg/database"
	"github.com/lk2023060901/drive-backend/internal/pkg/logger"
	"github.com/lk2023060901/drive-backend/internal/pkg/mailer"
	"github.com/lk2023060901/drive-backend/internal/pkg/minio"
	"github.com/lk2023060901/drive-backend/internal/pkg/redis"
	"github.com/lk2023060901/drive-backend/internal/pkg/workerpool"
	userdata "github.com/lk2023060901/drive-backend/internal/user/data"
	"go.uber.org/zap"
)

const startupTimeout = 10 * time.Second

// Data 进程级外部资源
type Data struct {
	DB     *database.DB
	MinIO  *minio.Client
	Redis  *redis.Client // ratelimit 或 redis 未启用时为 nil
	Pool   *workerpool.Pool
	Mailer *mailer.Mailer // mail 未启用时为 nil
	Local  *drivedata.LocalStore
	Signer *drivedata.LocalSigner
	logger *logger.Logger
}

// NewData 初始化数据库、对象存储、Redis、协程池和本地兜底目录
func NewData(cfg *conf.Config, log *logger.Logger) (*Data, func(), error) {
	d := &Data{logger: log}
	cleanup := func() {
		log.Info("cleaning up data resources")
		if d.Pool != nil {
			d.Pool.Shutdown()
		}
		if d.Redis != nil {
			if err := d.Redis.Close(); err != nil {
				log.Warn("failed to close redis", zap.Error(err))
			}
		}
		if d.MinIO != nil {
			_ = d.MinIO.Close()
		}
		if d.DB != nil {
			if err := d.DB.Close(); err != nil {
				log.Warn("failed to close database", zap.Error(err))
			}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	var err error
	if d.DB, err = database.New(&cfg.Database, log); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to init database: %w", err)
	}
	if err = d.DB.AutoMigrate(append([]interface{}{&userdata.UserPO{}}, drivedata.Models()...)...); err != nil {
		cleanup()
		return nil, nil, err
	}

	if d.MinIO, err = minio.NewClient(&cfg.MinIO, log.Named("minio").Logger); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to init minio: %w", err)
	}
	if cfg.MinIO.CreateBucket {
		// 对象存储不可用时上传会走本地兜底，这里只记录
		if err := d.MinIO.EnsureBucket(ctx, cfg.MinIO.Bucket); err != nil {
			log.Warn("failed to ensure bucket, uploads will fall back to local disk",
				zap.String("bucket", cfg.MinIO.Bucket), zap.Error(err))
		}
	}

	if cfg.Redis.Enabled && cfg.RateLimit.Enabled {
		if d.Redis, err = redis.New(&cfg.Redis, log); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to init redis: %w", err)
		}
	}

	if d.Pool, err = workerpool.New(&cfg.WorkerPool, log.Named("workerpool").Logger); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to init worker pool: %w", err)
	}

	if cfg.Mail.Enabled {
		if d.Mailer, err = mailer.New(&cfg.Mail, log.Named("mailer").Logger); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to init mailer: %w", err)
		}
	}

	if d.Local, err = drivedata.NewLocalStore(cfg.Storage.UploadsDir); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to init uploads dir: %w", err)
	}
	d.Signer = drivedata.NewLocalSigner(cfg.Storage.URLSigningSecret, cfg.Server.PublicBaseURL)

	log.Info("data layer initialized",
		zap.String("uploads_dir", d.Local.Dir()),
		zap.Bool("redis", d.Redis != nil),
		zap.Bool("mail", d.Mailer != nil),
	)
	return d, cleanup, nil
}

// HealthCheck 检查数据库和对象存储
func (d *Data) HealthCheck(ctx context.Context) map[string]string {
	status := map[string]string{"database": "ok", "object_store": "ok"}
	if err := d.DB.HealthCheck(ctx); err != nil {
		status["database"] = err.Error()
	}
	if err := d.MinIO.Ping(ctx); err != nil {
		status["object_store"] = err.Error()
	}
	return status
}
