package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

var (
	ErrPoolClosed = errors.New("worker pool is closed")
	ErrPanic      = errors.New("task panicked")
)

// TaskResult 任务结果
type TaskResult struct {
	Data  interface{}
	Error error
}

// Config Worker Pool 配置
type Config struct {
	Workers        int           `mapstructure:"workers"`         // worker 数量上限
	ExpiryDuration time.Duration `mapstructure:"expiry_duration"` // 空闲 worker 回收间隔
	ReleaseTimeout time.Duration `mapstructure:"release_timeout"` // 关闭时等待运行中任务的最长时间
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Workers:        16,
		ExpiryDuration: time.Minute,
		ReleaseTimeout: 10 * time.Second,
	}
}

// Statistics 统计信息
type Statistics struct {
	Submitted int64
	Completed int64
	Failed    int64
}

// Pool 基于 ants 的 worker pool
type Pool struct {
	pool   *ants.Pool
	config *Config
	logger *zap.Logger

	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// New 创建 Worker Pool
func New(cfg *Config, logger *zap.Logger) (*Pool, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("workerpool: workers must be > 0, got %d", cfg.Workers)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []ants.Option{
		ants.WithPanicHandler(func(v interface{}) {
			logger.Error("worker panic", zap.Any("error", v))
		}),
	}
	if cfg.ExpiryDuration > 0 {
		opts = append(opts, ants.WithExpiryDuration(cfg.ExpiryDuration))
	}

	ap, err := ants.NewPool(cfg.Workers, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create ants pool: %w", err)
	}

	return &Pool{pool: ap, config: cfg, logger: logger}, nil
}

// Submit 提交任务，池满时阻塞直到有空闲 worker
func (p *Pool) Submit(task func()) error {
	p.submitted.Add(1)
	err := p.pool.Submit(func() {
		defer p.completed.Add(1)
		task()
	})
	if err != nil {
		p.failed.Add(1)
		if errors.Is(err, ants.ErrPoolClosed) {
			return ErrPoolClosed
		}
		return err
	}
	return nil
}

// SubmitWithResult 提交任务并获取结果
func (p *Pool) SubmitWithResult(task func() (interface{}, error)) <-chan TaskResult {
	ch := make(chan TaskResult, 1)
	err := p.Submit(func() {
		var res TaskResult
		defer func() {
			if r := recover(); r != nil {
				res = TaskResult{Error: fmt.Errorf("%w: %v", ErrPanic, r)}
			}
			ch <- res
			close(ch)
		}()
		res.Data, res.Error = task()
	})
	if err != nil {
		ch <- TaskResult{Error: err}
		close(ch)
	}
	return ch
}

// Run 并发执行一批任务并等待全部完成，返回与 tasks 一一对应的错误
func (p *Pool) Run(ctx context.Context, tasks []func(ctx context.Context) error) []error {
	errs := make([]error, len(tasks))
	var wg sync.WaitGroup

	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}

		wg.Add(1)
		err := p.Submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("%w: %v", ErrPanic, r)
				}
			}()
			errs[i] = task(ctx)
		})
		if err != nil {
			wg.Done()
			errs[i] = err
		}
	}

	wg.Wait()
	for _, err := range errs {
		if err != nil {
			p.failed.Add(1)
		}
	}
	return errs
}

// Stats 返回统计信息快照
func (p *Pool) Stats() Statistics {
	return Statistics{
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
	}
}

// Shutdown 关闭，最多等待 ReleaseTimeout
func (p *Pool) Shutdown() {
	if p.config.ReleaseTimeout <= 0 {
		p.pool.Release()
		return
	}
	if err := p.pool.ReleaseTimeout(p.config.ReleaseTimeout); err != nil {
		p.logger.Warn("worker pool release timed out", zap.Error(err))
	}
}
