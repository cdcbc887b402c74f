// Package recognizer 组织单文件识别与批量识别的编排逻辑
package recognizer

import (
	"context"
	"sync"
	"time"
)

// Limiter 限流接口。显式注入到识别服务里，
// 测试时可以换成不限流的实现。
type Limiter interface {
	Wait(ctx context.Context) error
}

// RateLimiter 固定窗口限流器。
// 腾讯云OCR接口的QPS上限为5，默认配置限制每秒最多3个请求。
// 窗口到期后配额整体补满。
type RateLimiter struct {
	limit       int
	window      time.Duration
	count       int
	windowStart time.Time
	mutex       sync.Mutex
}

// NewRateLimiter 创建限流器，limit为每个window内允许的请求数
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		window: window,
	}
}

// Wait 阻塞直到当前窗口有可用配额。
// 只在网络调用前调用，提取等纯计算步骤不受限流约束。
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		r.mutex.Lock()
		now := time.Now()

		// 窗口到期，重置计数
		if r.windowStart.IsZero() || now.Sub(r.windowStart) >= r.window {
			r.windowStart = now
			r.count = 0
		}

		if r.count < r.limit {
			r.count++
			r.mutex.Unlock()
			return nil
		}

		waitTime := r.window - now.Sub(r.windowStart)
		r.mutex.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}
}

// NoopLimiter 不限流，用于测试
type NoopLimiter struct{}

// Wait 立即放行
func (NoopLimiter) Wait(ctx context.Context) error {
	return ctx.Err()
}
