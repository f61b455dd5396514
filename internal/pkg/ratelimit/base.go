package ratelimit

import "time"

type LimiterConfig struct {
	Capacity   int
	Rate       float64       // 每秒補充的 token 數
	RefillRate time.Duration // 背景補充的間隔
}

func GetDefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		Capacity:   20,
		Rate:       10,
		RefillRate: 100 * time.Millisecond,
	}
}

type Limiter interface {
	Allow() bool
	Stop()
}
