package ratelimit

import (
	"sync"
	"sync/atomic"
	"time"
)

/*
請使用 defer 呼叫 Stop()
*/
type TokenBucket struct {
	LimiterConfig
	current      atomic.Int64
	lastRefilled atomic.Int64
	cancel       chan struct{}
	once         sync.Once
}

func NewTokenBucket(config *LimiterConfig) *TokenBucket {
	t := &TokenBucket{
		cancel: make(chan struct{}),
	}

	if config != nil {
		t.LimiterConfig = *config
	} else {
		t.LimiterConfig = GetDefaultLimiterConfig()
	}
	if t.RefillRate <= 0 {
		t.RefillRate = GetDefaultLimiterConfig().RefillRate
	}

	t.current.Store(int64(t.Capacity))
	t.lastRefilled.Store(time.Now().UnixNano())
	go t.background()
	return t
}

func (t *TokenBucket) Allow() bool {
	for {
		current := t.current.Load()
		if current <= 0 {
			return false
		}
		if t.current.CompareAndSwap(current, current-1) {
			return true
		}
	}
}

func (t *TokenBucket) Available() int64 {
	return t.current.Load()
}

// 只有真的補到 token 才更新 lastRefilled, 避免小數被捨去後永遠補不到
func (t *TokenBucket) refill(now int64) {
	for {
		current := t.current.Load()
		elapsed := time.Duration(now - t.lastRefilled.Load())
		toAdd := int64(elapsed.Seconds() * t.Rate)
		if toAdd <= 0 {
			return
		}
		next := current + toAdd
		if next > int64(t.Capacity) {
			next = int64(t.Capacity)
		}
		if t.current.CompareAndSwap(current, next) {
			t.lastRefilled.Store(now)
			return
		}
	}
}

func (t *TokenBucket) background() {
	ticker := time.NewTicker(t.RefillRate)
	defer ticker.Stop()

	for {
		select {
		case <-t.cancel:
			return
		case <-ticker.C:
			t.refill(time.Now().UnixNano())
		}
	}
}

func (t *TokenBucket) Stop() {
	t.once.Do(func() {
		close(t.cancel)
	})
}
