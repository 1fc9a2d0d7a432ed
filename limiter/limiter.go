package limiter

import (
	"golang.org/x/time/rate"
	"strings"
	"sync"
	"time"
)

// MapLimiter 按key分桶的令牌桶限流器, 空闲太久的key会被定期清理
type MapLimiter struct {
	limit       rate.Limit
	burst       int
	guard       sync.Mutex
	entryMap    map[string]*entry
	hits        uint64
	idleTimeout time.Duration
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New rps是每秒允许的请求数, burst是允许的突发数, 参数不合法返回nil
// idleTimeout <=0 默认10分钟
func New(rps float64, burst int, idleTimeout time.Duration) *MapLimiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	if idleTimeout <= 0 {
		idleTimeout = 10 * time.Minute
	}
	return &MapLimiter{
		limit:       rate.Limit(rps),
		burst:       burst,
		entryMap:    make(map[string]*entry),
		idleTimeout: idleTimeout,
	}
}

// Allow 该key此刻能不能再消费一个令牌, limiter是nil或key是空都直接放行
func (the *MapLimiter) Allow(key string, now time.Time) bool {
	if the == nil {
		return true
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return true
	}
	the.guard.Lock()
	defer the.guard.Unlock()
	item, ok := the.entryMap[key]
	if !ok {
		item = &entry{
			limiter:  rate.NewLimiter(the.limit, the.burst),
			lastSeen: now,
		}
		the.entryMap[key] = item
	}
	item.lastSeen = now
	allowed := item.limiter.AllowN(now, 1)
	the.hits++
	if the.hits%512 == 0 {
		//每512次请求清理一轮空闲key
		deadline := now.Add(-the.idleTimeout)
		for k, v := range the.entryMap {
			if v.lastSeen.Before(deadline) {
				delete(the.entryMap, k)
			}
		}
	}
	return allowed
}

// Size 当前持有的key数量
func (the *MapLimiter) Size() int {
	if the == nil {
		return 0
	}
	the.guard.Lock()
	defer the.guard.Unlock()
	return len(the.entryMap)
}
