package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ============================================================================
// Redis 分布式锁
// ============================================================================
//
// 加锁：SET key value NX PX ttl，value 为持有者标识
// 解锁：Lua 脚本比较 value 后删除，避免误删别人的锁
//
// 两处使用：
//   - 购买确认定时任务，多实例部署时同一时刻只有一个实例扫描
//   - 下单时按规格加锁，串行化同一规格的库存扣减
// ============================================================================

var ErrLockFailed = errors.New("获取分布式锁失败")

var unlockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// Locker 创建锁，测试和未启用 Redis 时可替换实现
type Locker interface {
	NewLock(key string, ttl time.Duration) Lock
}

type Lock interface {
	TryLock(ctx context.Context) (bool, error)
	Lock(ctx context.Context, retryInterval time.Duration, maxRetries int) error
	Unlock(ctx context.Context) error
}

// RedisLocker 基于 Redis 的 Locker
type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) NewLock(key string, ttl time.Duration) Lock {
	return NewDistributedLock(l.client, key, uuid.NewString(), ttl)
}

// DistributedLock 分布式锁
type DistributedLock struct {
	client     *redis.Client
	key        string
	value      string // 持有者标识
	expiration time.Duration
}

func NewDistributedLock(client *redis.Client, key, value string, expiration time.Duration) *DistributedLock {
	return &DistributedLock{
		client:     client,
		key:        key,
		value:      value,
		expiration: expiration,
	}
}

// TryLock 尝试获取锁（非阻塞）
func (l *DistributedLock) TryLock(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, l.key, l.value, l.expiration).Result()
}

// Lock 阻塞式获取锁（带重试）
func (l *DistributedLock) Lock(ctx context.Context, retryInterval time.Duration, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		ok, err := l.TryLock(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	return ErrLockFailed
}

func (l *DistributedLock) Unlock(ctx context.Context) error {
	return unlockScript.Run(ctx, l.client, []string{l.key}, l.value).Err()
}

// ============================================================================
// 业务锁的 key
// ============================================================================

// OptionStockKey 按规格维度加锁，不同规格可以并发下单
func OptionStockKey(optionID int64) string {
	return fmt.Sprintf("sellerhub:lock:option:%d", optionID)
}

const PurchaseConfirmKey = "sellerhub:lock:job:purchase-confirm"
