package cache

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"github.com/garyburd/redigo/redis"
	"github.com/luomingyu/sparrow-go"
	"math/rand"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	poolMap      = map[string][]*redis.Pool{}
	poolMapGuard sync.RWMutex
)

// pick 默认选空闲连接最多的池, 全都一样就随机选, 可以用SetPick替换
var pick = func(poolKey string, pools []*redis.Pool) (*redis.Pool, error) {
	if len(pools) == 0 {
		return nil, errors.New("pools len is 0")
	}
	var best []*redis.Pool
	bestIdle := -1
	for _, pool := range pools {
		idle := pool.Stats().IdleCount
		if bestIdle == -1 || idle > bestIdle {
			bestIdle = idle
			best = best[:0]
		}
		if idle == bestIdle {
			best = append(best, pool)
		}
	}
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return best[r.Intn(len(best))], nil
}

func SetPick(pk func(poolKey string, pools []*redis.Pool) (*redis.Pool, error)) {
	if pk != nil {
		pick = pk
	}
}

func getPoolKey(poolKey ...string) string {
	key := "base"
	if len(poolKey) > 0 {
		if val := strings.TrimSpace(poolKey[0]); val != "" {
			key = val
		}
	}
	return key
}

// Open 按配置里redis的poolKey建连接池, 配置错误直接panic
func Open(options Options, poolKey ...string) {
	key := getPoolKey(poolKey...)
	items, ok := sparrow.CurEnvConfig.Redis[key]
	if !ok {
		panic("poolKey error")
	}
	if len(items) == 0 {
		panic("config error")
	}
	var pools []*redis.Pool
	for _, item := range items {
		host := item.Host
		password := item.Password
		port := item.Port
		pool := &redis.Pool{
			Wait:            options.Wait,
			MaxConnLifetime: options.ConnMaxLifetime,
			MaxActive:       options.MaxOpenConns,
			MaxIdle:         options.MaxIdleConns,
			Dial: func() (redis.Conn, error) {
				conn, err := redis.Dial("tcp", host+":"+strconv.Itoa(port))
				if err != nil {
					return nil, err
				}
				if password != "" {
					if _, err := conn.Do("AUTH", password); err != nil {
						conn.Close()
						return nil, err
					}
				}
				return conn, nil
			},
		}
		pools = append(pools, pool)
	}
	//防止并发写map异常
	poolMapGuard.Lock()
	poolMap[key] = pools
	poolMapGuard.Unlock()
	conn := Conn(poolKey...)
	defer conn.Close()
	if err := conn.Err(); err != nil {
		panic(err)
	}
	sparrow.CommonLog.Info("缓存(" + key + "): 启动成功")
	if options.StatisticsLog {
		duration := options.StatisticsLogDuration
		if duration <= 0 {
			duration = time.Second * 5
		}
		go func() {
			defer sparrow.Recover()
			for {
				stats, err := Stats(poolKey...)
				if err != nil {
					return
				}
				sparrow.StatisticsLog.
					WithField("name", key+"-cache").
					WithField("use", stats.Use).
					WithField("idle", stats.Idle).
					Info()
				time.Sleep(duration)
			}
		}()
	}
}

func Close(poolKey ...string) {
	key := getPoolKey(poolKey...)
	//防止并发写map异常
	poolMapGuard.Lock()
	pools, ok := poolMap[key]
	if ok && pools != nil {
		for _, pool := range pools {
			pool.Close()
		}
		poolMap[key] = nil
	}
	poolMapGuard.Unlock()
}

func Conn(poolKey ...string) redis.Conn {
	return ConnContext(context.Background(), poolKey...)
}

func ConnContext(ctx context.Context, poolKey ...string) redis.Conn {
	key := getPoolKey(poolKey...)
	var conn redis.Conn
	//防止并发写map异常
	poolMapGuard.RLock()
	pools := poolMap[key]
	poolMapGuard.RUnlock()
	pool, err := pick(key, pools)
	if err == nil && pool != nil {
		conn, _ = pool.GetContext(ctx)
	}
	return conn
}

func Stats(poolKey ...string) (Statistics, error) {
	key := getPoolKey(poolKey...)
	var statistics Statistics
	//防止并发写map异常
	poolMapGuard.RLock()
	pools := poolMap[key]
	poolMapGuard.RUnlock()
	if len(pools) == 0 {
		return statistics, errors.New("pools len is 0")
	}
	for _, pool := range pools {
		stats := pool.Stats()
		statistics.Use += stats.ActiveCount - stats.IdleCount
		statistics.Idle += stats.IdleCount
	}
	return statistics, nil
}

// Get 读缓存, data要传指针, 值是gob编码的
func Get(conn redis.Conn, key string, data interface{}) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("key is empty")
	}
	if reflect.TypeOf(data).Kind() != reflect.Ptr {
		return errors.New("data is not ptr")
	}
	reply, replyErr := conn.Do("GET", key)
	if replyErr != nil {
		return replyErr
	}
	var str string
	if _, err := redis.Scan([]interface{}{reply}, &str); err != nil {
		return err
	}
	dec := gob.NewDecoder(bytes.NewBufferString(str))
	return dec.Decode(data)
}

// Set 写缓存, timeout(单位:秒) <=0 不限制时间
func Set(conn redis.Conn, key string, data interface{}, timeout int) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("key is empty")
	}
	buf := new(bytes.Buffer)
	enc := gob.NewEncoder(buf)
	if err := enc.Encode(data); err != nil {
		return err
	}
	var err error
	if timeout > 0 {
		_, err = conn.Do("SET", key, buf.String(), "EX", timeout)
	} else {
		_, err = conn.Do("SET", key, buf.String())
	}
	return err
}

func Exists(conn redis.Conn, key string) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return false, errors.New("key is empty")
	}
	return redis.Bool(conn.Do("EXISTS", key))
}

func Del(conn redis.Conn, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("key is empty")
	}
	_, err := conn.Do("DEL", key)
	return err
}

// Keys key传 * 代表查询所有
func Keys(conn redis.Conn, key string) ([]string, error) {
	var keys []string
	key = strings.TrimSpace(key)
	if key == "" {
		return keys, errors.New("key is empty")
	}
	reply, doErr := redis.Values(conn.Do("KEYS", key))
	if doErr != nil {
		return keys, doErr
	}
	arr := make([]string, len(reply))
	arrAddr := make([]interface{}, len(arr))
	for i := range arr {
		arrAddr[i] = &arr[i]
	}
	if _, err := redis.Scan(reply, arrAddr...); err != nil {
		return keys, err
	}
	keys = arr
	return keys, nil
}

// Ttl 查key的剩余生存时间(单位:秒)
func Ttl(conn redis.Conn, key string) (int, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return 0, errors.New("key is empty")
	}
	return redis.Int(conn.Do("TTL", key))
}

// Expire 重设key的生存时间(单位:秒)
func Expire(conn redis.Conn, key string, timeout int) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("key is empty")
	}
	_, err := conn.Do("EXPIRE", key, timeout)
	return err
}
