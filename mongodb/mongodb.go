package mongodb

import (
	"context"
	"errors"
	"github.com/luomingyu/sparrow-go"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	storeMap      = map[string]*dbStore{}
	storeMapGuard sync.RWMutex
)

// pick 默认选剩余容量最大的池, 全都一样就随机选, 可以用SetPick替换
var pick = func(dbKey string, role string, pools []*Pool) (*Pool, error) {
	if role != "master" && role != "slave" {
		return nil, errors.New("role error")
	}
	if len(pools) == 0 {
		return nil, errors.New("pools len is 0")
	}
	var best []*Pool
	bestFree := -1
	for _, pool := range pools {
		free := pool.MaxOpenConns - pool.Stats.Use
		if bestFree == -1 || free > bestFree {
			bestFree = free
			best = best[:0]
		}
		if free == bestFree {
			best = append(best, pool)
		}
	}
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return best[r.Intn(len(best))], nil
}

func SetPick(pk func(dbKey string, role string, pools []*Pool) (*Pool, error)) {
	if pk != nil {
		pick = pk
	}
}

func getDbKey(dbKey ...string) string {
	key := "base"
	if len(dbKey) > 0 {
		if val := strings.TrimSpace(dbKey[0]); val != "" {
			key = val
		}
	}
	return key
}

// Open 按配置里mongodb的dbKey同时建主库和从库连接池, 配置错误直接panic
func Open(options_ Options, dbKey ...string) {
	OpenMaster(options_, dbKey...)
	OpenSlave(options_, dbKey...)
}

func OpenMaster(options_ Options, dbKey ...string) {
	openRole("master", options_, dbKey...)
}

func OpenSlave(options_ Options, dbKey ...string) {
	openRole("slave", options_, dbKey...)
}

func Close(dbKey ...string) {
	CloseMaster(dbKey...)
	CloseSlave(dbKey...)
}

func CloseMaster(dbKey ...string) {
	closeRole("master", dbKey...)
}

func CloseSlave(dbKey ...string) {
	closeRole("slave", dbKey...)
}

func roleItems(role string, setting sparrow.MongodbSetting) []sparrow.MongodbSettingItem {
	if role == "master" {
		return setting.Master
	}
	return setting.Slave
}

// poolMonitor 连接被取走和归还时更新统计, mongo驱动自己不暴露池状态
func poolMonitor(stats *Statistics) *event.PoolMonitor {
	return &event.PoolMonitor{
		Event: func(poolEvent *event.PoolEvent) {
			switch poolEvent.Type {
			case event.GetSucceeded:
				stats.Use++
				stats.Idle--
			case event.ConnectionReturned:
				stats.Idle++
				stats.Use--
			}
		},
	}
}

func openRole(role string, options_ Options, dbKey ...string) {
	if role != "master" && role != "slave" {
		panic("role error")
	}
	key := getDbKey(dbKey...)
	setting, ok := sparrow.CurEnvConfig.Mongodb[key]
	if !ok {
		panic("dbKey error")
	}
	items := roleItems(role, setting)
	if len(items) == 0 {
		panic("config error")
	}
	var pools []*Pool
	ctx := context.Background()
	for _, item := range items {
		stats := &Statistics{
			Idle: options_.MaxOpenConns,
		}
		pool := &Pool{
			MaxOpenConns: options_.MaxOpenConns,
			DatabaseName: item.Database,
			Stats:        stats,
			ctx:          ctx,
		}
		uri := "mongodb://" + item.User + ":" + item.Password + "@" + item.Host + ":" + strconv.Itoa(item.Port) + "/" + item.Database
		clientOptions := options.Client().ApplyURI(uri)
		clientOptions.SetMaxPoolSize(uint64(options_.MaxOpenConns))
		clientOptions.SetMaxConnecting(uint64(options_.MaxOpenConns))
		clientOptions.SetMinPoolSize(uint64(options_.MaxIdleConns))
		clientOptions.SetMaxConnIdleTime(options_.ConnMaxLifetime)
		clientOptions.SetPoolMonitor(poolMonitor(stats))
		client, err := mongo.Connect(ctx, clientOptions)
		if err != nil {
			panic(err)
		}
		pool.Client = client
		pools = append(pools, pool)
	}
	//防止并发写map异常
	storeMapGuard.Lock()
	if _, ok := storeMap[key]; !ok {
		storeMap[key] = &dbStore{}
	}
	store := storeMap[key]
	if role == "master" {
		store.masters = pools
		sparrow.CommonLog.Info("mongodb(" + key + "): 主库启动成功")
	} else {
		store.slaves = pools
		sparrow.CommonLog.Info("mongodb(" + key + "): 从库启动成功")
	}
	storeMapGuard.Unlock()
	if options_.StatisticsLog {
		duration := options_.StatisticsLogDuration
		if duration <= 0 {
			duration = time.Second * 5
		}
		go func() {
			defer sparrow.Recover()
			for {
				stats, err := roleStats(role, key)
				if err != nil {
					return
				}
				sparrow.StatisticsLog.
					WithField("name", "mongodb-"+key+"-"+role).
					WithField("use", stats.Use).
					WithField("idle", stats.Idle).
					Info()
				time.Sleep(duration)
			}
		}()
	}
}

func closeRole(role string, dbKey ...string) {
	if role != "master" && role != "slave" {
		panic("role error")
	}
	key := getDbKey(dbKey...)
	//防止并发写map异常
	storeMapGuard.Lock()
	if store, ok := storeMap[key]; ok {
		var pools []*Pool
		if role == "master" {
			pools = store.masters
			store.masters = nil
		} else {
			pools = store.slaves
			store.slaves = nil
		}
		for _, pool := range pools {
			pool.Client.Disconnect(pool.ctx)
		}
	}
	storeMapGuard.Unlock()
}

func Stats(dbKey ...string) (Statistics, error) {
	var statistics Statistics
	masterStats, masterErr := MasterStats(dbKey...)
	if masterErr != nil {
		return statistics, masterErr
	}
	slaveStats, slaveErr := SlaveStats(dbKey...)
	if slaveErr != nil {
		return statistics, slaveErr
	}
	statistics.Use = masterStats.Use + slaveStats.Use
	statistics.Idle = masterStats.Idle + slaveStats.Idle
	return statistics, nil
}

func MasterStats(dbKey ...string) (Statistics, error) {
	return roleStats("master", dbKey...)
}

func SlaveStats(dbKey ...string) (Statistics, error) {
	return roleStats("slave", dbKey...)
}

func roleStats(role string, dbKey ...string) (Statistics, error) {
	var statistics Statistics
	pools := rolePools(role, dbKey...)
	if len(pools) == 0 {
		return statistics, errors.New("pools len is 0")
	}
	for _, pool := range pools {
		statistics.Use += pool.Stats.Use
		statistics.Idle += pool.Stats.Idle
	}
	return statistics, nil
}

func rolePools(role string, dbKey ...string) []*Pool {
	key := getDbKey(dbKey...)
	var pools []*Pool
	//防止并发写map异常
	storeMapGuard.RLock()
	if store, ok := storeMap[key]; ok {
		if role == "master" {
			pools = store.masters
		} else if role == "slave" {
			pools = store.slaves
		}
	}
	storeMapGuard.RUnlock()
	return pools
}

// DB 默认取主库
func DB(dbKey ...string) *mongo.Database {
	return Master(dbKey...)
}

func Master(dbKey ...string) *mongo.Database {
	pool, _ := pick(getDbKey(dbKey...), "master", rolePools("master", dbKey...))
	return pool.Client.Database(pool.DatabaseName)
}

func Slave(dbKey ...string) *mongo.Database {
	pool, _ := pick(getDbKey(dbKey...), "slave", rolePools("slave", dbKey...))
	return pool.Client.Database(pool.DatabaseName)
}
