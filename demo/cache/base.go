package main

import (
	"fmt"
	"github.com/luomingyu/sparrow-go"
	"github.com/luomingyu/sparrow-go/cache"
	"time"
)

type Common struct {
}

var factoryMap = map[string]interface{}{
	"Common": (*Common)(nil),
}

func main() {
	sparrow.SetSettingFile("setting.yaml")
	sparrow.Init(factoryMap) //初始化工厂
	defer cache.Close()
	cache.Open(cache.Options{
		ConnMaxLifetime: time.Minute * 3, //连接最大存活3分钟就释放掉
		MaxOpenConns:    10,              //连接池最大打开10连接, 超过阻塞等待
		MaxIdleConns:    10,              //连接池最大保留10个空闲连接
		//StatisticsLog:   true,            //开启统计日志, 记录连接池的基本状态, 文件: log/statistics.log
	})
	type Article struct {
		ArticleId int
		Title     string
	}
	conn := cache.Conn()
	defer conn.Close()
	article1 := Article{
		ArticleId: 1,
		Title:     "麻雀虽小",
	}
	key := "article"

	//写缓存, timeout(单位:秒) <=0 不限制时间
	setErr := cache.Set(conn, key, article1, 5)
	if setErr != nil {
		panic(setErr)
	}
	fmt.Println("缓存设置成功")

	//判断缓存是否存在
	exists, existsErr := cache.Exists(conn, key)
	if existsErr != nil {
		panic(existsErr)
	}
	fmt.Println("存在: ", exists)

	//查询目前缓存key: * 代表查询所有
	keys, keysErr := cache.Keys(conn, "art*")
	if keysErr != nil {
		panic(keysErr)
	}
	fmt.Println("keys: ", keys)

	//查询key的剩余生存时间
	seconds, ttlErr := cache.Ttl(conn, key)
	if ttlErr != nil {
		panic(ttlErr)
	}
	fmt.Println("seconds: ", seconds)

	//读缓存
	var article2 Article
	getErr := cache.Get(conn, key, &article2)
	if getErr != nil {
		panic(getErr)
	}
	fmt.Println(article2)

	//重设生存时间
	expireErr := cache.Expire(conn, key, 10)
	if expireErr != nil {
		panic(expireErr)
	}

	//删缓存
	delErr := cache.Del(conn, key)
	if delErr != nil {
		panic(delErr)
	}
	fmt.Println("缓存删除成功")

	//判断缓存是否存在
	exists, existsErr = cache.Exists(conn, key)
	if existsErr != nil {
		panic(existsErr)
	}
	fmt.Println("存在: ", exists)
}
