package main

import (
	"context"
	"fmt"
	"github.com/luomingyu/sparrow-go"
	"github.com/luomingyu/sparrow-go/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"time"
)

type Common struct {
}

var factoryMap = map[string]interface{}{
	"Common": (*Common)(nil),
}

func doNoSql(db *mongo.Database) error {
	ctx := context.Background()
	coll := db.Collection("article")
	//添加
	insertResult, err := coll.InsertOne(
		ctx,
		bson.M{
			"title": "麻雀虽小",
			"views": 1,
		})
	fmt.Println("添加：", insertResult, err)
	//查询
	cursor1, err := coll.Find(
		ctx,
		bson.D{},
	)
	var results1 []bson.M
	err = cursor1.All(ctx, &results1)
	fmt.Println("查询：", results1, err)
	//更新
	updateResult, err := coll.UpdateOne(
		ctx,
		bson.D{
			{Key: "title", Value: "麻雀虽小"},
		},
		bson.D{
			{Key: "$inc", Value: bson.D{
				{Key: "views", Value: 1},
			}},
		},
	)
	fmt.Println("更新：", updateResult, err)
	//删除
	deleteResult, err := coll.DeleteOne(
		ctx,
		bson.D{{Key: "title", Value: "麻雀虽小"}},
	)
	fmt.Println("删除：", deleteResult, err)
	return nil
}

func main() {
	sparrow.SetSettingFile("setting.yaml")
	sparrow.Init(factoryMap) //初始化工厂
	defer mongodb.Close()
	mongodb.Open(mongodb.Options{
		ConnMaxLifetime: time.Minute * 3, //连接最大存活3分钟就释放掉
		MaxOpenConns:    10,              //连接池最大打开10连接, 超过阻塞等待
		MaxIdleConns:    5,               //连接池最大保留5个空闲连接
		//StatisticsLog:   true,            //开启统计日志, 记录连接池的基本状态, 文件: log/statistics.log
	})

	db := mongodb.DB()
	doNoSql(db)
}
