package main

import (
	"errors"
	"fmt"
	_ "github.com/go-sql-driver/mysql"
	"github.com/luomingyu/sparrow-go"
	"github.com/luomingyu/sparrow-go/database"
	"strconv"
	"time"
)

type Common struct {
}

var factoryMap = map[string]interface{}{
	"Common": (*Common)(nil),
}

func doSql(handler database.Handler) error {
	//database.Handler 满足 sql.DB 和 sql.Conn 和 sql.Tx, 所以下面的 handler都可以

	//执行sql: 用在 insert,update,delete 等等...
	result, execErr := database.Exec(handler, "update t_article set title='文章 "+strconv.Itoa(int(time.Now().Unix()))+"' where articleId=? limit 1", 1)
	rowsAffected, _ := result.RowsAffected()
	fmt.Println(rowsAffected, execErr)

	//查询多条
	var articleList []struct {
		ArticleId int
		Title     string `db:"title"` //字段没设置db标签, 就按首字母大写找字段
	}
	listErr := database.Query(handler, &articleList, "select articleId,title from t_article limit 10")
	fmt.Println(articleList, listErr)

	//查询一条
	var articleInfo struct {
		ArticleId int
		Title     string
	}
	infoErr := database.QueryRow(handler, &articleInfo, "select articleId,title from t_article where articleId=?", 1)
	fmt.Println(articleInfo, infoErr)

	if execErr != nil || listErr != nil || infoErr != nil {
		return errors.New("出现错误")
	}
	return nil
}

func main() {
	sparrow.SetSettingFile("setting.yaml")
	sparrow.Init(factoryMap) //初始化工厂
	defer database.Close()
	database.Open(database.Options{
		ConnMaxLifetime: time.Minute * 3, //连接最大存活3分钟就释放掉
		MaxOpenConns:    10,              //连接池最大打开10连接, 超过阻塞等待
		MaxIdleConns:    5,               //连接池最大保留5个空闲连接
		//StatisticsLog:   true,            //开启统计日志, 记录连接池的基本状态, 文件: log/statistics.log
	})

	//sql.DB版本
	db := database.DB()
	doSql(db)

	//sql.Tx版本(事务)
	/*db := database.DB()
	tx, err := db.Begin()
	if err != nil {
		panic(err)
	}
	doErr := doSql(tx)
	if doErr != nil {
		tx.Rollback()
	}
	commitErr := tx.Commit()
	fmt.Println(commitErr)*/
}
