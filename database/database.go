package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/luomingyu/sparrow-go"
	"math/rand"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	storeMap      = map[string]*dbStore{}
	storeMapGuard sync.RWMutex
)

// pick 默认选剩余容量最大的库, 全都一样就随机选, 可以用SetPick替换
var pick = func(dbKey string, role string, dbs []*sql.DB) (*sql.DB, error) {
	if role != "master" && role != "slave" {
		return nil, errors.New("role error")
	}
	if len(dbs) == 0 {
		return nil, errors.New("dbs len is 0")
	}
	var best []*sql.DB
	bestFree := -1
	for _, db := range dbs {
		stats := db.Stats()
		free := stats.MaxOpenConnections - stats.InUse
		if bestFree == -1 || free > bestFree {
			bestFree = free
			best = best[:0]
		}
		if free == bestFree {
			best = append(best, db)
		}
	}
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return best[r.Intn(len(best))], nil
}

func SetPick(pk func(dbKey string, role string, dbs []*sql.DB) (*sql.DB, error)) {
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

// Open 按配置里sql的dbKey同时建主库和从库连接池, 配置错误直接panic
func Open(options Options, dbKey ...string) {
	OpenMaster(options, dbKey...)
	OpenSlave(options, dbKey...)
}

func OpenMaster(options Options, dbKey ...string) {
	openRole("master", options, dbKey...)
}

func OpenSlave(options Options, dbKey ...string) {
	openRole("slave", options, dbKey...)
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

func roleItems(role string, setting sparrow.SqlSetting) []sparrow.SqlSettingItem {
	if role == "master" {
		return setting.Master
	}
	return setting.Slave
}

func openRole(role string, options Options, dbKey ...string) {
	if role != "master" && role != "slave" {
		panic("role error")
	}
	key := getDbKey(dbKey...)
	setting, ok := sparrow.CurEnvConfig.Sql[key]
	if !ok {
		panic("dbKey error")
	}
	items := roleItems(role, setting)
	if len(items) == 0 {
		panic("config error")
	}
	var dbs []*sql.DB
	for _, item := range items {
		charset := strings.TrimSpace(options.Charset)
		if charset == "" {
			charset = "utf8"
		}
		dsn := item.User + ":" + item.Password + "@tcp(" + item.Host + ":" + strconv.Itoa(item.Port) + ")/" + item.Database + "?charset=" + charset
		if options.InterpolateParams {
			dsn += "&interpolateParams=true"
		}
		db, err := sql.Open(item.DriverName, dsn)
		if err != nil {
			panic(err)
		}
		//设置<=0数, 将不限制时间
		db.SetConnMaxLifetime(options.ConnMaxLifetime)
		db.SetMaxOpenConns(options.MaxOpenConns)
		db.SetMaxIdleConns(options.MaxIdleConns)
		if err := db.Ping(); err != nil {
			panic(err)
		}
		dbs = append(dbs, db)
	}
	//防止并发写map异常
	storeMapGuard.Lock()
	if _, ok := storeMap[key]; !ok {
		storeMap[key] = &dbStore{}
	}
	store := storeMap[key]
	if role == "master" {
		store.masters = dbs
		sparrow.CommonLog.Info("数据库(" + key + "): 主库启动成功")
	} else {
		store.slaves = dbs
		sparrow.CommonLog.Info("数据库(" + key + "): 从库启动成功")
	}
	storeMapGuard.Unlock()
	if options.StatisticsLog {
		duration := options.StatisticsLogDuration
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
					WithField("name", "sql-"+key+"-"+role).
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
		var dbs []*sql.DB
		if role == "master" {
			dbs = store.masters
			store.masters = nil
		} else {
			dbs = store.slaves
			store.slaves = nil
		}
		for _, db := range dbs {
			db.Close()
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
	dbs := roleDbs(role, dbKey...)
	if len(dbs) == 0 {
		return statistics, errors.New("dbs len is 0")
	}
	for _, db := range dbs {
		stats := db.Stats()
		statistics.Use += stats.InUse
		statistics.Idle += stats.Idle
	}
	return statistics, nil
}

func roleDbs(role string, dbKey ...string) []*sql.DB {
	key := getDbKey(dbKey...)
	var dbs []*sql.DB
	//防止并发写map异常
	storeMapGuard.RLock()
	if store, ok := storeMap[key]; ok {
		if role == "master" {
			dbs = store.masters
		} else if role == "slave" {
			dbs = store.slaves
		}
	}
	storeMapGuard.RUnlock()
	return dbs
}

// DB 默认取主库
func DB(dbKey ...string) *sql.DB {
	return Master(dbKey...)
}

func Master(dbKey ...string) *sql.DB {
	db, _ := pick(getDbKey(dbKey...), "master", roleDbs("master", dbKey...))
	return db
}

func Slave(dbKey ...string) *sql.DB {
	db, _ := pick(getDbKey(dbKey...), "slave", roleDbs("slave", dbKey...))
	return db
}

// Query 查多条, col传结构切片指针, 字段按db标签或首字母大写对应列名
func Query(handler Handler, col interface{}, query string, args ...interface{}) error {
	return QueryContext(context.Background(), handler, col, query, args...)
}

// QueryRow 查一条, col传结构指针, 没查到返回 not exists
func QueryRow(handler Handler, col interface{}, query string, args ...interface{}) error {
	return QueryRowContext(context.Background(), handler, col, query, args...)
}

// Exec 用在 insert,update,delete 等等
func Exec(handler Handler, query string, args ...interface{}) (sql.Result, error) {
	return ExecContext(context.Background(), handler, query, args...)
}

func Prepare(handler Handler, query string) (*sql.Stmt, error) {
	return PrepareContext(context.Background(), handler, query)
}

func QueryContext(ctx context.Context, handler Handler, col interface{}, query string, args ...interface{}) error {
	if handler == nil {
		return errors.New("handler is nil")
	}
	sparrow.CommonLog.Trace("sql("+fmt.Sprintf("%p", handler)+"):", query)
	rows, err := handler.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	return scanRows(rows, col, false)
}

func QueryRowContext(ctx context.Context, handler Handler, col interface{}, query string, args ...interface{}) error {
	if handler == nil {
		return errors.New("handler is nil")
	}
	sparrow.CommonLog.Trace("sql("+fmt.Sprintf("%p", handler)+"):", query)
	rows, err := handler.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	return scanRows(rows, col, true)
}

func ExecContext(ctx context.Context, handler Handler, query string, args ...interface{}) (sql.Result, error) {
	if handler == nil {
		return nil, errors.New("handler is nil")
	}
	sparrow.CommonLog.Trace("sql("+fmt.Sprintf("%p", handler)+"):", query)
	return handler.ExecContext(ctx, query, args...)
}

func PrepareContext(ctx context.Context, handler Handler, query string) (*sql.Stmt, error) {
	if handler == nil {
		return nil, errors.New("handler is nil")
	}
	sparrow.CommonLog.Trace("sql("+fmt.Sprintf("%p", handler)+"):", query)
	return handler.PrepareContext(ctx, query)
}

func StmtQueryContext(ctx context.Context, stmt *sql.Stmt, col interface{}, args ...interface{}) error {
	if stmt == nil {
		return errors.New("stmt is nil")
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	return scanRows(rows, col, false)
}

func StmtQueryRowContext(ctx context.Context, stmt *sql.Stmt, col interface{}, args ...interface{}) error {
	if stmt == nil {
		return errors.New("stmt is nil")
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	return scanRows(rows, col, true)
}

func StmtExecContext(ctx context.Context, stmt *sql.Stmt, args ...interface{}) (sql.Result, error) {
	if stmt == nil {
		return nil, errors.New("stmt is nil")
	}
	return stmt.ExecContext(ctx, args...)
}

// scanRows 把行集扫进col, col是结构指针或结构切片指针, single是只取一条
func scanRows(rows *sql.Rows, col interface{}, single bool) error {
	colValue := reflect.ValueOf(col)
	if colValue.Kind() != reflect.Ptr {
		return errors.New("col is not ptr")
	}
	if colValue.IsNil() {
		return errors.New("col is nil")
	}
	colValueElem := colValue.Elem()
	itemType := colValueElem.Type()
	if itemType.Kind() == reflect.Slice {
		//取切片里面的item类型
		itemType = itemType.Elem()
	}
	if itemType.Kind() != reflect.Struct {
		return errors.New("colItem is not struct")
	}
	sc, err := newScanner(rows, itemType)
	if err != nil {
		return err
	}
	found := false
	for rows.Next() {
		item, err := sc.scan(rows)
		if err != nil {
			return err
		}
		if colValueElem.Kind() == reflect.Slice {
			colValueElem.Set(reflect.Append(colValueElem, item))
		} else {
			colValueElem.Set(item)
		}
		found = true
		if single || colValueElem.Kind() != reflect.Slice {
			break
		}
	}
	if single && !found {
		return errors.New("not exists")
	}
	return rows.Err()
}

// scanner 按列名把一行数据扫进结构, 列名先按db标签找字段, 没有标签按首字母大写找
type scanner struct {
	itemType reflect.Type
	dest     []interface{}
	fields   []string
}

func newScanner(rows *sql.Rows, itemType reflect.Type) (*scanner, error) {
	tagMap := make(map[string]string)
	numField := itemType.NumField()
	for i := 0; i < numField; i++ {
		field := itemType.Field(i)
		if tag := field.Tag.Get("db"); tag != "" {
			tagMap[tag] = field.Name
		}
	}
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	length := len(columns)
	sc := &scanner{
		itemType: itemType,
		dest:     make([]interface{}, length),
		fields:   make([]string, length),
	}
	for i, column := range columns {
		name, ok := tagMap[column]
		if !ok {
			name = sparrow.FirstUpper(column)
		}
		field, ok := itemType.FieldByName(name)
		if !ok {
			return nil, errors.New(name + " is not in col")
		}
		addr, addrErr := nullAddr(field.Type)
		if addrErr != nil {
			return nil, addrErr
		}
		sc.dest[i] = addr
		sc.fields[i] = name
	}
	return sc, nil
}

// nullAddr 按字段类型给一个可空的接收器, 防止数据库字段null出错
func nullAddr(t reflect.Type) (interface{}, error) {
	switch t.Kind() {
	case reflect.String:
		return &sql.NullString{}, nil
	case reflect.Int, reflect.Int64:
		return &sql.NullInt64{}, nil
	case reflect.Int32:
		return &sql.NullInt32{}, nil
	case reflect.Int16:
		return &sql.NullInt16{}, nil
	case reflect.Float32, reflect.Float64:
		return &sql.NullFloat64{}, nil
	case reflect.Bool:
		return &sql.NullBool{}, nil
	case reflect.Uint8:
		return &sql.NullByte{}, nil
	case reflect.Struct:
		if t == reflect.TypeOf((*time.Time)(nil)).Elem() {
			return &sql.NullTime{}, nil
		}
	}
	return nil, errors.New("colField type error")
}

func (the *scanner) scan(rows *sql.Rows) (reflect.Value, error) {
	item := reflect.New(the.itemType).Elem()
	if err := rows.Scan(the.dest...); err != nil {
		return item, err
	}
	for i, name := range the.fields {
		field := item.FieldByName(name)
		switch obj := the.dest[i].(type) {
		case *sql.NullString:
			field.SetString(obj.String)
		case *sql.NullInt64:
			field.SetInt(obj.Int64)
		case *sql.NullInt32:
			field.SetInt(int64(obj.Int32))
		case *sql.NullInt16:
			field.SetInt(int64(obj.Int16))
		case *sql.NullFloat64:
			field.SetFloat(obj.Float64)
		case *sql.NullBool:
			field.SetBool(obj.Bool)
		case *sql.NullTime:
			field.Set(reflect.ValueOf(obj.Time))
		case *sql.NullByte:
			field.Set(reflect.ValueOf(obj.Byte))
		}
	}
	return item, nil
}
