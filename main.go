package sparrow

import (
	"encoding/json"
	"errors"
	"github.com/lestrrat-go/file-rotatelogs"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unsafe"
)

var (
	separator       = string(os.PathSeparator)
	factoryMap      map[string]interface{}
	factoryMapGuard sync.RWMutex
	typeMap         map[reflect.Type]string
	SettingConfig   Setting
	CurEnv          string //dev,beta,release
	CurEnvConfig    EnvConfig
	StatisticsLog   = logrus.New()
	AccessLog       = logrus.New()
	CommonLog       = logrus.New()
	ErrorLog        = logrus.New()
	logLevel        string
	logPath         string
	settingFile     string
)

func init() {
	CurEnv = "dev"
	logLevel = "trace"
	logPath = "." + separator + "log"
}

// Multiton 实现此方法的模块都是多例, 工厂每次取出来都是不同实例
type Multiton interface {
	Multiton()
}

func Recover() {
	if err := recover(); err != nil {
		ErrorLog.Info(err)
	}
}

// Init 注册工厂, 程序启动时调用一次, 之后工厂表只读
func Init(fm map[string]interface{}) {
	if err := setSetting(); err != nil {
		panic(err)
	}
	if err := setLog(); err != nil {
		panic(err)
	}
	factoryMap = fm
	typeMap = make(map[reflect.Type]string)
	for key, val := range factoryMap {
		typeMap[reflect.TypeOf(val)] = key
	}
}

func setSetting() error {
	if settingFile != "" {
		//初始化配置, 按后缀名选择json或yaml解析
		var settingConfig Setting
		if err := loadSetting(settingFile, &settingConfig); err != nil {
			return err
		}
		SettingConfig = settingConfig
		CurEnv = settingConfig.Env
		CurEnvConfig = settingConfig.EnvConfig[CurEnv]
		logLevel = CurEnvConfig.LogLevel
	}
	return nil
}

func setLog() error {
	if !exists(logPath) {
		if err := os.Mkdir(logPath, os.ModePerm); err != nil {
			return err
		}
	}
	level, levelErr := logrus.ParseLevel(logLevel)
	if levelErr != nil {
		return levelErr
	}
	StatisticsLog.SetLevel(level)
	AccessLog.SetLevel(level)
	CommonLog.SetLevel(level)
	ErrorLog.SetLevel(level)
	statisticsLogFile := logPath + separator + "statistics.log"
	accessLogFile := logPath + separator + "access.log"
	commonLogFile := logPath + separator + "common.log"
	errorLogFile := logPath + separator + "error.log"
	//日志按2小时轮转一个新文件, 保留最近12个, 多余的自动清理, 软链指向最新文件
	set := func(logger *logrus.Logger, path string, formatter logrus.Formatter) {
		writer, _ := rotatelogs.New(
			path+".%Y%m%d%H%M",
			rotatelogs.WithLinkName(path),
			rotatelogs.WithRotationCount(12),
			rotatelogs.WithRotationTime(time.Duration(120)*time.Minute),
		)
		if formatter == nil {
			formatter = &logrus.TextFormatter{
				TimestampFormat: "2006-01-02 15:04:05",
			}
		}
		logger.SetFormatter(formatter)
		var writers []io.Writer
		writers = append(writers, writer)
		if CurEnv == "dev" {
			//开发环境同时输出控制台
			writers = append(writers, os.Stdout)
		}
		multiWriter := io.MultiWriter(writers...)
		logger.SetOutput(multiWriter)
	}
	set(StatisticsLog, statisticsLogFile, &logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	})
	set(AccessLog, accessLogFile, nil)
	set(CommonLog, commonLogFile, nil)
	set(ErrorLog, errorLogFile, nil)
	return nil
}

func SetLogPath(path string) {
	reg := regexp.MustCompile(separator + `$`)
	logPath = reg.ReplaceAllString(strings.TrimSpace(path), "")
}

func SetSettingFile(file string) {
	settingFile = strings.TrimSpace(file)
}

func callFunc(obj interface{}, name string, args ...interface{}) {
	objType := reflect.TypeOf(obj)
	if _, ok := objType.MethodByName(name); !ok {
		return
	}
	objValue := reflect.ValueOf(obj)
	method := objValue.MethodByName(name)
	paramNum := len(args)
	paramList := make([]reflect.Value, paramNum)
	for i := 0; i < paramNum; i++ {
		paramList[i] = reflect.ValueOf(args[i])
	}
	method.Call(paramList)
}

// inject 按字段类型注入工厂实例, 或按val标签注入字面值, 私有字段也可以注入
func inject(obj interface{}) {
	objType := reflect.TypeOf(obj)
	objValue := reflect.ValueOf(obj)
	if objType.Kind() != reflect.Ptr {
		return
	}
	objType = objType.Elem()
	objValue = objValue.Elem()
	numField := objValue.NumField()
	for i := 0; i < numField; i++ {
		field := objType.Field(i)
		fieldType := field.Type
		fieldValue := objValue.Field(i)
		//反射设置私有字段
		unsafeFieldValue := reflect.NewAt(fieldValue.Type(), unsafe.Pointer(fieldValue.UnsafeAddr())).Elem()
		if fieldValue.Kind() != reflect.Ptr {
			fieldType = fieldValue.Addr().Type()
		}
		if key, ok := typeMap[fieldType]; ok {
			factory := Factory(key)
			if fieldValue.Kind() == reflect.Ptr {
				unsafeFieldValue.Set(reflect.ValueOf(factory))
			} else {
				unsafeFieldValue.Set(reflect.ValueOf(factory).Elem())
			}
			continue
		}
		val := field.Tag.Get("val")
		if val == "" {
			continue
		}
		valType := field.Type
		isPtr := valType.Kind() == reflect.Ptr
		if isPtr {
			valType = valType.Elem()
		}
		newValue, ok := ScalarValue(val, valType)
		if !ok {
			//非标量类型按json解析
			obValue := reflect.New(valType)
			if err := json.Unmarshal([]byte(val), obValue.Interface()); err != nil {
				continue
			}
			newValue = obValue.Elem()
		}
		if isPtr {
			unsafeFieldValue.Set(newValue.Addr())
		} else {
			unsafeFieldValue.Set(newValue)
		}
	}
}

// ScalarValue 把字符串解析成标量类型t的值, t不是标量或解析失败返回false
func ScalarValue(val string, t reflect.Type) (reflect.Value, bool) {
	newValue := reflect.New(t).Elem()
	val = strings.TrimSpace(val)
	switch t.Kind() {
	case reflect.String:
		newValue.SetString(val)
	case reflect.Int, reflect.Int64, reflect.Int32, reflect.Int16, reflect.Int8:
		n, err := strconv.ParseInt(val, 10, numBits(t))
		if err != nil {
			return newValue, false
		}
		newValue.SetInt(n)
	case reflect.Uint, reflect.Uint64, reflect.Uint32, reflect.Uint16, reflect.Uint8:
		n, err := strconv.ParseUint(val, 10, numBits(t))
		if err != nil {
			return newValue, false
		}
		newValue.SetUint(n)
	case reflect.Float64, reflect.Float32:
		n, err := strconv.ParseFloat(val, numBits(t))
		if err != nil {
			return newValue, false
		}
		newValue.SetFloat(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err != nil {
			return newValue, false
		}
		newValue.SetBool(b)
	case reflect.Complex128, reflect.Complex64:
		c, err := strconv.ParseComplex(val, numBits(t))
		if err != nil {
			return newValue, false
		}
		newValue.SetComplex(c)
	default:
		return newValue, false
	}
	return newValue, true
}

func numBits(t reflect.Type) int {
	//int和uint按64位解析, 其他按类型自己的位宽
	switch t.Kind() {
	case reflect.Int, reflect.Uint:
		return 64
	default:
		return t.Bits()
	}
}

func loadSetting(fileName string, data *Setting) error {
	fileName = strings.TrimSpace(fileName)
	if !exists(fileName) {
		return errors.New(`"` + fileName + `" IsNotExist`)
	}
	b, err := os.ReadFile(fileName)
	if err != nil {
		return err
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == ".yaml" || ext == ".yml" {
		return yaml.Unmarshal(b, data)
	}
	return json.Unmarshal(b, data)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || os.IsExist(err)
}

func In(name string) bool {
	//防止并发写map异常
	factoryMapGuard.RLock()
	_, ok := factoryMap[name]
	factoryMapGuard.RUnlock()
	return ok
}

func Factory(name string, args ...interface{}) interface{} {
	if !In(name) {
		panic(errors.New("工厂不存在" + name))
	}
	//防止并发写map异常
	factoryMapGuard.RLock()
	obj := factoryMap[name]
	factoryMapGuard.RUnlock()
	objType := reflect.TypeOf(obj)
	objValue := reflect.ValueOf(obj)
	create := func() interface{} {
		objValue = reflect.New(objType.Elem())
		obj := objValue.Interface()
		inject(obj)
		callFunc(obj, "Init", args...)
		return obj
	}
	if objValue.IsNil() {
		obj = create()
		//防止并发写map异常
		factoryMapGuard.Lock()
		factoryMap[name] = obj
		factoryMapGuard.Unlock()
	}
	_, ok := obj.(Multiton)
	if ok {
		obj = create()
	}
	callFunc(obj, "Use", args...)
	return obj
}

func FirstLower(str string) string {
	return strings.ToLower(str[0:1]) + str[1:]
}

func FirstUpper(str string) string {
	return strings.ToUpper(str[0:1]) + str[1:]
}
