package sparrow

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
}

func (the *testClock) Now() time.Time {
	return time.Now()
}

type testArticleService struct {
	clock    *testClock
	name     string   `val:"sparrow"`
	size     int      `val:"42"`
	active   bool     `val:"true"`
	tags     []string `val:"[\"go\",\"web\"]"`
	useCount int
}

func (the *testArticleService) Use() {
	the.useCount++
}

type testToken struct {
	createdAt time.Time
}

func (the *testToken) Multiton() {
}

func (the *testToken) Init() {
	the.createdAt = time.Now()
}

func TestMain(m *testing.M) {
	SetLogPath(filepath.Join(os.TempDir(), "sparrow-test-log"))
	Init(map[string]interface{}{
		"Clock":   (*testClock)(nil),
		"Article": (*testArticleService)(nil),
		"Token":   (*testToken)(nil),
	})
	os.Exit(m.Run())
}

func TestIn(t *testing.T) {
	assert.True(t, In("Article"))
	assert.True(t, In("Token"))
	assert.False(t, In("Nope"))
}

func TestFactorySingleton(t *testing.T) {
	a := Factory("Article").(*testArticleService)
	b := Factory("Article").(*testArticleService)
	assert.Same(t, a, b)

	//每次取出都调一次Use
	before := a.useCount
	Factory("Article")
	assert.Equal(t, before+1, a.useCount)
}

func TestFactoryInject(t *testing.T) {
	article := Factory("Article").(*testArticleService)
	require.NotNil(t, article.clock)
	assert.Same(t, Factory("Clock").(*testClock), article.clock)
	assert.Equal(t, "sparrow", article.name)
	assert.Equal(t, 42, article.size)
	assert.True(t, article.active)
	assert.Equal(t, []string{"go", "web"}, article.tags)
}

func TestFactoryMultiton(t *testing.T) {
	x := Factory("Token").(*testToken)
	y := Factory("Token").(*testToken)
	assert.NotSame(t, x, y)
	//Init在每个新实例上都执行
	assert.False(t, x.createdAt.IsZero())
	assert.False(t, y.createdAt.IsZero())
}

func TestFactoryUnknown(t *testing.T) {
	assert.Panics(t, func() {
		Factory("Nope")
	})
}

func TestScalarValue(t *testing.T) {
	v, ok := ScalarValue("42", reflect.TypeOf(0))
	require.True(t, ok)
	assert.Equal(t, int64(42), v.Int())

	v, ok = ScalarValue("3.14", reflect.TypeOf(0.0))
	require.True(t, ok)
	assert.InDelta(t, 3.14, v.Float(), 0.0001)

	v, ok = ScalarValue("7", reflect.TypeOf(uint16(0)))
	require.True(t, ok)
	assert.Equal(t, uint64(7), v.Uint())

	v, ok = ScalarValue("True", reflect.TypeOf(false))
	require.True(t, ok)
	assert.True(t, v.Bool())

	//字符串先去掉两侧空白
	v, ok = ScalarValue(" hi ", reflect.TypeOf(""))
	require.True(t, ok)
	assert.Equal(t, "hi", v.String())

	_, ok = ScalarValue("abc", reflect.TypeOf(0))
	assert.False(t, ok)

	//超出位宽解析失败
	_, ok = ScalarValue("300", reflect.TypeOf(int8(0)))
	assert.False(t, ok)

	_, ok = ScalarValue("{}", reflect.TypeOf(struct{}{}))
	assert.False(t, ok)
}

func TestFirstUpperLower(t *testing.T) {
	assert.Equal(t, "Article", FirstUpper("article"))
	assert.Equal(t, "article", FirstLower("Article"))
	assert.Equal(t, "A", FirstUpper("a"))
}

func TestLoadSettingYaml(t *testing.T) {
	file := filepath.Join(t.TempDir(), "setting.yaml")
	content := `
version: "1.0"
name: sparrow
env: dev
envConfig:
  dev:
    logLevel: trace
    limit:
      rps: 100
      burst: 50
    metrics:
      addr: ":9100"
    redis:
      base:
        - host: 127.0.0.1
          port: 6379
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))
	var setting Setting
	require.NoError(t, loadSetting(file, &setting))
	assert.Equal(t, "dev", setting.Env)
	devConfig := setting.EnvConfig["dev"]
	assert.Equal(t, "trace", devConfig.LogLevel)
	assert.Equal(t, float64(100), devConfig.Limit.Rps)
	assert.Equal(t, 50, devConfig.Limit.Burst)
	assert.Equal(t, ":9100", devConfig.Metrics.Addr)
	require.Len(t, devConfig.Redis["base"], 1)
	assert.Equal(t, 6379, devConfig.Redis["base"][0].Port)
}

func TestLoadSettingJson(t *testing.T) {
	file := filepath.Join(t.TempDir(), "setting.json")
	content := `{"env":"release","envConfig":{"release":{"logLevel":"info"}}}`
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))
	var setting Setting
	require.NoError(t, loadSetting(file, &setting))
	assert.Equal(t, "release", setting.Env)
	assert.Equal(t, "info", setting.EnvConfig["release"].LogLevel)
}

func TestLoadSettingMissing(t *testing.T) {
	var setting Setting
	assert.Error(t, loadSetting(filepath.Join(t.TempDir(), "nope.yaml"), &setting))
}
