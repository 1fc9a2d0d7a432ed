package mvc

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRule(t *testing.T) {
	router := NewRouter(
		Rule{Pattern: "/article/:id", ControllerName: "Article", MethodName: "Show"},
		Rule{Pattern: "/manage/article/:id", ControllerName: "Admin", MethodName: "Edit"},
	)
	route, err := router.Resolve(httptest.NewRequest("GET", "/article/3", nil))
	require.NoError(t, err)
	assert.Equal(t, "Article", route.ControllerName)
	assert.Equal(t, "Show", route.MethodName)
	assert.Equal(t, map[string]string{"id": "3"}, route.Params)

	route, err = router.Resolve(httptest.NewRequest("GET", "/manage/article/7", nil))
	require.NoError(t, err)
	assert.Equal(t, "Admin", route.ControllerName)
	assert.Equal(t, "Edit", route.MethodName)
	assert.Equal(t, "7", route.Params["id"])
}

func TestResolveRuleOrder(t *testing.T) {
	//规则按注册顺序匹配, 先注册的先命中
	router := NewRouter(
		Rule{Pattern: "/article/:id", ControllerName: "Article", MethodName: "Show"},
		Rule{Pattern: "/article/latest", ControllerName: "Article", MethodName: "Latest"},
	)
	route, err := router.Resolve(httptest.NewRequest("GET", "/article/latest", nil))
	require.NoError(t, err)
	assert.Equal(t, "Show", route.MethodName)
	assert.Equal(t, "latest", route.Params["id"])
}

func TestResolveConvention(t *testing.T) {
	router := NewRouter()
	route, err := router.Resolve(httptest.NewRequest("GET", "/article/search", nil))
	require.NoError(t, err)
	assert.Equal(t, "Article", route.ControllerName)
	assert.Equal(t, "Search", route.MethodName)
	assert.Nil(t, route.Params)
}

func TestResolveMiss(t *testing.T) {
	router := NewRouter()
	_, err := router.Resolve(httptest.NewRequest("GET", "/", nil))
	assert.Error(t, err)

	_, err = router.Resolve(httptest.NewRequest("GET", "/article", nil))
	assert.Error(t, err)
}

func TestReversePattern(t *testing.T) {
	router := NewRouter(Rule{Pattern: "/article/:id", ControllerName: "Article", MethodName: "Show"})
	url, err := router.Reverse("Article", "Show", "id", 3)
	require.NoError(t, err)
	assert.Equal(t, "/article/3", url)

	//填完:id剩下的参数按名字排序拼查询串
	url, err = router.Reverse("Article", "Show", "page", 2, "id", 3, "keyword", "go")
	require.NoError(t, err)
	assert.Equal(t, "/article/3?keyword=go&page=2", url)
}

func TestReverseConvention(t *testing.T) {
	router := NewRouter()
	url, err := router.Reverse("Admin", "Index")
	require.NoError(t, err)
	assert.Equal(t, "/admin/index", url)

	url, err = router.Reverse("Article", "Search", "keyword", "麻雀 虽小")
	require.NoError(t, err)
	assert.Equal(t, "/article/search?keyword="+"%E9%BA%BB%E9%9B%80+%E8%99%BD%E5%B0%8F", url)
}

func TestReverseMissingParam(t *testing.T) {
	//规则里的:id填不上就退回默认约定路径, id进查询串
	router := NewRouter(Rule{Pattern: "/article/:id", ControllerName: "Article", MethodName: "Show"})
	url, err := router.Reverse("Article", "Show", "page", 2)
	require.NoError(t, err)
	assert.Equal(t, "/article/show?page=2", url)
}

func TestReverseBadArgs(t *testing.T) {
	router := NewRouter()
	_, err := router.Reverse("Article", "Show", "id")
	assert.Error(t, err)

	_, err = router.Reverse("Article", "Show", 1, 2)
	assert.Error(t, err)

	_, err = router.Reverse("", "Show")
	assert.Error(t, err)
}
