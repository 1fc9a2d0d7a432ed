package mvc

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/luomingyu/sparrow-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	showHits   int
	latestHits int
)

type testShowParam struct {
	Id int
}

type testSearchParam struct {
	Keyword string   `json:"keyword"`
	Page    int      `json:"page"`
	Tags    []string `json:"tags"`
}

type testCreateParam struct {
	Title string `json:"title"`
}

type testArticle struct {
}

func (the *testArticle) Show(param testShowParam) Result {
	showHits++
	return Html("<h1>article " + strconv.Itoa(param.Id) + "</h1>")
}

func (the *testArticle) About() string {
	return "a tiny article service"
}

func (the *testArticle) List() []map[string]interface{} {
	return []map[string]interface{}{
		{"id": 1, "title": "one"},
		{"id": 2, "title": "two"},
	}
}

func (the *testArticle) Search(param testSearchParam) Result {
	return Json(param)
}

func (the *testArticle) Latest() Result {
	latestHits++
	return ActionRedirect("Article", "Show", "id", 3)
}

func (the *testArticle) Create(_ POST, param testCreateParam) Result {
	if strings.TrimSpace(param.Title) == "" {
		return BadRequest()
	}
	return Created()
}

func (the *testArticle) Greet(req *http.Request) Result {
	return Text(Args(req).GetString("user"))
}

func (the *testArticle) Broken() Result {
	return nil
}

type stubInterceptor struct {
	beforeRet  Result
	invokeRet  Result
	afterRet   Result
	before     int
	invoke     int
	after      int
	beforeHook func(req *http.Request)
}

func (the *stubInterceptor) Before(w http.ResponseWriter, req *http.Request) Result {
	the.before++
	if the.beforeHook != nil {
		the.beforeHook(req)
	}
	return the.beforeRet
}

func (the *stubInterceptor) Invoke(w http.ResponseWriter, req *http.Request, method reflect.Value, in []reflect.Value) Result {
	the.invoke++
	return the.invokeRet
}

func (the *stubInterceptor) After(w http.ResponseWriter, req *http.Request, ret reflect.Value) Result {
	the.after++
	return the.afterRet
}

func TestMain(m *testing.M) {
	sparrow.SetLogPath(filepath.Join(os.TempDir(), "sparrow-mvc-test-log"))
	sparrow.Init(map[string]interface{}{
		"Article": (*testArticle)(nil),
	})
	os.Exit(m.Run())
}

func dispatch(server *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	routeHandle(server, w, req)
	return w
}

func TestDispatchRuleRoute(t *testing.T) {
	showHits = 0
	server := &Server{
		Router: NewRouter(Rule{Pattern: "/article/:id", ControllerName: "Article", MethodName: "Show"}),
	}
	w := dispatch(server, httptest.NewRequest("GET", "/article/3", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "article 3")
	assert.Equal(t, 1, showHits)
}

func TestDispatchConvention(t *testing.T) {
	server := &Server{Router: NewRouter()}
	w := dispatch(server, httptest.NewRequest("GET", "/article/about", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "a tiny article service", w.Body.String())
}

func TestDispatchRawValueJson(t *testing.T) {
	//路由函数返回普通值, 套成json输出
	server := &Server{Router: NewRouter()}
	w := dispatch(server, httptest.NewRequest("GET", "/article/list", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `[{"id":1,"title":"one"},{"id":2,"title":"two"}]`, w.Body.String())
}

func TestDispatchNotFound(t *testing.T) {
	server := &Server{Router: NewRouter()}

	w := dispatch(server, httptest.NewRequest("GET", "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "GET /nope", w.Body.String())

	//控制器没注册
	w = dispatch(server, httptest.NewRequest("GET", "/ghost/show", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	//控制器方法不存在
	w = dispatch(server, httptest.NewRequest("GET", "/article/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "GET /article/missing", w.Body.String())
}

func TestDispatchLifecycleGuard(t *testing.T) {
	//Init和Use是工厂生命周期方法, 不允许走路由
	server := &Server{Router: NewRouter()}
	w := dispatch(server, httptest.NewRequest("GET", "/article/init", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	w = dispatch(server, httptest.NewRequest("GET", "/article/use", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDispatchWithoutRouter(t *testing.T) {
	w := dispatch(&Server{}, httptest.NewRequest("GET", "/article/about", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestInterceptorContinue(t *testing.T) {
	//全部放行时三个阶段按顺序各执行一次, 响应来自路由函数
	first := &stubInterceptor{}
	second := &stubInterceptor{}
	server := &Server{
		Router:       NewRouter(),
		Interceptors: []Interceptor{first, second},
	}
	w := dispatch(server, httptest.NewRequest("GET", "/article/about", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a tiny article service", w.Body.String())
	for _, stub := range []*stubInterceptor{first, second} {
		assert.Equal(t, 1, stub.before)
		assert.Equal(t, 1, stub.invoke)
		assert.Equal(t, 1, stub.after)
	}
}

func TestBeforeShortCircuit(t *testing.T) {
	showHits = 0
	first := &stubInterceptor{beforeRet: Forbidden("denied")}
	second := &stubInterceptor{}
	server := &Server{
		Router:       NewRouter(Rule{Pattern: "/article/:id", ControllerName: "Article", MethodName: "Show"}),
		Interceptors: []Interceptor{first, second},
	}
	w := dispatch(server, httptest.NewRequest("GET", "/article/3", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "denied", w.Body.String())
	//后续拦截器和路由函数都没执行
	assert.Equal(t, 0, second.before)
	assert.Equal(t, 0, first.invoke)
	assert.Equal(t, 0, showHits)
}

func TestInvokeShortCircuit(t *testing.T) {
	showHits = 0
	stub := &stubInterceptor{invokeRet: Text("intercepted")}
	server := &Server{
		Router:       NewRouter(Rule{Pattern: "/article/:id", ControllerName: "Article", MethodName: "Show"}),
		Interceptors: []Interceptor{stub},
	}
	w := dispatch(server, httptest.NewRequest("GET", "/article/3", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "intercepted", w.Body.String())
	assert.Equal(t, 0, showHits)
	assert.Equal(t, 0, stub.after)
}

func TestAfterReplace(t *testing.T) {
	showHits = 0
	stub := &stubInterceptor{afterRet: NoContent()}
	server := &Server{
		Router:       NewRouter(Rule{Pattern: "/article/:id", ControllerName: "Article", MethodName: "Show"}),
		Interceptors: []Interceptor{stub},
	}
	w := dispatch(server, httptest.NewRequest("GET", "/article/3", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	//路由函数执行了, 但After替换掉了它的返回值
	assert.Equal(t, 1, showHits)
}

func TestRenderArgsAcrossChain(t *testing.T) {
	stub := &stubInterceptor{
		beforeHook: func(req *http.Request) {
			Args(req).Set("user", "admin")
		},
	}
	server := &Server{
		Router:       NewRouter(),
		Interceptors: []Interceptor{stub},
	}
	w := dispatch(server, httptest.NewRequest("GET", "/article/greet", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Body.String())
}

func TestMethodMarker(t *testing.T) {
	server := &Server{Router: NewRouter()}

	w := dispatch(server, httptest.NewRequest("GET", "/article/create", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	req := httptest.NewRequest("POST", "/article/create", strings.NewReader(`{"title":"麻雀虽小"}`))
	req.Header.Set("Content-Type", "application/json")
	w = dispatch(server, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest("POST", "/article/create", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w = dispatch(server, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActionRedirectDispatch(t *testing.T) {
	showHits = 0
	latestHits = 0
	server := &Server{
		Router: NewRouter(
			Rule{Pattern: "/article/latest", ControllerName: "Article", MethodName: "Latest"},
			Rule{Pattern: "/article/:id", ControllerName: "Article", MethodName: "Show"},
		),
	}
	w := dispatch(server, httptest.NewRequest("GET", "/article/latest", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/article/3", w.Header().Get("Location"))
	//只反查url, 目标方法没被调用
	assert.Equal(t, 1, latestHits)
	assert.Equal(t, 0, showHits)
}

func TestParamBindingQuery(t *testing.T) {
	server := &Server{Router: NewRouter()}
	w := dispatch(server, httptest.NewRequest("GET", "/article/search?keyword=go&page=2&tags=web&tags=http", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"keyword":"go","page":2,"tags":["web","http"]}`, w.Body.String())
}

func TestDispatchNilReturn(t *testing.T) {
	server := &Server{Router: NewRouter()}
	w := dispatch(server, httptest.NewRequest("GET", "/article/broken", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "错误的路由函数输出", w.Body.String())
}
