package object

import (
	"github.com/luomingyu/sparrow-go/mvc"
	"net/http"
	"reflect"
	"regexp"
)

type Secure struct {
	token string `val:"sparrow"` //框架按val标签注入, 演示用, 真实项目不要写死token
}

func (the *Secure) Init() {

}

// 前置拦截器, 请求最外层, 可以修改Path等原始信息
// 返回 mvc.Continue 代表放行, 返回其他Result代表成功被拦截, 框架直接输出它,
// 控制器方法和后续拦截器都不会执行
func (the *Secure) Before(w http.ResponseWriter, req *http.Request) mvc.Result {
	//兼容老的url, 把manage改成admin
	req.URL.Path = regexp.MustCompile(`(?i)^/manage/`).ReplaceAllString(req.URL.Path, "/admin/")
	token := req.URL.Query().Get("token")
	if token == "" {
		token = req.Header.Get("X-Token")
	}
	if token != the.token {
		return mvc.Unauthorized("Admin")
	}
	//登录信息放进渲染参数, 控制器方法和后续拦截器都能拿到
	mvc.Args(req).Set("user", "admin")
	return mvc.Continue
}

// 成功通过前置拦截器, 在调用控制器方法前调用, method是准备调用的方法, in是传入参数
func (the *Secure) Invoke(w http.ResponseWriter, req *http.Request, method reflect.Value, in []reflect.Value) mvc.Result {
	return mvc.Continue
}

// 控制器方法成功调用后调用, ret是方法返回值, 可以修改返回值, 比如统一加水印
func (the *Secure) After(w http.ResponseWriter, req *http.Request, ret reflect.Value) mvc.Result {
	if jsonView, ok := ret.Interface().(*Json); ok {
		jsonView.Operator = mvc.Args(req).GetString("user")
	}
	return mvc.Continue
}
