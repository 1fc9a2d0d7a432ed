package mvc

import (
	"net/http"
	"reflect"
)

type OPTIONS interface{}
type GET interface{}
type HEAD interface{}
type POST interface{}
type PUT interface{}
type DELETE interface{}
type TRACE interface{}
type CONNECT interface{}

// Interceptor 拦截器, 按 Server.Interceptors 的顺序执行
// 三个阶段任何一个返回非nil的Result, 该Result直接输出, 后续拦截器和控制器方法都不再执行
type Interceptor interface {
	//Before 请求最外层, 路由解析前调用, 可以修改Path等原始信息
	Before(w http.ResponseWriter, req *http.Request) Result
	//Invoke 调用控制器方法前调用, method是准备调用的方法, in是传入的参数
	Invoke(w http.ResponseWriter, req *http.Request, method reflect.Value, in []reflect.Value) Result
	//After 控制器方法成功调用后调用, ret是方法返回值, 可以修改或替换返回值
	After(w http.ResponseWriter, req *http.Request, ret reflect.Value) Result
}

// Result 描述要输出什么http响应, 由控制器方法返回, 框架负责调用Out输出
// 每次调用只有一个Result生效, Result决定响应状态码和Content-Type
type Result interface {
	Out(http.ResponseWriter, *http.Request) error
}

// Continue 拦截器返回它代表放行, 链条继续往下走, 它永远不会成为最终响应
var Continue Result = nil
