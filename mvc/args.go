package mvc

import (
	"context"
	"net/http"
)

// RenderArgs 一次请求范围的键值包, 拦截器、控制器方法和Result输出共享它,
// 只存在于一次调用内, 不跨请求
type RenderArgs map[string]interface{}

type invocationKey int

const (
	argsKey invocationKey = iota
	routerKey
	routeKey
)

// withInvocation 给请求挂上一次调用范围的渲染参数和路由器
func withInvocation(req *http.Request, router *Router) *http.Request {
	ctx := context.WithValue(req.Context(), argsKey, RenderArgs{})
	ctx = context.WithValue(ctx, routerKey, router)
	return req.WithContext(ctx)
}

// withRoute 路由解析成功后把命中的路由挂上请求
func withRoute(req *http.Request, route Route) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), routeKey, route))
}

// Args 取出请求上的渲染参数, 只在框架分发的请求里有效
func Args(req *http.Request) RenderArgs {
	if args, ok := req.Context().Value(argsKey).(RenderArgs); ok {
		return args
	}
	return nil
}

// RouteOf 取出请求命中的路由, 在路由解析之前调用ok是false
func RouteOf(req *http.Request) (Route, bool) {
	route, ok := req.Context().Value(routeKey).(Route)
	return route, ok
}

func routerOf(req *http.Request) *Router {
	if router, ok := req.Context().Value(routerKey).(*Router); ok {
		return router
	}
	return nil
}

func (the RenderArgs) Set(key string, val interface{}) {
	the[key] = val
}

func (the RenderArgs) Get(key string) (interface{}, bool) {
	val, ok := the[key]
	return val, ok
}

func (the RenderArgs) GetString(key string) string {
	if val, ok := the[key].(string); ok {
		return val
	}
	return ""
}

func (the RenderArgs) GetInt(key string) int {
	if val, ok := the[key].(int); ok {
		return val
	}
	return 0
}

func (the RenderArgs) Del(key string) {
	delete(the, key)
}
