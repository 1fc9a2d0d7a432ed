package mvc

import (
	"net/http"
)

type Server struct {
	Addr         string
	Router       *Router
	Interceptors []Interceptor
	CertFile     string
	KeyFile      string
	Prepare      func(server *Server, httpServer *http.Server) //允许修改原始 http.Server 信息
}

type Route struct {
	ControllerName string
	MethodName     string
	Params         map[string]string //路径参数, 来自路由规则里的:name段
}
