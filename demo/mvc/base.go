package main

import (
	"fmt"
	"github.com/luomingyu/sparrow-go"
	"github.com/luomingyu/sparrow-go/demo/mvc/object"
	"github.com/luomingyu/sparrow-go/metrics"
	"github.com/luomingyu/sparrow-go/mvc"
	"net/http"
)

var factoryMap = map[string]interface{}{
	"Article": (*object.Article)(nil),
	"Admin":   (*object.Admin)(nil),
	"Common":  (*object.Common)(nil),
	"Json":    (*object.Json)(nil),
	"Secure":  (*object.Secure)(nil),
}

func prepare(server *mvc.Server, httpServer *http.Server) {
	//这里可以更改 http.Server 实例信息
	fmt.Println("prepare(" + server.Addr + ")")
}

// 测试连接:
// http://127.0.0.1:9030/article/3 路由规则, :id注入参数
// http://127.0.0.1:9030/article/list 默认约定 /控制器/方法
// http://127.0.0.1:9030/article/search?keyword=a&page=1&tags=go&tags=web
// http://127.0.0.1:9030/article/latest 按名跳转到Show
// http://127.0.0.1:9031/admin/index?token=sparrow 只有9031端口有Secure拦截器
// http://127.0.0.1:9100/metrics 指标
func main() {
	//sparrow.SetSettingFile("setting.yaml") //配置文件支持json和yaml, 按后缀名区分
	sparrow.Init(factoryMap) //初始化工厂
	metrics.Serve(":9100")
	router := mvc.NewRouter(
		mvc.Rule{Pattern: "/article/:id", ControllerName: "Article", MethodName: "Show"},
	)
	//拦截器按这里的顺序执行
	interceptors := []mvc.Interceptor{
		mvc.NewLimitInterceptor(), //没配置limit等于不限流
		&mvc.AccessInterceptor{},
		&mvc.MetricsInterceptor{},
	}
	//9031端口多一个Secure拦截器
	adminInterceptors := append(append([]mvc.Interceptor{}, interceptors...),
		sparrow.Factory("Secure").(mvc.Interceptor),
	)
	mvc.Serve(
		&mvc.Server{Addr: ":9030", Router: router, Prepare: prepare, Interceptors: interceptors},
		&mvc.Server{Addr: ":9031", Router: router, Prepare: prepare, Interceptors: adminInterceptors},
		//CertFile 和 KeyFile 同时不为空就是 https
		//&mvc.Server{Addr: ":9033", Router: router, CertFile: "server.crt", KeyFile: "server.key"},
	)
}
