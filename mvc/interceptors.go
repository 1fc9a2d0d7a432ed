package mvc

import (
	"github.com/google/uuid"
	"github.com/luomingyu/sparrow-go"
	"github.com/luomingyu/sparrow-go/limiter"
	"github.com/luomingyu/sparrow-go/metrics"
	"net"
	"net/http"
	"reflect"
	"time"
)

// AccessInterceptor 访问日志拦截器, 给每个请求生成requestId, 记录方法、路径和耗时
// requestId放在渲染参数里, 控制器方法和后续拦截器都能拿到
type AccessInterceptor struct {
}

func (the *AccessInterceptor) Before(w http.ResponseWriter, req *http.Request) Result {
	args := Args(req)
	args.Set("requestId", uuid.NewString())
	args.Set("accessStart", time.Now())
	return Continue
}

func (the *AccessInterceptor) Invoke(w http.ResponseWriter, req *http.Request, method reflect.Value, in []reflect.Value) Result {
	return Continue
}

func (the *AccessInterceptor) After(w http.ResponseWriter, req *http.Request, ret reflect.Value) Result {
	args := Args(req)
	var cost time.Duration
	if val, ok := args.Get("accessStart"); ok {
		if start, ok := val.(time.Time); ok {
			cost = time.Since(start)
		}
	}
	sparrow.AccessLog.
		WithField("requestId", args.GetString("requestId")).
		WithField("method", req.Method).
		WithField("path", req.URL.Path).
		WithField("cost", cost.String()).
		Info()
	return Continue
}

// LimitInterceptor 按客户端ip限流, 超出限额直接返回429, 不再往下走
type LimitInterceptor struct {
	Limiter *limiter.MapLimiter
}

// NewLimitInterceptor 按配置里的limit创建, rps<=0等于不限流
func NewLimitInterceptor() *LimitInterceptor {
	limit := sparrow.CurEnvConfig.Limit
	return &LimitInterceptor{
		Limiter: limiter.New(limit.Rps, limit.Burst, 0),
	}
}

func (the *LimitInterceptor) Before(w http.ResponseWriter, req *http.Request) Result {
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		host = req.RemoteAddr
	}
	if !the.Limiter.Allow(host, time.Now()) {
		return Error(http.StatusTooManyRequests, "请求过于频繁")
	}
	return Continue
}

func (the *LimitInterceptor) Invoke(w http.ResponseWriter, req *http.Request, method reflect.Value, in []reflect.Value) Result {
	return Continue
}

func (the *LimitInterceptor) After(w http.ResponseWriter, req *http.Request, ret reflect.Value) Result {
	return Continue
}

// MetricsInterceptor 按控制器和方法上报请求数和耗时
type MetricsInterceptor struct {
}

func (the *MetricsInterceptor) Before(w http.ResponseWriter, req *http.Request) Result {
	Args(req).Set("metricsStart", time.Now())
	return Continue
}

func (the *MetricsInterceptor) Invoke(w http.ResponseWriter, req *http.Request, method reflect.Value, in []reflect.Value) Result {
	return Continue
}

func (the *MetricsInterceptor) After(w http.ResponseWriter, req *http.Request, ret reflect.Value) Result {
	route, ok := RouteOf(req)
	if !ok {
		return Continue
	}
	var cost time.Duration
	if val, ok := Args(req).Get("metricsStart"); ok {
		if start, ok := val.(time.Time); ok {
			cost = time.Since(start)
		}
	}
	metrics.Observe(route.ControllerName, route.MethodName, cost)
	return Continue
}
