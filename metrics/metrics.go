package metrics

import (
	"github.com/luomingyu/sparrow-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"strings"
	"time"
)

var (
	requestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sparrow_request_total",
			Help: "按控制器和方法统计的请求数",
		},
		[]string{"controller", "method"},
	)
	requestCost = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sparrow_request_cost_seconds",
			Help:    "按控制器和方法统计的请求耗时",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"controller", "method"},
	)
)

func init() {
	prometheus.MustRegister(requestTotal, requestCost)
}

// Observe 记录一次请求
func Observe(controllerName string, methodName string, cost time.Duration) {
	requestTotal.WithLabelValues(controllerName, methodName).Inc()
	requestCost.WithLabelValues(controllerName, methodName).Observe(cost.Seconds())
}

// Serve 启动指标服务, /metrics输出prometheus格式, addr为空不启动
func Serve(addr string) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		defer sparrow.Recover()
		sparrow.CommonLog.Info("metrics(" + addr + "): 启动成功")
		if err := http.ListenAndServe(addr, mux); err != nil {
			sparrow.CommonLog.Error("metrics("+addr+"): 启动失败", err)
		}
	}()
}
