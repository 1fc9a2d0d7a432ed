package mvc

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/luomingyu/sparrow-go/limiter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessInterceptorRequestId(t *testing.T) {
	interceptor := &AccessInterceptor{}
	req := httptest.NewRequest("GET", "/article/show", nil)
	req = withInvocation(req, NewRouter())
	w := httptest.NewRecorder()
	assert.Nil(t, interceptor.Before(w, req))
	//requestId放进渲染参数, 响应体比如Json能带上它
	assert.NotEmpty(t, Args(req).GetString("requestId"))
	assert.Nil(t, interceptor.After(w, req, reflect.ValueOf(Ok())))
}

func TestLimitInterceptorBefore(t *testing.T) {
	interceptor := &LimitInterceptor{Limiter: limiter.New(1, 1, 0)}
	req := httptest.NewRequest("GET", "/article/show", nil)
	req.RemoteAddr = "1.2.3.4:5678"
	w := httptest.NewRecorder()
	assert.Nil(t, interceptor.Before(w, req))

	ret := interceptor.Before(w, req)
	require.NotNil(t, ret)
	out := httptest.NewRecorder()
	require.NoError(t, ret.Out(out, req))
	assert.Equal(t, http.StatusTooManyRequests, out.Code)

	//别的ip不受影响
	other := httptest.NewRequest("GET", "/article/show", nil)
	other.RemoteAddr = "5.6.7.8:1234"
	assert.Nil(t, interceptor.Before(w, other))
}

func TestLimitInterceptorUnlimited(t *testing.T) {
	//rps<=0时Limiter是nil, 全部放行
	interceptor := &LimitInterceptor{Limiter: limiter.New(0, 0, 0)}
	req := httptest.NewRequest("GET", "/article/show", nil)
	req.RemoteAddr = "1.2.3.4:5678"
	w := httptest.NewRecorder()
	for i := 0; i < 100; i++ {
		assert.Nil(t, interceptor.Before(w, req))
	}
}
