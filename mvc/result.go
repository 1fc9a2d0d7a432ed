package mvc

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
)

// renderResult 是大部分Result变体的载体, 状态码加响应头加内容, Out时原样输出
type renderResult struct {
	status  int
	header  map[string]string
	content string
}

func (the *renderResult) Out(w http.ResponseWriter, req *http.Request) error {
	ResponseOut(w, the.status, the.header, the.content)
	return nil
}

// Ok 200, 空内容
func Ok() Result {
	return &renderResult{status: http.StatusOK}
}

// Html 200, text/html
func Html(content string) Result {
	return &renderResult{
		status:  http.StatusOK,
		header:  map[string]string{"Content-Type": "text/html; charset=utf-8"},
		content: content,
	}
}

// Xml 200, text/xml
func Xml(content string) Result {
	return &renderResult{
		status:  http.StatusOK,
		header:  map[string]string{"Content-Type": "text/xml; charset=utf-8"},
		content: content,
	}
}

// Text 200, text/plain
func Text(content string) Result {
	return &renderResult{
		status:  http.StatusOK,
		header:  map[string]string{"Content-Type": "text/plain; charset=utf-8"},
		content: content,
	}
}

// Created 201, 空内容
func Created() Result {
	return &renderResult{status: http.StatusCreated}
}

// Accepted 202, 空内容
func Accepted() Result {
	return &renderResult{status: http.StatusAccepted}
}

// NoContent 204, 空内容
func NoContent() Result {
	return &renderResult{status: http.StatusNoContent}
}

// Redirect 跳转到url, 默认301永久跳转, permanent传false就是302临时跳转
func Redirect(url string, permanent ...bool) Result {
	status := http.StatusMovedPermanently
	if len(permanent) > 0 && !permanent[0] {
		status = http.StatusFound
	}
	return &renderResult{
		status: status,
		header: map[string]string{"Location": url},
	}
}

// NotModified 304, 可以带ETag
func NotModified(etag ...string) Result {
	result := &renderResult{status: http.StatusNotModified}
	if len(etag) > 0 && etag[0] != "" {
		result.header = map[string]string{"ETag": etag[0]}
	}
	return result
}

// BadRequest 400, 空内容
func BadRequest() Result {
	return &renderResult{status: http.StatusBadRequest}
}

// Unauthorized 401, 可以带realm, 输出 WWW-Authenticate 头
func Unauthorized(realm ...string) Result {
	result := &renderResult{status: http.StatusUnauthorized}
	if len(realm) > 0 && realm[0] != "" {
		result.header = map[string]string{"WWW-Authenticate": `Basic realm="` + realm[0] + `"`}
	}
	return result
}

// Forbidden 403, 可以带说明信息
func Forbidden(reason ...string) Result {
	result := &renderResult{status: http.StatusForbidden}
	if len(reason) > 0 {
		result.content = reason[0]
	}
	return result
}

// NotFound 404; 传1个参数是资源说明, 传2个参数是 method 和 path
func NotFound(what ...string) Result {
	result := &renderResult{status: http.StatusNotFound}
	if len(what) == 1 {
		result.content = what[0]
	} else if len(what) >= 2 {
		result.content = what[0] + " " + what[1]
	}
	return result
}

// Error 默认500; int参数改状态码, string参数是说明信息
// 比如 Error(503, "Not ready yet") 或 Error("查询异常")
func Error(args ...interface{}) Result {
	result := &renderResult{status: http.StatusInternalServerError}
	for _, arg := range args {
		switch val := arg.(type) {
		case int:
			result.status = val
		case string:
			result.content = val
		}
	}
	return result
}

// jsonResult 200, application/json, Out时才编码
type jsonResult struct {
	data interface{}
}

func (the *jsonResult) Out(w http.ResponseWriter, req *http.Request) error {
	content, ok := the.data.(string)
	if !ok {
		byteBuf := bytes.NewBuffer([]byte{})
		encoder := json.NewEncoder(byteBuf)
		encoder.SetEscapeHTML(false) //不转译html字符
		if err := encoder.Encode(the.data); err != nil {
			return err
		}
		content = byteBuf.String()
	}
	ResponseOut(w, http.StatusOK, map[string]string{
		"Content-Type": "application/json; charset=utf-8",
	}, content)
	return nil
}

// Json 200, application/json; 字符串原样输出, 其他值编码成json
func Json(data interface{}) Result {
	return &jsonResult{data: data}
}

// actionRedirectResult 按名跳转, Out时才通过路由器反查url, 不会调用目标控制器方法
type actionRedirectResult struct {
	controllerName string
	methodName     string
	args           []interface{}
}

func (the *actionRedirectResult) Out(w http.ResponseWriter, req *http.Request) error {
	router := routerOf(req)
	if router == nil {
		return errors.New("请求上没有路由器")
	}
	url, err := router.Reverse(the.controllerName, the.methodName, the.args...)
	if err != nil {
		return err
	}
	ResponseOut(w, http.StatusFound, map[string]string{"Location": url}, "")
	return nil
}

// ActionRedirect 跳转到另一个控制器方法, 只反查url不调用它
// args是成对的参数名和参数值, 比如 ActionRedirect("Article", "Show", "id", 3)
func ActionRedirect(controllerName string, methodName string, args ...interface{}) Result {
	return &actionRedirectResult{
		controllerName: controllerName,
		methodName:     methodName,
		args:           args,
	}
}

func ResponseOut(w http.ResponseWriter, status int, header map[string]string, content string) {
	if header != nil {
		for k, val := range header {
			w.Header().Set(k, val)
		}
	}
	//必须让 w.WriteHeader 在所有的 w.Header 之后，因为 w.WriteHeader 后 Set Header 是无效的
	w.WriteHeader(status)
	w.Write([]byte(content))
}
