package object

import (
	"github.com/luomingyu/sparrow-go"
	"github.com/luomingyu/sparrow-go/mvc"
	"net/http"
	"strconv"
)

type Article struct {
	//框架自动注入 Common 工厂实例, 带不带*都可以, 私有属性也可以注入
	common *Common
}

type ShowParam struct {
	Id int //路由规则里的:id段注入
}

// 文章详情, 参考url: http://127.0.0.1:9030/article/3
// 控制器方法可以写出下面几种格式:
// func (the *Article) Show(req *http.Request, w http.ResponseWriter) mvc.Result {
// func (the *Article) Show(req *http.Request, _ mvc.GET) mvc.Result { //只支持GET方式
// 参数顺序不限制, 也可以少写或者不写参数, 不带标记参数就接受所有Method
func (the *Article) Show(req *http.Request, param ShowParam) mvc.Result {
	if param.Id <= 0 {
		return mvc.NotFound("Article not found")
	}
	jsonView := sparrow.Factory("Json").(*Json)
	jsonView.Data = map[string]interface{}{
		"id":    param.Id,
		"title": "文章" + strconv.Itoa(param.Id),
		"time":  the.common.Now(),
	}
	jsonView.Code = 0
	jsonView.Msg = "成功"
	return jsonView
}

// 文章列表, 返回普通切片, 框架自动套成Json输出
// 参考url: http://127.0.0.1:9030/article/list
func (the *Article) List(_ mvc.GET) []map[string]interface{} {
	var list []map[string]interface{}
	for i := 1; i <= 3; i++ {
		list = append(list, map[string]interface{}{
			"id":    i,
			"title": "文章" + strconv.Itoa(i),
		})
	}
	return list
}

// 搜索, 演示参数注入, 参数名兼容首字母大小写
// 参考url: http://127.0.0.1:9030/article/search?keyword=a&page=1&tags=go&tags=web
func (the *Article) Search(req *http.Request, param Param) *Json {
	jsonView := sparrow.Factory("Json").(*Json)
	jsonView.Data = map[string]interface{}{
		"keyword": param.Keyword,
		"page":    param.Page,
		"tags":    param.Tags,
	}
	jsonView.Code = 0
	jsonView.Msg = "成功"
	return jsonView
}

// 最新文章, 按名跳转到Show, 只反查url不调用它
// 参考url: http://127.0.0.1:9030/article/latest
func (the *Article) Latest() mvc.Result {
	return mvc.ActionRedirect("Article", "Show", "id", 3)
}

// 新建文章, json太长只支持POST传json 同时 Content-Type: application/json
// json: {"title":"新文章","content":"..."}
func (the *Article) Create(param CreateParam, _ mvc.POST) mvc.Result {
	if param.Title == "" {
		return mvc.BadRequest()
	}
	return mvc.Created()
}

// 返回普通字符串, 框架自动套成Text输出
func (the *Article) About() string {
	return "文章模块(" + the.common.Now() + ")"
}

// rss源, 输出text/xml
func (the *Article) Feed() mvc.Result {
	return mvc.Xml(`<?xml version="1.0" encoding="utf-8"?><feed><title>文章</title></feed>`)
}

type CreateParam struct {
	Title   string
	Content string
}
