package object

import (
	"github.com/luomingyu/sparrow-go/mvc"
	"net/http"
)

type Admin struct {
	common *Common
}

// 管理首页, 登录信息由Secure拦截器放进渲染参数
// 参考url: http://127.0.0.1:9031/admin/index?token=sparrow
func (the *Admin) Index(req *http.Request) mvc.Result {
	user := mvc.Args(req).GetString("user")
	return mvc.Html("<h1>后台(" + user + ")</h1>" + the.common.Now())
}

// 删文章, 成功不带内容
func (the *Admin) Remove(param ShowParam, _ mvc.POST) mvc.Result {
	if param.Id <= 0 {
		return mvc.NotFound("Article not found")
	}
	return mvc.NoContent()
}
