package mvc

import (
	"errors"
	"fmt"
	"github.com/luomingyu/sparrow-go"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// Rule 一条路由规则, Pattern形如 /article/:id, 以:开头的段是路径参数
type Rule struct {
	Pattern        string
	ControllerName string
	MethodName     string
}

// Router 持有有序的路由规则, 规则按注册顺序匹配,
// 没命中规则就走默认约定 /控制器/方法 (首字母小写)
type Router struct {
	rules []Rule
}

func NewRouter(rules ...Rule) *Router {
	router := &Router{}
	for _, rule := range rules {
		router.Add(rule.Pattern, rule.ControllerName, rule.MethodName)
	}
	return router
}

func (the *Router) Add(pattern string, controllerName string, methodName string) {
	the.rules = append(the.rules, Rule{
		Pattern:        strings.TrimSpace(pattern),
		ControllerName: strings.TrimSpace(controllerName),
		MethodName:     strings.TrimSpace(methodName),
	})
}

var conventionReg = regexp.MustCompile(`^/(\w+)/(\w+)`)

// Resolve 把请求解析到控制器和方法, 控制器要先在工厂注册
func (the *Router) Resolve(req *http.Request) (Route, error) {
	var route Route
	path := req.URL.Path
	for _, rule := range the.rules {
		params, ok := matchPattern(rule.Pattern, path)
		if !ok {
			continue
		}
		route.ControllerName = rule.ControllerName
		route.MethodName = rule.MethodName
		route.Params = params
		return route, nil
	}
	pathRes := conventionReg.FindStringSubmatch(path)
	if len(pathRes) != 3 {
		return route, errors.New("错误的路由")
	}
	route.ControllerName = sparrow.FirstUpper(pathRes[1])
	route.MethodName = sparrow.FirstUpper(pathRes[2])
	return route, nil
}

// Reverse 按控制器和方法反查url, args是成对的参数名和参数值,
// 规则里的:name段先被填充, 剩下的参数按名字排序拼成查询串
// 只是反查url, 不会调用目标控制器方法
func (the *Router) Reverse(controllerName string, methodName string, args ...interface{}) (string, error) {
	if len(args)%2 != 0 {
		return "", errors.New("args要成对传")
	}
	params := make(map[string]string)
	var keys []string
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			return "", errors.New("args的参数名要是字符串")
		}
		if _, repeat := params[key]; !repeat {
			keys = append(keys, key)
		}
		params[key] = fmt.Sprint(args[i+1])
	}
	controllerName = strings.TrimSpace(controllerName)
	methodName = strings.TrimSpace(methodName)
	if controllerName == "" || methodName == "" {
		return "", errors.New("错误的反查目标")
	}
	path := ""
	used := make(map[string]bool)
	matched := false
	for _, rule := range the.rules {
		if rule.ControllerName != controllerName || rule.MethodName != methodName {
			continue
		}
		newPath, newUsed, ok := fillPattern(rule.Pattern, params)
		if !ok {
			//规则里有填不上的:name段就试下一条
			continue
		}
		path = newPath
		used = newUsed
		matched = true
		break
	}
	if !matched {
		path = "/" + sparrow.FirstLower(controllerName) + "/" + sparrow.FirstLower(methodName)
	}
	sort.Strings(keys)
	var query []string
	for _, key := range keys {
		if used[key] {
			continue
		}
		query = append(query, url.QueryEscape(key)+"="+url.QueryEscape(params[key]))
	}
	if len(query) > 0 {
		path += "?" + strings.Join(query, "&")
	}
	return path, nil
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func matchPattern(pattern string, path string) (map[string]string, bool) {
	patternSegs := splitPath(pattern)
	pathSegs := splitPath(path)
	if len(patternSegs) == 0 || len(patternSegs) != len(pathSegs) {
		return nil, false
	}
	params := make(map[string]string)
	for i, seg := range patternSegs {
		if strings.HasPrefix(seg, ":") {
			name := seg[1:]
			if name == "" {
				return nil, false
			}
			params[name] = pathSegs[i]
		} else if seg != pathSegs[i] {
			return nil, false
		}
	}
	return params, true
}

func fillPattern(pattern string, params map[string]string) (string, map[string]bool, bool) {
	segs := splitPath(pattern)
	if len(segs) == 0 {
		return "", nil, false
	}
	used := make(map[string]bool)
	newSegs := make([]string, len(segs))
	for i, seg := range segs {
		if strings.HasPrefix(seg, ":") {
			name := seg[1:]
			val, ok := params[name]
			if !ok {
				return "", nil, false
			}
			newSegs[i] = url.PathEscape(val)
			used[name] = true
		} else {
			newSegs[i] = seg
		}
	}
	return "/" + strings.Join(newSegs, "/"), used, true
}
