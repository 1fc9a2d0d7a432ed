package mvc

import (
	"encoding/json"
	"github.com/luomingyu/sparrow-go"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"reflect"
	"strings"
)

func commandLineGraceful() string {
	graceful := ""
	index := -1
	length := len(os.Args)
	for i := 1; i < length; i++ {
		val := strings.TrimSpace(os.Args[i])
		if val == "-graceful" && i+1 <= length-1 {
			index = i + 1
		}
	}
	if index != -1 {
		graceful = os.Args[index]
	}
	return graceful
}

func routeHandle(server *Server, w http.ResponseWriter, req *http.Request) {
	if sparrow.CurEnv == "release" {
		defer func() {
			if err := recover(); err != nil {
				sparrow.CommonLog.Error(req.URL.Path+":", err)
				ResponseOut(w, http.StatusInternalServerError, nil, "请求异常")
			}
		}()
	}
	//挂上一次调用范围的渲染参数和路由器, 拦截器、控制器方法和输出共享
	req = withInvocation(req, server.Router)
	interceptors := server.Interceptors
	for _, interceptor := range interceptors {
		ret := interceptor.Before(w, req)
		if ret != nil {
			renderOut(w, req, ret)
			return
		}
	}
	if server.Router == nil {
		ResponseOut(w, http.StatusInternalServerError, nil, "还未设置Router")
		return
	}
	route, err := server.Router.Resolve(req)
	if err != nil {
		renderOut(w, req, NotFound(req.Method, req.URL.Path))
		return
	}
	controllerName := route.ControllerName
	if !sparrow.In(controllerName) {
		renderOut(w, req, NotFound(req.Method, req.URL.Path))
		return
	}
	methodName := route.MethodName
	controller := sparrow.Factory(controllerName)
	if controller == nil {
		renderOut(w, req, NotFound(req.Method, req.URL.Path))
		return
	}
	if methodName == "Init" || methodName == "Use" {
		ResponseOut(w, http.StatusInternalServerError, nil, "错误的路由函数")
		return
	}
	controllerType := reflect.TypeOf(controller)
	if _, ok := controllerType.MethodByName(methodName); !ok {
		renderOut(w, req, NotFound(req.Method, req.URL.Path))
		return
	}
	req = withRoute(req, route)
	controllerValue := reflect.ValueOf(controller)
	controllerFunc := controllerValue.MethodByName(methodName)
	controllerFuncType := controllerFunc.Type()
	if !allowMethod(req, controllerFuncType) {
		ResponseOut(w, http.StatusInternalServerError, nil, "错误的路由请求类型")
		return
	}
	paramNum := controllerFuncType.NumIn()
	paramList := make([]reflect.Value, paramNum)
	wType := reflect.TypeOf(w)
	reqType := reflect.TypeOf(req)
	for i := 0; i < paramNum; i++ {
		in := controllerFuncType.In(i)
		if wType.AssignableTo(in) {
			paramList[i] = reflect.ValueOf(w)
		} else if reqType.AssignableTo(in) {
			paramList[i] = reflect.ValueOf(req)
		} else if in.Kind() == reflect.Struct {
			paramList[i] = parseParam(req, route, in)
		} else {
			//不写这句会报"reflect: Call using zero Value argument",用在 _ mvc.GET 等传参
			paramList[i] = reflect.New(in).Elem()
		}
	}
	for _, interceptor := range interceptors {
		ret := interceptor.Invoke(w, req, controllerFunc, paramList)
		if ret != nil {
			renderOut(w, req, ret)
			return
		}
	}
	returns := controllerFunc.Call(paramList)
	returnLength := len(returns)
	if returnLength == 1 {
		for _, interceptor := range interceptors {
			ret := interceptor.After(w, req, returns[0])
			if ret != nil {
				renderOut(w, req, ret)
				return
			}
		}
		renderOut(w, req, returns[0].Interface())
	} else if returnLength > 1 {
		ResponseOut(w, http.StatusInternalServerError, nil, "路由函数只能返回1个返回值")
	}
}

var methodMarkers = map[reflect.Type]string{
	reflect.TypeOf((*OPTIONS)(nil)).Elem(): "OPTIONS",
	reflect.TypeOf((*GET)(nil)).Elem():     "GET",
	reflect.TypeOf((*HEAD)(nil)).Elem():    "HEAD",
	reflect.TypeOf((*POST)(nil)).Elem():    "POST",
	reflect.TypeOf((*PUT)(nil)).Elem():     "PUT",
	reflect.TypeOf((*DELETE)(nil)).Elem():  "DELETE",
	reflect.TypeOf((*TRACE)(nil)).Elem():   "TRACE",
	reflect.TypeOf((*CONNECT)(nil)).Elem(): "CONNECT",
}

// allowMethod 控制器方法没带标记参数就接受所有Method, 带了就只接受标记的那些
func allowMethod(req *http.Request, funcType reflect.Type) bool {
	method := strings.ToUpper(req.Method)
	allow := make(map[string]bool)
	for i, paramNum := 0, funcType.NumIn(); i < paramNum; i++ {
		if name, ok := methodMarkers[funcType.In(i)]; ok {
			allow[name] = true
		}
	}
	if len(allow) == 0 {
		return true
	}
	return allow[method]
}

// parseParam 把请求参数按字段名注入结构, 来源优先级: json体 > 路径参数 > post区 > get区
// 参数名兼容首字母大小写, 文件字段接收 *multipart.FileHeader
func parseParam(req *http.Request, route Route, in reflect.Type) reflect.Value {
	objAddr := reflect.New(in)
	objValue := objAddr.Elem()
	if parseJson(req, objAddr.Interface()) {
		return objValue
	}
	objType := objValue.Type()
	req.ParseForm()
	get := req.URL.Query()
	post := req.PostForm
	file := parseFile(req)
	setValue := func(value reflect.Value, type_ reflect.Type, item interface{}) {
		newType := type_
		if !isFile(newType) && newType.Kind() == reflect.Ptr {
			newType = newType.Elem()
		}
		var newValue reflect.Value
		if str, ok := item.(string); ok {
			scalar, scalarOk := sparrow.ScalarValue(str, newType)
			if !scalarOk {
				return
			}
			newValue = scalar
		} else {
			//文件等非字符串参数直接塞
			newValue = reflect.New(newType).Elem()
			itemValue := reflect.ValueOf(item)
			if !itemValue.Type().AssignableTo(newType) {
				return
			}
			newValue.Set(itemValue)
		}
		if !isFile(value.Type()) && value.Kind() == reflect.Ptr {
			value.Set(newValue.Addr())
		} else {
			value.Set(newValue)
		}
	}
	listFunc := func(field reflect.StructField, fieldName string) []interface{} {
		var list []interface{}
		if isFile(field.Type) {
			if files, ok := file[fieldName]; ok && len(files) > 0 {
				for _, f := range files {
					list = append(list, f)
				}
			}
			return list
		}
		if val, ok := route.Params[fieldName]; ok {
			return append(list, val)
		}
		if vals, ok := post[fieldName]; ok && len(vals) > 0 {
			for _, v := range vals {
				list = append(list, v)
			}
		} else if vals, ok := get[fieldName]; ok && len(vals) > 0 {
			for _, v := range vals {
				list = append(list, v)
			}
		}
		return list
	}
	//获取所有字段, 内嵌匿名字段也遍历进来, 匿名指针字段先创建新对象
	fields := expandFields(objValue, objType)
	for _, field := range fields {
		fieldName := field.Name
		valueField := objValue.FieldByName(fieldName)
		//参数首字母小写优先
		list := listFunc(field, sparrow.FirstLower(fieldName))
		if len(list) == 0 {
			list = listFunc(field, fieldName)
			if len(list) == 0 {
				continue
			}
		}
		valueType := field.Type
		if valueType.Kind() == reflect.Ptr {
			valueType = valueType.Elem()
		}
		switch valueType.Kind() {
		case reflect.Slice, reflect.Array:
			valueItemType := valueType.Elem()
			listValue := reflect.New(valueType).Elem()
			listLen := listValue.Len()
			for i, item := range list {
				newValue := reflect.New(valueItemType).Elem()
				setValue(newValue, valueItemType, item)
				if valueType.Kind() == reflect.Slice {
					listValue.Set(reflect.Append(listValue, newValue))
				} else if i <= listLen-1 {
					//数组类型接收时参数可能超出数组长度, 多的丢掉
					listValue.Index(i).Set(newValue)
				}
			}
			if valueField.Kind() == reflect.Ptr {
				valueField.Set(listValue.Addr())
			} else {
				valueField.Set(listValue)
			}
		default:
			setValue(valueField, field.Type, list[0])
		}
	}
	return objValue
}

func expandFields(objValue reflect.Value, objType reflect.Type) []reflect.StructField {
	var fields []reflect.StructField
	var walk func(field reflect.Value, structField reflect.StructField)
	walk = func(field reflect.Value, structField reflect.StructField) {
		sfType := structField.Type
		if !structField.Anonymous {
			fields = append(fields, structField)
			return
		}
		if sfType.Kind() == reflect.Ptr {
			field.Set(reflect.New(field.Type().Elem()))
			field = field.Elem()
			sfType = sfType.Elem()
		}
		if sfType.Kind() == reflect.Struct {
			numField := sfType.NumField()
			for i := 0; i < numField; i++ {
				walk(field.Field(i), sfType.Field(i))
			}
		}
	}
	numField := objType.NumField()
	for i := 0; i < numField; i++ {
		walk(objValue.Field(i), objType.Field(i))
	}
	return fields
}

func isFile(type_ reflect.Type) bool {
	return strings.Index(type_.String(), "*multipart.FileHeader") != -1
}

func parseFile(req *http.Request) map[string][]*multipart.FileHeader {
	file := make(map[string][]*multipart.FileHeader)
	contentType := strings.ToLower(req.Header.Get("Content-Type"))
	if strings.Index(contentType, "multipart/form-data") == -1 {
		return file
	}
	//http默认上传内存
	var defaultMaxMemory int64 = 32 << 20 // 32 MB
	err := req.ParseMultipartForm(defaultMaxMemory)
	if err != nil {
		return file
	}
	if req.MultipartForm != nil && req.MultipartForm.File != nil {
		for key, fhs := range req.MultipartForm.File {
			if len(fhs) > 0 {
				file[key] = append(file[key], fhs...)
			}
		}
	}
	return file
}

func parseJson(req *http.Request, obj interface{}) bool {
	contentType := strings.ToLower(req.Header.Get("Content-Type"))
	if strings.Index(contentType, "application/json") == -1 {
		return false
	}
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return false
	}
	jsonErr := json.Unmarshal(body, obj)
	return jsonErr == nil
}

// fitResult 把控制器方法的原始返回值套进最接近的Result变体:
// Result原样; template.HTML套Html; string套Text; error套Error; 其他非nil值套Json
func fitResult(val interface{}) Result {
	switch v := val.(type) {
	case nil:
		return nil
	case Result:
		return v
	case template.HTML:
		return Html(string(v))
	case string:
		return Text(v)
	case error:
		return Error(v.Error())
	}
	value := reflect.ValueOf(val)
	switch value.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		if value.IsNil() {
			return nil
		}
	}
	return Json(val)
}

func renderOut(w http.ResponseWriter, req *http.Request, val interface{}) {
	result := fitResult(val)
	if result == nil {
		ResponseOut(w, http.StatusInternalServerError, nil, "错误的路由函数输出")
		return
	}
	if err := result.Out(w, req); err != nil {
		sparrow.CommonLog.Error(req.URL.Path+":", err)
		ResponseOut(w, http.StatusInternalServerError, nil, "路由函数输出错误")
	}
}
