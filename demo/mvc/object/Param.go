package object

type Param struct {
	//http提交参数时, 参数兼容首字母大小写
	Keyword string   //也支持 *string
	Page    int      //也支持 *int
	Tags    []string //也支持 *[]string
}
