// Package engine 根据记录及其注解合成访问器与构造函数的方法描述。
//
// 引擎是纯函数：输入一个 Record，输出按确定顺序排列的 GeneratedMethod，
// 不做 I/O，也不持有跨记录的状态，可由调用方并行处理多个记录。
package engine

import "github.com/donutnomad/trlgen/annotation"

// Field 记录中的一个字段
type Field struct {
	Name        string                  // 字段名，空表示匿名字段
	Type        string                  // 声明类型，原样透传
	Public      bool                    // 是否公开
	Index       int                     // 声明顺序
	Annotations []annotation.Annotation // 字段级注解，源码顺序
}

// Named 字段是否有名称
func (f Field) Named() bool {
	return f.Name != ""
}

// Record 一个数据记录定义
type Record struct {
	Name        string
	Package     string
	Fields      []Field                 // 声明顺序
	Annotations []annotation.Annotation // 记录级注解，源码顺序
}

// FieldNames 按声明顺序返回字段名
func (r *Record) FieldNames() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}
