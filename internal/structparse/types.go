package structparse

import (
	"errors"

	"github.com/donutnomad/trlgen/engine"
)

var (
	// ErrStructNotFound 文件中没有指定名称的结构体
	ErrStructNotFound = errors.New("未找到结构体")
	// ErrGenericStruct 泛型结构体暂不支持
	ErrGenericStruct = errors.New("暂不支持泛型结构体")
)

// ImportInfo 导入信息
type ImportInfo struct {
	Alias      string // 显式别名，未起别名时为空
	Qualifier  string // 源码中使用的限定符
	ImportPath string // 完整导入路径
}

// Result 一个结构体的解析结果
type Result struct {
	Record      *engine.Record
	PackageName string            // 包名
	FilePath    string            // 结构体所在文件路径
	Imports     map[string]string // 限定符 -> 导入路径
}
