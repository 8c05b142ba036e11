package plugin

import (
	"path/filepath"
	"slices"

	"github.com/donutnomad/gg"
)

// ParamDef 定义注解参数的元信息
type ParamDef struct {
	Name        string   // 参数名称
	Default     string   // 默认值
	Description string   // 参数描述
	Annotations []string // 适用的注解，为空表示全部
}

// AppliesTo 参数是否适用于指定注解
func (p ParamDef) AppliesTo(annotation string) bool {
	return len(p.Annotations) == 0 || slices.Contains(p.Annotations, annotation)
}

// Target 表示注解的目标结构体
type Target struct {
	Name        string // 结构体名
	PackageName string // 包名
	FilePath    string // 文件路径
	Line        int    // 声明所在行
}

// AnnotatedTarget 表示带注解的结构体。
// 注解名按出现顺序去重，只用于分发，参数由生成器自行解析。
type AnnotatedTarget struct {
	Target            *Target
	RecordAnnotations []string // 结构体文档注释中的注解名
	FieldAnnotations  []string // 字段注释中的注解名
}

// ScanResult 表示扫描结果
type ScanResult struct {
	Structs []*AnnotatedTarget // 带注解的结构体，按文件路径和行号排序

	// PackageConfigs 包级配置
	// key: 包目录
	PackageConfigs map[string]*PackageConfig

	// Sources 按目录扫描到的全部源文件（不论是否带注解），用于找出过期的输出文件
	Sources []string
}

// All 返回所有带注解的目标
func (r *ScanResult) All() []*AnnotatedTarget {
	return r.Structs
}

// GenerateContext 生成上下文，传递给 Generator
type GenerateContext struct {
	Targets        []*AnnotatedTarget        // 该 Generator 需要处理的目标
	PackageConfigs map[string]*PackageConfig // 包级配置，key: 包目录
	DefaultOutput  string                    // 命令行指定的默认输出路径（最低优先级）
	Verbose        bool                      // 详细输出
}

// GetPackageConfig 获取源文件所在包的配置
func (c *GenerateContext) GetPackageConfig(filePath string) *PackageConfig {
	if c.PackageConfigs == nil {
		return nil
	}
	return c.PackageConfigs[filepath.Dir(filePath)]
}

// MethodReport 一个生成方法的记录，用于 list 和 manifest
type MethodReport struct {
	Generator  string `json:"generator"`
	Package    string `json:"package"`
	Record     string `json:"record"`
	Source     string `json:"source"`
	Output     string `json:"output"`
	Annotation string `json:"annotation"`
	Kind       string `json:"kind"`
	Name       string `json:"name"`    // 注解语义下的方法名，如 get_id
	GoName     string `json:"go_name"` // 生成的 Go 名称，如 GetID
	Signature  string `json:"signature"`
	Visibility string `json:"visibility"`
}

// GenerateResult 生成结果
// Generator 返回 gg 定义，由聚合器统一处理
type GenerateResult struct {
	// Definitions 是生成的 gg 定义
	// key: 输出文件路径（相对路径或绝对路径）
	// value: gg.Generator 定义
	Definitions map[string]*gg.Generator

	// Reports 生成的方法记录
	Reports []MethodReport

	// Errors 错误列表
	Errors []error

	// Skipped 跳过的数量
	Skipped int
}

// PackageConfig 包级生成配置
// 通过 //go:trlgen: 注释定义，同一个包内任意文件中声明即可
// 示例:
//
//	//go:trlgen: -output `$FILE_accessors`
//	//go:trlgen: plugin:trlgen -output `zz_accessors`
type PackageConfig struct {
	PackageDir string // 包目录

	// DefaultOutput 默认输出路径（对所有插件生效）
	DefaultOutput string

	// PluginOutputs 插件特定的输出路径
	// key: 插件名（小写）, value: 输出路径
	PluginOutputs map[string]string
}

// GetPluginOutput 获取指定插件的输出路径
// 优先返回插件特定配置，其次返回默认配置，最后返回空字符串
func (c *PackageConfig) GetPluginOutput(pluginName string) string {
	if c == nil {
		return ""
	}
	if output, ok := c.PluginOutputs[pluginName]; ok {
		return output
	}
	return c.DefaultOutput
}

// NewGenerateResult 创建新的生成结果
func NewGenerateResult() *GenerateResult {
	return &GenerateResult{
		Definitions: make(map[string]*gg.Generator),
	}
}

// AddDefinition 添加 gg 定义
func (r *GenerateResult) AddDefinition(path string, gen *gg.Generator) {
	if r.Definitions == nil {
		r.Definitions = make(map[string]*gg.Generator)
	}
	r.Definitions[path] = gen
}

// AddReport 添加方法记录
func (r *GenerateResult) AddReport(reports ...MethodReport) {
	r.Reports = append(r.Reports, reports...)
}

// AddError 添加错误
func (r *GenerateResult) AddError(err error) {
	r.Errors = append(r.Errors, err)
}
