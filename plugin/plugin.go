package plugin

import (
	"fmt"
	"slices"
)

// Level 注解所在的层级
type Level int

const (
	LevelRecord Level = iota + 1 // 结构体文档注释
	LevelField                   // 字段注释
)

func (l Level) String() string {
	switch l {
	case LevelRecord:
		return "记录级"
	case LevelField:
		return "字段级"
	default:
		return "未知"
	}
}

// Vocabulary 生成器识别的注解名，按层级区分。
// 同一名称在错误层级出现时不会触发生成。
type Vocabulary struct {
	Record []string
	Field  []string
}

// All 返回全部注解名，记录级在前
func (v Vocabulary) All() []string {
	return append(slices.Clone(v.Record), v.Field...)
}

// LevelOf 返回注解名所在层级
func (v Vocabulary) LevelOf(name string) (Level, bool) {
	switch {
	case slices.Contains(v.Record, name):
		return LevelRecord, true
	case slices.Contains(v.Field, name):
		return LevelField, true
	}
	return 0, false
}

// IsEmpty 没有任何注解名
func (v Vocabulary) IsEmpty() bool {
	return len(v.Record) == 0 && len(v.Field) == 0
}

// validate 检查注解名非空且不重复
func (v Vocabulary) validate() error {
	seen := make(map[string]bool)
	for _, name := range v.All() {
		if name == "" {
			return fmt.Errorf("注解名不能为空")
		}
		if seen[name] {
			return fmt.Errorf("注解 @%s 重复声明", name)
		}
		seen[name] = true
	}
	return nil
}

// Generator 是代码生成器接口
type Generator interface {
	// Name 返回生成器名称，同时是 //go:trlgen: plugin:<name> 指令中的插件名
	Name() string

	// Vocabulary 返回生成器识别的注解，一个注解只能绑定一个生成器
	Vocabulary() Vocabulary

	// ParamDefs 返回注解参数定义，用于帮助文本
	ParamDefs() []ParamDef

	// DefaultOutput 未配置输出路径时使用的文件名模板，如 $FILE_accessors.go。
	// 也用于找出不再有内容的旧输出文件。
	DefaultOutput() string

	// Generate 执行代码生成
	// 返回的 GenerateResult 包含 gg 定义，由聚合器统一处理
	Generate(ctx *GenerateContext) (*GenerateResult, error)
}

// BaseGenerator 提供基础实现，可嵌入
type BaseGenerator struct {
	name          string
	vocabulary    Vocabulary
	defaultOutput string
	paramDefs     []ParamDef
}

func NewBaseGenerator(name string, vocabulary Vocabulary, defaultOutput string) *BaseGenerator {
	return &BaseGenerator{
		name:          name,
		vocabulary:    vocabulary,
		defaultOutput: defaultOutput,
	}
}

// WithParams 设置参数定义
func (g *BaseGenerator) WithParams(params []ParamDef) *BaseGenerator {
	g.paramDefs = params
	return g
}

func (g *BaseGenerator) Name() string {
	return g.name
}

func (g *BaseGenerator) Vocabulary() Vocabulary {
	return g.vocabulary
}

func (g *BaseGenerator) ParamDefs() []ParamDef {
	return g.paramDefs
}

func (g *BaseGenerator) DefaultOutput() string {
	return g.defaultOutput
}
