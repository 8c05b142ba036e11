package engine

import (
	"slices"

	"github.com/donutnomad/trlgen/annotation"
)

// AccessorKind 访问器种类
type AccessorKind int

const (
	Getter AccessorKind = iota
	Setter
)

func (k AccessorKind) String() string {
	if k == Setter {
		return "setter"
	}
	return "getter"
}

// DefaultSetterPrefix setter 的默认前缀
const DefaultSetterPrefix = "set_"

// Level 注解作用层级
type Level int

const (
	RecordLevel Level = iota
	FieldLevel
)

// AccessorConfig 解析后的访问器配置
type AccessorConfig struct {
	Includes      []string // 为空表示全部字段
	Excludes      []string
	Prefix        string
	NameOverride  string // 仅字段级有效
	Modifier      annotation.Modifier
	IncludePublic bool
}

// DefaultAccessorConfig 返回访问器默认配置，setter 默认前缀为 "set_"
func DefaultAccessorConfig(kind AccessorKind) AccessorConfig {
	cfg := AccessorConfig{Modifier: annotation.ModifierRef}
	if kind == Setter {
		cfg.Prefix = DefaultSetterPrefix
	}
	return cfg
}

// Narrow 将记录级配置收窄为字段级配置。
//
//	Prefix        -> 保留
//	Modifier      -> 保留
//	Includes      -> 清空
//	Excludes      -> 清空
//	NameOverride  -> 清空
//	IncludePublic -> 清空
func (c AccessorConfig) Narrow() AccessorConfig {
	return AccessorConfig{
		Prefix:   c.Prefix,
		Modifier: c.Modifier,
	}
}

// clone 复制切片，避免与原配置共享底层数组
func (c AccessorConfig) clone() AccessorConfig {
	c.Includes = slices.Clone(c.Includes)
	c.Excludes = slices.Clone(c.Excludes)
	return c
}

// ConstructorConfig 解析后的构造函数配置
type ConstructorConfig struct {
	Name       string
	Visibility annotation.Visibility
}

// DefaultConstructorName 构造函数默认名称
const DefaultConstructorName = "new"

// DefaultConstructorConfig 返回构造函数默认配置
func DefaultConstructorConfig() ConstructorConfig {
	return ConstructorConfig{
		Name:       DefaultConstructorName,
		Visibility: annotation.Visibility{Kind: annotation.Public},
	}
}
