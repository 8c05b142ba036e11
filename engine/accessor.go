package engine

import (
	"fmt"

	"github.com/donutnomad/trlgen/annotation"
)

// accessorName 先用 name 覆盖字段名，再加前缀
func accessorName(cfg AccessorConfig, f Field) string {
	base := f.Name
	if cfg.NameOverride != "" {
		base = cfg.NameOverride
	}
	return cfg.Prefix + base
}

func requireName(f Field) error {
	if !f.Named() {
		return fmt.Errorf("%w: 第 %d 个字段没有名称", ErrUnsupportedFieldShape, f.Index)
	}
	return nil
}

// SynthesizeGetter 生成 getter：访问方式取自 modifier，返回字段类型的对应引用
func SynthesizeGetter(cfg AccessorConfig, f Field) (GeneratedMethod, error) {
	if err := requireName(f); err != nil {
		return GeneratedMethod{}, err
	}
	self := selfModeOf(cfg.Modifier)
	return GeneratedMethod{
		Kind:       KindGetter,
		Name:       accessorName(cfg, f),
		Visibility: annotation.Visibility{Kind: annotation.Public},
		Self:       self,
		Returns: &ReturnShape{
			Type:     f.Type,
			Modifier: cfg.Modifier,
		},
		Body: Body{
			Kind:   BodyRead,
			Field:  f.Name,
			Access: self,
		},
		Field: f.Name,
	}, nil
}

// SynthesizeSetter 生成 setter：始终以可变引用访问，忽略 modifier
func SynthesizeSetter(cfg AccessorConfig, f Field) (GeneratedMethod, error) {
	if err := requireName(f); err != nil {
		return GeneratedMethod{}, err
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultSetterPrefix
	}
	return GeneratedMethod{
		Kind:       KindSetter,
		Name:       accessorName(cfg, f),
		Visibility: annotation.Visibility{Kind: annotation.Public},
		Self:       SelfMutRef,
		Params:     []Param{{Name: "value", Type: f.Type}},
		Body: Body{
			Kind:   BodyAssign,
			Field:  f.Name,
			Access: SelfMutRef,
			Param:  "value",
		},
		Field: f.Name,
	}, nil
}

// SynthesizeAccessor 按种类分派
func SynthesizeAccessor(kind AccessorKind, cfg AccessorConfig, f Field) (GeneratedMethod, error) {
	if kind == Setter {
		return SynthesizeSetter(cfg, f)
	}
	return SynthesizeGetter(cfg, f)
}
