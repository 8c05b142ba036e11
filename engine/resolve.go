package engine

import "github.com/donutnomad/trlgen/annotation"

// ResolveAccessor 按源码顺序折叠参数，同一键后者覆盖前者。
// 字段级配置忽略 includes/excludes/pub，记录级配置忽略 name。
func ResolveAccessor(kind AccessorKind, level Level, args []annotation.Argument) AccessorConfig {
	cfg := DefaultAccessorConfig(kind)
	for _, arg := range args {
		switch a := arg.(type) {
		case annotation.ArgPrefix:
			cfg.Prefix = a.Value
		case annotation.ArgModifier:
			cfg.Modifier = a.Modifier
		case annotation.ArgName:
			if level == FieldLevel {
				cfg.NameOverride = a.Value
			}
		case annotation.ArgIncludes:
			if level == RecordLevel {
				cfg.Includes = a.Names
			}
		case annotation.ArgExcludes:
			if level == RecordLevel {
				cfg.Excludes = a.Names
			}
		case annotation.ArgIncludePublic:
			if level == RecordLevel {
				cfg.IncludePublic = true
			}
		}
	}
	return cfg
}

// ResolveConstructor 折叠构造函数参数
func ResolveConstructor(args []annotation.Argument) ConstructorConfig {
	cfg := DefaultConstructorConfig()
	for _, arg := range args {
		switch a := arg.(type) {
		case annotation.ArgCtorName:
			cfg.Name = a.Value
		case annotation.ArgVisibility:
			cfg.Visibility = a.Visibility
		}
	}
	return cfg
}

// classify 识别注解的全部参数，无参数时返回 nil
func classify(domain annotation.Domain, ann annotation.Annotation) ([]annotation.Argument, error) {
	if len(ann.Args) == 0 {
		return nil, nil
	}
	return annotation.ClassifyAll(domain, ann.Name, ann.Args)
}
