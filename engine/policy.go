package engine

import (
	"fmt"

	"github.com/samber/lo"
)

// FillIncludes 在副本上将空的 includes 展开为全部字段名，原配置不变
func FillIncludes(cfg AccessorConfig, fields []Field) (AccessorConfig, error) {
	cfg = cfg.clone()
	if len(cfg.Includes) > 0 {
		return cfg, nil
	}
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		if !f.Named() {
			return cfg, fmt.Errorf("%w: 第 %d 个字段没有名称", ErrUnsupportedFieldShape, f.Index)
		}
		names = append(names, f.Name)
	}
	cfg.Includes = names
	return cfg, nil
}

// ShouldGenerate 判断字段是否生成访问器，每个字段独立判断。
// 公开字段需要 include_public；字段名须在 includes 中（为空视为全部）且不在 excludes 中。
func ShouldGenerate(cfg AccessorConfig, f Field) bool {
	if f.Public && !cfg.IncludePublic {
		return false
	}
	if len(cfg.Includes) > 0 && !lo.Contains(cfg.Includes, f.Name) {
		return false
	}
	return !lo.Contains(cfg.Excludes, f.Name)
}
