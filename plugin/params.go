package plugin

import (
	"fmt"
	"reflect"
	"strings"
)

// ParseParams 从结构体的 param tag 解析参数定义，并检查 tag 中的注解名属于 vocab。
// 支持的键: name, default, description, annotations（以 | 分隔）。
// 值中的逗号写作 \,
//
// 示例:
//
//	type Params struct {
//	    Prefix string `param:"name=prefix,annotations=getters|get,description=方法名前缀"`
//	    Name   string `param:"name=name,default=new,annotations=constructor,description=构造函数名"`
//	}
//
//	params, err := plugin.ParseParams(Params{}, vocab)
func ParseParams(proto any, vocab Vocabulary) ([]ParamDef, error) {
	typ := reflect.TypeOf(proto)
	if typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("参数定义必须是结构体，得到 %v", typ)
	}

	var params []ParamDef
	for _, field := range reflect.VisibleFields(typ) {
		tag, ok := field.Tag.Lookup("param")
		if !ok {
			continue
		}
		def, err := parseParamTag(tag)
		if err != nil {
			return nil, fmt.Errorf("字段 %s: %w", field.Name, err)
		}
		for _, ann := range def.Annotations {
			if _, ok := vocab.LevelOf(ann); !ok {
				return nil, fmt.Errorf("字段 %s: 参数 %s 引用了未声明的注解 @%s", field.Name, def.Name, ann)
			}
		}
		params = append(params, def)
	}
	return params, nil
}

// parseParamTag 解析单个 param tag
func parseParamTag(tag string) (ParamDef, error) {
	var def ParamDef
	for _, pair := range splitEscaped(tag, ',') {
		key, value, _ := strings.Cut(pair, "=")
		switch strings.TrimSpace(key) {
		case "name":
			def.Name = value
		case "default":
			def.Default = value
		case "description":
			def.Description = value
		case "annotations":
			if value != "" {
				def.Annotations = strings.Split(value, "|")
			}
		case "":
		default:
			return ParamDef{}, fmt.Errorf("未知的 tag 键 %q", key)
		}
	}
	if def.Name == "" {
		return ParamDef{}, fmt.Errorf("param tag 缺少 name: %q", tag)
	}
	return def, nil
}

// splitEscaped 按 sep 切分，\ 转义下一个字符
func splitEscaped(s string, sep byte) []string {
	var (
		parts   []string
		current strings.Builder
	)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\' && i+1 < len(s):
			i++
			current.WriteByte(s[i])
		case c == sep:
			parts = append(parts, current.String())
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}
	return append(parts, current.String())
}
