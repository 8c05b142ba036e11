package render

import (
	"fmt"
	"strings"

	"github.com/donutnomad/gg"

	"github.com/donutnomad/trlgen/annotation"
	"github.com/donutnomad/trlgen/engine"
)

// Render 将一个记录的方法写入 gg 定义。
// imports 为源文件的导入：限定符 -> 导入路径，字段类型中用到的包按源文件中的限定符导入。
func Render(gen *gg.Generator, rec *engine.Record, methods []engine.GeneratedMethod, imports map[string]string) ([]Symbol, error) {
	symbols, err := Plan(rec, methods)
	if err != nil {
		return nil, err
	}
	if len(symbols) == 0 {
		return nil, nil
	}

	for _, q := range usedQualifiers(symbols) {
		if path, ok := imports[q]; ok {
			gen.PAlias(path, q)
		}
	}

	group := gen.Body()
	for _, sym := range symbols {
		group.AddLine()
		group.Append(gg.LineComment("%s", docComment(sym)))

		fn := group.NewFunction(sym.GoName)
		if sym.Receiver != "" {
			fn.WithReceiver(sym.Receiver, sym.RecvType)
		}
		for _, p := range sym.Params {
			fn.AddParameter(p.Name, p.Type)
		}
		if sym.Result != "" {
			fn.AddResult("", sym.Result)
		}
		fn.AddBody(bodyOf(sym)...)
	}

	return symbols, nil
}

func bodyOf(sym Symbol) []any {
	m := sym.Method
	switch m.Body.Kind {
	case engine.BodyRead:
		if m.Body.Access == engine.SelfMutRef {
			return []any{gg.Return(gg.S("&%s.%s", sym.Receiver, m.Body.Field))}
		}
		return []any{gg.Return(gg.S("%s.%s", sym.Receiver, m.Body.Field))}

	case engine.BodyAssign:
		return []any{gg.S("%s.%s = %s", sym.Receiver, m.Body.Field, m.Body.Param)}

	case engine.BodyConstruct:
		assigns := make([]string, len(m.Body.Assigns))
		for i, a := range m.Body.Assigns {
			assigns[i] = fmt.Sprintf("%s: %s", a.Field, a.Param)
		}
		return []any{gg.Return(gg.S("&%s{%s}", sym.Record, strings.Join(assigns, ", ")))}
	}
	return nil
}

func docComment(sym Symbol) string {
	m := sym.Method
	switch m.Kind {
	case engine.KindGetter:
		if m.Returns != nil && m.Returns.Modifier == annotation.ModifierMutRef {
			return fmt.Sprintf("%s 返回 %s 的指针", sym.GoName, m.Field)
		}
		return fmt.Sprintf("%s 返回 %s", sym.GoName, m.Field)
	case engine.KindSetter:
		return fmt.Sprintf("%s 设置 %s", sym.GoName, m.Field)
	default:
		if m.Visibility.Kind == annotation.PublicScoped {
			return fmt.Sprintf("%s 创建 %s（可见范围: %s）", sym.GoName, sym.Record, m.Visibility.Path)
		}
		return fmt.Sprintf("%s 创建 %s", sym.GoName, sym.Record)
	}
}

// usedQualifiers 按出现顺序收集签名中引用的包限定符
func usedQualifiers(symbols []Symbol) []string {
	var quals []string
	seen := make(map[string]bool)
	add := func(typ string) {
		for _, q := range typeQualifiers(typ) {
			if !seen[q] {
				seen[q] = true
				quals = append(quals, q)
			}
		}
	}
	for _, sym := range symbols {
		for _, p := range sym.Params {
			add(p.Type)
		}
		if sym.Result != "" {
			add(sym.Result)
		}
	}
	return quals
}
