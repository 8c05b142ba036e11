// Package render 将引擎生成的方法描述渲染为 Go 代码（gg 定义）。
package render

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"strings"

	"github.com/samber/lo"

	"github.com/donutnomad/trlgen/annotation"
	"github.com/donutnomad/trlgen/engine"
	"github.com/donutnomad/trlgen/internal/utils"
)

// ErrNameConflict 生成的方法名与字段或其他方法重名
var ErrNameConflict = errors.New("方法名冲突")

// Symbol 一个方法在 Go 中的落地形态
type Symbol struct {
	Method     engine.GeneratedMethod
	Record     string
	GoName     string // Go 中的函数/方法名
	Receiver   string // 接收者变量名，构造函数为空
	RecvType   string // 接收者类型，如 "*User"
	Params     []engine.Param
	Result     string // 返回类型，空表示无返回值
	Signature  string
	Visibility string
}

// Plan 计算每个方法的 Go 名称与签名，并检查重名。
// 方法不能与字段同名，也不能彼此同名；构造函数是包级函数，只与其他构造函数比较。
func Plan(rec *engine.Record, methods []engine.GeneratedMethod) ([]Symbol, error) {
	recv := utils.ReceiverName(rec.Name)
	fieldNames := lo.Filter(rec.FieldNames(), func(n string, _ int) bool { return n != "" })

	seenMethods := make(map[string]string) // Go 名称 -> 引擎名称
	seenFuncs := make(map[string]string)

	symbols := make([]Symbol, 0, len(methods))
	for _, m := range methods {
		sym := Symbol{
			Method:     m,
			Record:     rec.Name,
			Params:     m.Params,
			Visibility: m.Visibility.String(),
		}

		switch m.Kind {
		case engine.KindConstructor:
			sym.GoName = constructorName(rec.Name, m)
			sym.Result = "*" + rec.Name
			if prev, ok := seenFuncs[sym.GoName]; ok {
				return nil, fmt.Errorf("%w: %s 的构造函数 %s (%s) 与 %s 重名", ErrNameConflict, rec.Name, sym.GoName, m.Name, prev)
			}
			seenFuncs[sym.GoName] = m.Name

		default:
			sym.GoName = methodName(m)
			sym.Receiver = recv
			sym.RecvType, sym.Result = receiverAndResult(rec.Name, m)
			if lo.Contains(fieldNames, sym.GoName) {
				return nil, fmt.Errorf("%w: %s.%s (%s) 与字段同名", ErrNameConflict, rec.Name, sym.GoName, m.Name)
			}
			if prev, ok := seenMethods[sym.GoName]; ok {
				return nil, fmt.Errorf("%w: %s.%s (%s) 与 %s 重名", ErrNameConflict, rec.Name, sym.GoName, m.Name, prev)
			}
			seenMethods[sym.GoName] = m.Name
		}

		sym.Signature = signature(sym)
		symbols = append(symbols, sym)
	}
	return symbols, nil
}

// methodName 导出可见性使用大驼峰，private 使用小驼峰
func methodName(m engine.GeneratedMethod) string {
	if m.Visibility.Exported() {
		return utils.UpperCamelCase(m.Name)
	}
	return utils.LowerCamelCase(m.Name)
}

// constructorName new -> NewUser，private make -> makeUser
func constructorName(record string, m engine.GeneratedMethod) string {
	suffix := utils.UpperCamelCase(record)
	if m.Visibility.Exported() {
		return utils.UpperCamelCase(m.Name) + suffix
	}
	return utils.LowerCamelCase(m.Name) + suffix
}

// receiverAndResult 按访问方式确定接收者与返回类型
//
//	Move   -> (u User)  返回 T
//	Ref    -> (u *User) 返回 T
//	MutRef -> (u *User) 返回 *T
func receiverAndResult(record string, m engine.GeneratedMethod) (recvType, result string) {
	recvType = "*" + record
	if m.Self == engine.SelfValue {
		recvType = record
	}
	if m.Returns == nil {
		return recvType, ""
	}
	if m.Returns.Modifier == annotation.ModifierMutRef {
		return recvType, "*" + m.Returns.Type
	}
	return recvType, m.Returns.Type
}

func signature(sym Symbol) string {
	var sb strings.Builder
	sb.WriteString("func ")
	if sym.Receiver != "" {
		fmt.Fprintf(&sb, "(%s %s) ", sym.Receiver, sym.RecvType)
	}
	sb.WriteString(sym.GoName)
	sb.WriteString("(")
	for i, p := range sym.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s %s", p.Name, p.Type)
	}
	sb.WriteString(")")
	if sym.Result != "" {
		sb.WriteString(" " + sym.Result)
	}
	return sb.String()
}

// typeQualifiers 返回类型表达式中引用的包限定符，如 map[string]time.Time -> [time]
func typeQualifiers(typ string) []string {
	expr, err := parser.ParseExpr(typ)
	if err != nil {
		return nil
	}
	var quals []string
	ast.Inspect(expr, func(n ast.Node) bool {
		if sel, ok := n.(*ast.SelectorExpr); ok {
			if id, ok := sel.X.(*ast.Ident); ok {
				quals = append(quals, id.Name)
			}
		}
		return true
	})
	if len(quals) == 0 {
		return nil
	}
	return lo.Uniq(quals)
}
