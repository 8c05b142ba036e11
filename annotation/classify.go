package annotation

import "fmt"

// 可识别的键
const (
	KeyIncludes   = "includes"
	KeyExcludes   = "excludes"
	KeyPrefix     = "prefix"
	KeyName       = "name"
	KeyVisibility = "visibility"
)

// 各领域允许的键
var domainKeys = map[Domain]map[string]bool{
	DomainAccessor: {
		KeyIncludes: true,
		KeyExcludes: true,
		KeyPrefix:   true,
		KeyName:     true,
	},
	DomainConstructor: {
		KeyName:       true,
		KeyVisibility: true,
	},
}

// Classify 将一个通用表达式识别为某个领域的 Argument。
// 识别顺序：修饰符关键字 -> `pub` -> `key = value`，先匹配者优先。
func Classify(domain Domain, e Expr) (Argument, error) {
	if m, ok := modifierOf(e); ok {
		if domain != DomainAccessor {
			return nil, unrecognized(e)
		}
		return ArgModifier{Modifier: m}, nil
	}

	if id, ok := e.(Ident); ok && id.Name == "pub" {
		if domain != DomainAccessor {
			return nil, unrecognized(e)
		}
		return ArgIncludePublic{}, nil
	}

	if kv, ok := e.(Assign); ok {
		return classifyAssign(domain, kv)
	}

	return nil, unrecognized(e)
}

// ClassifyAll 按源码顺序识别注解的全部参数，遇到第一个错误即返回
func ClassifyAll(domain Domain, annotation string, exprs []Expr) ([]Argument, error) {
	args := make([]Argument, 0, len(exprs))
	for _, e := range exprs {
		arg, err := Classify(domain, e)
		if err != nil {
			return nil, withAnnotation(err, annotation)
		}
		args = append(args, arg)
	}
	return args, nil
}

func modifierOf(e Expr) (Modifier, bool) {
	switch v := e.(type) {
	case Ident:
		switch v.Name {
		case "ref":
			return ModifierRef, true
		case "move":
			return ModifierMove, true
		}
	case Phrase:
		if len(v.Words) == 2 && v.Words[0] == "mut" && v.Words[1] == "ref" {
			return ModifierMutRef, true
		}
	}
	return 0, false
}

func classifyAssign(domain Domain, kv Assign) (Argument, error) {
	if !domainKeys[domain][kv.Key] {
		return nil, &ArgError{
			Kind: ErrUnknownArgumentKey,
			Arg:  kv.String(),
			Pos:  kv.Pos(),
			Msg:  fmt.Sprintf("%s 领域不支持 %s", domain, kv.Key),
		}
	}

	switch kv.Key {
	case KeyIncludes, KeyExcludes:
		list, ok := kv.Value.(List)
		if !ok {
			return nil, malformed(kv, "需要标识符列表，如 [id, name]")
		}
		names := identNames(list)
		if kv.Key == KeyIncludes {
			return ArgIncludes{Names: names}, nil
		}
		return ArgExcludes{Names: names}, nil

	case KeyPrefix, KeyName:
		id, ok := kv.Value.(Ident)
		if !ok {
			return nil, malformed(kv, "需要单个标识符")
		}
		switch {
		case kv.Key == KeyPrefix:
			return ArgPrefix{Value: id.Name}, nil
		case domain == DomainConstructor:
			return ArgCtorName{Value: id.Name}, nil
		default:
			return ArgName{Value: id.Name}, nil
		}

	default: // KeyVisibility
		lit, ok := kv.Value.(StringLit)
		if !ok {
			return nil, malformed(kv, `需要字符串 "pub"、"private" 或 "pub(<path>)"`)
		}
		vis, ok := ParseVisibility(lit.Value)
		if !ok {
			return nil, malformed(kv, `可见性只能是 "pub"、"private" 或 "pub(<path>)"`)
		}
		return ArgVisibility{Visibility: vis}, nil
	}
}

// identNames 取列表中的标识符，非标识符元素记为空字符串且保留其位置
func identNames(list List) []string {
	names := make([]string, len(list.Elems))
	for i, el := range list.Elems {
		if id, ok := el.(Ident); ok {
			names[i] = id.Name
		}
	}
	return names
}

func malformed(kv Assign, msg string) error {
	return &ArgError{
		Kind: ErrMalformedArgumentValue,
		Arg:  kv.String(),
		Pos:  kv.Pos(),
		Msg:  msg,
	}
}

func unrecognized(e Expr) error {
	return &ArgError{
		Kind: ErrUnrecognizedToken,
		Arg:  e.String(),
		Pos:  e.Pos(),
	}
}
