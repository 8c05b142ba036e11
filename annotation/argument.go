package annotation

import "strings"

// Domain 参数所属的领域
type Domain int

const (
	DomainAccessor Domain = iota
	DomainConstructor
)

func (d Domain) String() string {
	switch d {
	case DomainAccessor:
		return "accessor"
	case DomainConstructor:
		return "constructor"
	default:
		return "unknown"
	}
}

// Modifier 访问器的自身访问方式
type Modifier int

const (
	ModifierRef Modifier = iota // 默认
	ModifierMove
	ModifierMutRef
)

func (m Modifier) String() string {
	switch m {
	case ModifierMove:
		return "move"
	case ModifierMutRef:
		return "mut ref"
	default:
		return "ref"
	}
}

// VisibilityKind 构造函数可见性
type VisibilityKind int

const (
	Public VisibilityKind = iota
	PublicScoped
	Private
)

// Visibility 可见性，PublicScoped 时 Path 原样保存 `pub(<path>)` 中的路径
type Visibility struct {
	Kind VisibilityKind
	Path string
}

func (v Visibility) String() string {
	switch v.Kind {
	case PublicScoped:
		return "pub(" + v.Path + ")"
	case Private:
		return "private"
	default:
		return "pub"
	}
}

// Exported 是否渲染为导出符号
func (v Visibility) Exported() bool {
	return v.Kind != Private
}

// ParseVisibility 解析 "pub"、"private"、"pub(<path>)"
func ParseVisibility(s string) (Visibility, bool) {
	switch {
	case s == "pub":
		return Visibility{Kind: Public}, true
	case s == "private":
		return Visibility{Kind: Private}, true
	case strings.HasPrefix(s, "pub(") && strings.HasSuffix(s, ")"):
		return Visibility{Kind: PublicScoped, Path: s[len("pub(") : len(s)-1]}, true
	}
	return Visibility{}, false
}

// Argument 已分类的注解参数，每个变体只属于一个领域
type Argument interface {
	Domain() Domain
	argument()
}

// 访问器领域
type (
	ArgIncludes      struct{ Names []string }
	ArgExcludes      struct{ Names []string }
	ArgPrefix        struct{ Value string }
	ArgName          struct{ Value string }
	ArgModifier      struct{ Modifier Modifier }
	ArgIncludePublic struct{}
)

// 构造函数领域
type (
	ArgCtorName   struct{ Value string }
	ArgVisibility struct{ Visibility Visibility }
)

func (ArgIncludes) Domain() Domain      { return DomainAccessor }
func (ArgExcludes) Domain() Domain      { return DomainAccessor }
func (ArgPrefix) Domain() Domain        { return DomainAccessor }
func (ArgName) Domain() Domain          { return DomainAccessor }
func (ArgModifier) Domain() Domain      { return DomainAccessor }
func (ArgIncludePublic) Domain() Domain { return DomainAccessor }
func (ArgCtorName) Domain() Domain      { return DomainConstructor }
func (ArgVisibility) Domain() Domain    { return DomainConstructor }

func (ArgIncludes) argument()      {}
func (ArgExcludes) argument()      {}
func (ArgPrefix) argument()        {}
func (ArgName) argument()          {}
func (ArgModifier) argument()      {}
func (ArgIncludePublic) argument() {}
func (ArgCtorName) argument()      {}
func (ArgVisibility) argument()    {}
