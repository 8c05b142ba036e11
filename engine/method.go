package engine

import "github.com/donutnomad/trlgen/annotation"

// MethodKind 生成方法的种类
type MethodKind int

const (
	KindGetter MethodKind = iota + 1
	KindSetter
	KindConstructor
)

func (k MethodKind) String() string {
	switch k {
	case KindGetter:
		return "getter"
	case KindSetter:
		return "setter"
	case KindConstructor:
		return "constructor"
	default:
		return "unknown"
	}
}

// SelfMode 方法访问自身的方式
type SelfMode int

const (
	SelfNone   SelfMode = iota // 无接收者，如构造函数
	SelfValue                  // 按值
	SelfRef                    // 只读引用
	SelfMutRef                 // 可变引用
)

func (m SelfMode) String() string {
	switch m {
	case SelfValue:
		return "self"
	case SelfRef:
		return "&self"
	case SelfMutRef:
		return "&mut self"
	default:
		return ""
	}
}

// selfModeOf 修饰符对应的访问方式
func selfModeOf(m annotation.Modifier) SelfMode {
	switch m {
	case annotation.ModifierMove:
		return SelfValue
	case annotation.ModifierMutRef:
		return SelfMutRef
	default:
		return SelfRef
	}
}

// Param 方法参数
type Param struct {
	Name string
	Type string
}

// ReturnShape 返回值形态
type ReturnShape struct {
	Type     string              // 基础类型
	Modifier annotation.Modifier // Move 不调整，Ref 为引用，MutRef 为可变引用
	Record   bool                // 返回记录自身类型（构造函数）
}

// BodyKind 方法体种类
type BodyKind int

const (
	BodyRead      BodyKind = iota + 1 // 读取字段
	BodyAssign                        // 将参数赋值给字段
	BodyConstruct                     // 由参数构造记录
)

// Assignment 字段 <- 参数
type Assignment struct {
	Field string
	Param string
}

// Body 方法体描述
type Body struct {
	Kind    BodyKind
	Field   string       // BodyRead / BodyAssign 的目标字段
	Access  SelfMode     // BodyRead 读取字段时的访问方式
	Param   string       // BodyAssign 的参数名
	Assigns []Assignment // BodyConstruct 的字段赋值，声明顺序
}

// GeneratedMethod 一个生成的方法描述，创建后不再修改
type GeneratedMethod struct {
	Kind       MethodKind
	Name       string
	Visibility annotation.Visibility
	Self       SelfMode
	Params     []Param
	Returns    *ReturnShape // nil 表示无返回值
	Body       Body
	Field      string // 来源字段，构造函数为空
	Annotation string // 来源注解名
}
