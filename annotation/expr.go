package annotation

import (
	"strconv"
	"strings"
	"text/scanner"
)

// Expr 是注解参数列表中的一个通用表达式，尚未按领域分类。
// 由 Tokenize 从 `@name(...)` 的括号内容中产生，再交给 Classify 识别。
type Expr interface {
	Pos() scanner.Position
	String() string
	expr()
}

// Ident 单个裸标识符，如 `pub`、`get_`
type Ident struct {
	Name     string
	Position scanner.Position
}

// Phrase 连续的多个标识符，如 `mut ref`
type Phrase struct {
	Words    []string
	Position scanner.Position
}

// StringLit 字符串字面量，Value 为去掉引号后的值
type StringLit struct {
	Value    string
	Raw      bool // 反引号字符串
	Position scanner.Position
}

// List 方括号列表，如 `[id, name]`
type List struct {
	Elems    []Expr
	Position scanner.Position
}

// Assign 键值对 `key = value`
type Assign struct {
	Key      string
	Value    Expr
	Position scanner.Position
}

// Literal 其他无法归类的记号序列（数字、带点路径等），保留原始文本
type Literal struct {
	Text     string
	Position scanner.Position
}

func (e Ident) Pos() scanner.Position     { return e.Position }
func (e Phrase) Pos() scanner.Position    { return e.Position }
func (e StringLit) Pos() scanner.Position { return e.Position }
func (e List) Pos() scanner.Position      { return e.Position }
func (e Assign) Pos() scanner.Position    { return e.Position }
func (e Literal) Pos() scanner.Position   { return e.Position }

func (Ident) expr()     {}
func (Phrase) expr()    {}
func (StringLit) expr() {}
func (List) expr()      {}
func (Assign) expr()    {}
func (Literal) expr()   {}

func (e Ident) String() string  { return e.Name }
func (e Phrase) String() string { return strings.Join(e.Words, " ") }

func (e StringLit) String() string {
	if e.Raw {
		return "`" + e.Value + "`"
	}
	return strconv.Quote(e.Value)
}

func (e List) String() string {
	parts := make([]string, len(e.Elems))
	for i, el := range e.Elems {
		parts[i] = el.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (e Assign) String() string {
	if e.Value == nil {
		return e.Key + "="
	}
	return e.Key + "=" + e.Value.String()
}

func (e Literal) String() string { return e.Text }
