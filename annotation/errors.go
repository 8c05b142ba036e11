package annotation

import (
	"errors"
	"fmt"
	"text/scanner"
)

var (
	// ErrUnknownArgumentKey 键不属于当前领域
	ErrUnknownArgumentKey = errors.New("未知的参数键")
	// ErrMalformedArgumentValue 值的形态与键不匹配
	ErrMalformedArgumentValue = errors.New("参数值格式错误")
	// ErrUnrecognizedToken 没有任何规则能识别该参数
	ErrUnrecognizedToken = errors.New("无法识别的参数")
)

// ArgError 描述一个注解参数错误，Kind 为上面的哨兵错误之一
type ArgError struct {
	Kind       error
	Annotation string // 所属注解名称，可能为空
	Arg        string // 出错参数的原始文本
	Pos        scanner.Position
	Msg        string
}

func (e *ArgError) Error() string {
	msg := e.Kind.Error()
	if e.Annotation != "" {
		msg = fmt.Sprintf("@%s: %s", e.Annotation, msg)
	}
	if e.Arg != "" {
		msg += fmt.Sprintf(" %q", e.Arg)
	}
	if e.Pos.IsValid() {
		msg += fmt.Sprintf(" (列 %d)", e.Pos.Column)
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	return msg
}

func (e *ArgError) Unwrap() error {
	return e.Kind
}

// withAnnotation 为错误补充注解名称
func withAnnotation(err error, name string) error {
	var argErr *ArgError
	if errors.As(err, &argErr) && argErr.Annotation == "" {
		argErr.Annotation = name
	}
	return err
}
