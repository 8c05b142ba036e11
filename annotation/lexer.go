package annotation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/scanner"
)

// token 一个词法记号
type token struct {
	tok  rune
	text string
	pos  scanner.Position
}

// Tokenize 将注解括号内的参数文本切分为通用表达式序列。
// 顶层按逗号分隔，允许末尾多一个逗号；括号必须配对。
//
// 示例:
//
//	includes=[id, name], mut ref, prefix=get_
//	-> Assign{includes, List{id, name}}, Phrase{mut ref}, Assign{prefix, Ident{get_}}
func Tokenize(src string) ([]Expr, error) {
	tokens, err := scan(src)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, nil
	}

	items, err := splitTopLevel(tokens, ',')
	if err != nil {
		return nil, err
	}

	exprs := make([]Expr, 0, len(items))
	for i, item := range items {
		if len(item) == 0 {
			// 仅允许末尾逗号
			if i == len(items)-1 && i > 0 {
				continue
			}
			return nil, &ArgError{
				Kind: ErrUnrecognizedToken,
				Arg:  src,
				Msg:  "参数列表中存在空参数",
			}
		}
		e, err := parseItem(item)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

// scan 使用 text/scanner 完成词法切分
func scan(src string) ([]token, error) {
	var (
		s       scanner.Scanner
		scanErr *ArgError
	)
	s.Init(strings.NewReader(src))
	s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats |
		scanner.ScanChars | scanner.ScanStrings | scanner.ScanRawStrings
	s.Error = func(s *scanner.Scanner, msg string) {
		if scanErr == nil {
			scanErr = &ArgError{
				Kind: ErrUnrecognizedToken,
				Arg:  src,
				Pos:  s.Pos(),
				Msg:  msg,
			}
		}
	}

	var tokens []token
	for tok := s.Scan(); tok != scanner.EOF; tok = s.Scan() {
		tokens = append(tokens, token{tok: tok, text: s.TokenText(), pos: s.Position})
	}
	if scanErr != nil {
		return nil, scanErr
	}
	return tokens, nil
}

func isOpen(r rune) bool  { return r == '[' || r == '(' || r == '{' }
func isClose(r rune) bool { return r == ']' || r == ')' || r == '}' }

func closerOf(r rune) rune {
	switch r {
	case '[':
		return ']'
	case '(':
		return ')'
	default:
		return '}'
	}
}

// splitTopLevel 按顶层分隔符切分记号，同时校验括号配对。
// 括号错误出现在某一项的顶层 `=` 之后时，归为值格式错误。
func splitTopLevel(tokens []token, sep rune) ([][]token, error) {
	var (
		items   [][]token
		current []token
		stack   []rune
		inValue bool
	)
	for _, t := range tokens {
		switch {
		case isOpen(t.tok):
			stack = append(stack, closerOf(t.tok))
		case isClose(t.tok):
			if len(stack) == 0 || stack[len(stack)-1] != t.tok {
				return nil, unbalanced(t, inValue)
			}
			stack = stack[:len(stack)-1]
		case t.tok == '=' && len(stack) == 0:
			inValue = true
		case t.tok == sep && len(stack) == 0:
			items = append(items, current)
			current = nil
			inValue = false
			continue
		}
		current = append(current, t)
	}
	if len(stack) > 0 {
		return nil, &ArgError{
			Kind: bracketErrKind(inValue),
			Arg:  joinTokens(current),
			Msg:  fmt.Sprintf("缺少 %q", stack[len(stack)-1]),
		}
	}
	return append(items, current), nil
}

func bracketErrKind(inValue bool) error {
	if inValue {
		return ErrMalformedArgumentValue
	}
	return ErrUnrecognizedToken
}

func unbalanced(t token, inValue bool) error {
	return &ArgError{
		Kind: bracketErrKind(inValue),
		Arg:  t.text,
		Pos:  t.pos,
		Msg:  "括号不匹配",
	}
}

// parseItem 解析一个顶层参数：`key = value` 或单个项
func parseItem(tokens []token) (Expr, error) {
	eq := indexTopLevel(tokens, '=')
	if eq < 0 {
		return parseTerm(tokens)
	}

	left, right := tokens[:eq], tokens[eq+1:]
	if len(left) != 1 || left[0].tok != scanner.Ident {
		return Literal{Text: joinTokens(tokens), Position: tokens[0].pos}, nil
	}

	var value Expr = Literal{Position: tokens[eq].pos}
	if len(right) > 0 {
		v, err := parseTerm(right)
		if err != nil {
			// 等号右侧解析失败是值的形态问题
			var argErr *ArgError
			if errors.As(err, &argErr) {
				argErr.Kind = ErrMalformedArgumentValue
			}
			return nil, err
		}
		value = v
	}
	return Assign{Key: left[0].text, Value: value, Position: left[0].pos}, nil
}

func indexTopLevel(tokens []token, r rune) int {
	depth := 0
	for i, t := range tokens {
		switch {
		case isOpen(t.tok):
			depth++
		case isClose(t.tok):
			depth--
		case t.tok == r && depth == 0:
			return i
		}
	}
	return -1
}

// parseTerm 解析一个值：标识符、短语、字符串、列表，其余归为 Literal
func parseTerm(tokens []token) (Expr, error) {
	pos := tokens[0].pos

	if allIdents(tokens) {
		if len(tokens) == 1 {
			return Ident{Name: tokens[0].text, Position: pos}, nil
		}
		words := make([]string, len(tokens))
		for i, t := range tokens {
			words[i] = t.text
		}
		return Phrase{Words: words, Position: pos}, nil
	}

	if len(tokens) == 1 && (tokens[0].tok == scanner.String || tokens[0].tok == scanner.RawString) {
		v, err := strconv.Unquote(tokens[0].text)
		if err != nil {
			return nil, &ArgError{Kind: ErrUnrecognizedToken, Arg: tokens[0].text, Pos: pos, Msg: err.Error()}
		}
		return StringLit{Value: v, Raw: tokens[0].tok == scanner.RawString, Position: pos}, nil
	}

	if tokens[0].tok == '[' && tokens[len(tokens)-1].tok == ']' && closingIndex(tokens) == len(tokens)-1 {
		return parseList(tokens)
	}

	return Literal{Text: joinTokens(tokens), Position: pos}, nil
}

func parseList(tokens []token) (Expr, error) {
	list := List{Position: tokens[0].pos}
	inner := tokens[1 : len(tokens)-1]
	if len(inner) == 0 {
		return list, nil
	}

	elems, err := splitTopLevel(inner, ',')
	if err != nil {
		return nil, err
	}
	for i, el := range elems {
		if len(el) == 0 {
			if i == len(elems)-1 && i > 0 {
				continue
			}
			return nil, &ArgError{
				Kind: ErrUnrecognizedToken,
				Arg:  joinTokens(tokens),
				Pos:  tokens[0].pos,
				Msg:  "列表中存在空元素",
			}
		}
		e, err := parseTerm(el)
		if err != nil {
			return nil, err
		}
		list.Elems = append(list.Elems, e)
	}
	return list, nil
}

// closingIndex 返回与第一个开括号配对的闭括号下标
func closingIndex(tokens []token) int {
	depth := 0
	for i, t := range tokens {
		switch {
		case isOpen(t.tok):
			depth++
		case isClose(t.tok):
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func allIdents(tokens []token) bool {
	for _, t := range tokens {
		if t.tok != scanner.Ident {
			return false
		}
	}
	return len(tokens) > 0
}

// joinTokens 拼接记号文本，记号之间原有的空白压缩为一个空格
func joinTokens(tokens []token) string {
	var sb strings.Builder
	for i, t := range tokens {
		if i > 0 {
			prev := tokens[i-1]
			if t.pos.Offset > prev.pos.Offset+len(prev.text) {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(t.text)
	}
	return sb.String()
}
