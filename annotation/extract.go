package annotation

import (
	"fmt"
	"strings"
	"text/scanner"

	"github.com/samber/lo"
)

// Annotation 从注释中提取出的一个注解
type Annotation struct {
	Name    string // 注解名称，如 "getters"
	Args    []Expr // 括号内的参数，尚未分类
	HasArgs bool   // 是否带括号
	Raw     string // 原始注解文本
	Line    int    // 在注释中的行号，从 1 开始
}

func (a Annotation) String() string {
	return a.Raw
}

// Parse 从注释文本中提取注解 `@name` 或 `@name(args)`。
// 传入 vocabulary 时只保留其中的名称，其余 `@xxx` 原样忽略（例如邮箱、其他工具的注解）。
// 参数必须在同一行内闭合，引号内的括号不参与配对。
func Parse(comment string, vocabulary ...string) ([]Annotation, error) {
	var result []Annotation

	lines := strings.Split(comment, "\n")
	for i, line := range lines {
		line = trimCommentMarkers(line)
		if !strings.Contains(line, "@") {
			continue
		}

		anns, err := parseLine(line, i+1, vocabulary)
		if err != nil {
			return nil, err
		}
		result = append(result, anns...)
	}
	return result, nil
}

func trimCommentMarkers(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "//")
	line = strings.TrimPrefix(line, "/*")
	line = strings.TrimSuffix(line, "*/")
	line = strings.TrimPrefix(strings.TrimSpace(line), "*")
	return strings.TrimSpace(line)
}

func parseLine(line string, lineNo int, vocabulary []string) ([]Annotation, error) {
	var result []Annotation

	for i := 0; i < len(line); i++ {
		if line[i] != '@' {
			continue
		}
		if i > 0 && isIdentChar(line[i-1]) {
			continue
		}

		start := i
		j := i + 1
		for j < len(line) && isIdentChar(line[j]) {
			j++
		}
		name := line[i+1 : j]
		if name == "" {
			continue
		}
		if len(vocabulary) > 0 && !lo.Contains(vocabulary, name) {
			i = j - 1
			continue
		}

		ann := Annotation{Name: name, Line: lineNo}
		if j < len(line) && line[j] == '(' {
			end, err := closingParen(line, j)
			if err != nil {
				return nil, &ArgError{
					Kind:       ErrUnrecognizedToken,
					Annotation: name,
					Arg:        line[start:],
					Pos:        scanner.Position{Line: lineNo, Column: j + 1},
					Msg:        err.Error(),
				}
			}
			args, err := Tokenize(line[j+1 : end])
			if err != nil {
				return nil, withAnnotation(err, name)
			}
			ann.Args = args
			ann.HasArgs = true
			j = end + 1
		}
		ann.Raw = line[start:j]
		result = append(result, ann)
		i = j - 1
	}
	return result, nil
}

// closingParen 返回与 open 处 '(' 配对的 ')' 下标
func closingParen(line string, open int) (int, error) {
	depth := 0
	var quote byte
	for k := open; k < len(line); k++ {
		c := line[k]
		if quote != 0 {
			switch {
			case c == '\\' && quote == '"':
				k++
			case c == quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '`':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return k, nil
			}
		}
	}
	if quote != 0 {
		return 0, fmt.Errorf("字符串未闭合")
	}
	return 0, fmt.Errorf("缺少 ')'")
}

func isIdentChar(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}
