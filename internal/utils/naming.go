package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/lo"
)

// commonInitialisms 常见首字母缩略词列表，与 golint 保持一致
var commonInitialisms = []string{
	"ACL", "API", "ASCII", "CPU", "CSS", "DNS", "EOF", "GUID", "HTML", "HTTP", "HTTPS",
	"ID", "IP", "JSON", "LHS", "QPS", "RAM", "RHS", "RPC", "SLA", "SMTP",
	"SQL", "SSH", "TCP", "TLS", "TTL", "UDP", "UID", "UI", "UUID", "URI", "URL", "UTF8", "VM",
	"XML", "XMPP", "XSRF", "XSS",
}

// UpperCamelCase 将下划线命名转换为导出的驼峰命名，缩略词整体大写
//
//	get_id      -> GetID
//	set_name    -> SetName
//	userID      -> UserID
//	new         -> New
func UpperCamelCase(name string) string {
	parts := splitWords(name)
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(titleWord(p))
	}
	return sb.String()
}

// LowerCamelCase 将下划线命名转换为非导出的驼峰命名
//
//	make        -> make
//	id_value    -> idValue
//	ID          -> id
//	URL_path    -> urlPath
func LowerCamelCase(name string) string {
	parts := splitWords(name)
	if len(parts) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(lowerWord(parts[0]))
	for _, p := range parts[1:] {
		sb.WriteString(titleWord(p))
	}
	return sb.String()
}

// splitWords 按下划线切分，忽略空段
func splitWords(name string) []string {
	return lo.Filter(strings.Split(name, "_"), func(s string, _ int) bool {
		return s != ""
	})
}

func titleWord(w string) string {
	if upper := strings.ToUpper(w); lo.Contains(commonInitialisms, upper) {
		return upper
	}
	r, size := utf8.DecodeRuneInString(w)
	return string(unicode.ToUpper(r)) + w[size:]
}

func lowerWord(w string) string {
	if upper := strings.ToUpper(w); lo.Contains(commonInitialisms, upper) {
		return strings.ToLower(w)
	}
	r, size := utf8.DecodeRuneInString(w)
	return string(unicode.ToLower(r)) + w[size:]
}

// ReceiverName 返回接收者变量名：类型名首字母小写
func ReceiverName(typeName string) string {
	if typeName == "" {
		return "r"
	}
	r, _ := utf8.DecodeRuneInString(typeName)
	return string(unicode.ToLower(r))
}
