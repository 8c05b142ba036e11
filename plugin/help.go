package plugin

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Exampler 生成器可选实现，提供帮助文本中的用法示例
type Exampler interface {
	Examples() []string
}

// FormatHelpText 为所有注册的生成器生成帮助文本
func FormatHelpText(registry *Registry) string {
	generators := registry.Generators()
	if len(generators) == 0 {
		return "  (暂无已注册的生成器)\n"
	}
	slices.SortFunc(generators, func(a, b Generator) int {
		return strings.Compare(a.Name(), b.Name())
	})

	var sb strings.Builder

	for _, gen := range generators {
		vocab := gen.Vocabulary()
		sb.WriteString(fmt.Sprintf("  %s - @%s\n", gen.Name(), strings.Join(vocab.All(), ", @")))

		paramDefs := gen.ParamDefs()
		width := 0
		for _, param := range paramDefs {
			width = max(width, runewidth.StringWidth(param.Name))
		}

		for _, ann := range vocab.All() {
			level, _ := vocab.LevelOf(ann)
			sb.WriteString(fmt.Sprintf("    @%s (%s)\n", ann, level))
			for _, param := range paramDefs {
				if !param.AppliesTo(ann) {
					continue
				}
				sb.WriteString("      ")
				sb.WriteString(runewidth.FillRight(param.Name, width))
				sb.WriteString("  ")
				sb.WriteString(param.Description)
				if param.Default != "" {
					sb.WriteString(fmt.Sprintf(" [默认: %s]", param.Default))
				}
				sb.WriteString("\n")
			}
		}

		// 输出路径来自包级指令或命令行参数
		sb.WriteString(fmt.Sprintf("    输出: 默认 %s，可用包级指令覆盖:\n", gen.DefaultOutput()))
		sb.WriteString(fmt.Sprintf("      //go:trlgen: plugin:%s -output `$FILE_accessors`\n", strings.ToLower(gen.Name())))

		if ex, ok := gen.(Exampler); ok {
			sb.WriteString("    示例:\n")
			for _, line := range ex.Examples() {
				sb.WriteString("      " + line + "\n")
			}
		}

		sb.WriteString("\n")
	}

	return sb.String()
}
