package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/tools/imports"
)

// FormatSource 使用 goimports 规则格式化源码，同时完成语法检查
func FormatSource(filename string, src []byte) ([]byte, error) {
	out, err := imports.Process(filename, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: false,
	})
	if err != nil {
		return nil, fmt.Errorf("格式化 %s 失败: %w", filename, err)
	}
	return out, nil
}

// WriteFile 写入文件，目录不存在时自动创建
func WriteFile(filename string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}
	return os.WriteFile(filename, data, 0644)
}
