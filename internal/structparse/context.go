package structparse

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"sync"
)

// parsedFile 已解析的源文件
type parsedFile struct {
	file    *ast.File
	imports []ImportInfo
}

// ParseContext 解析上下文，缓存已解析的文件。
// 同一文件中的多个结构体只解析一次 AST，可在多个 goroutine 中共享。
type ParseContext struct {
	mu    sync.Mutex
	files map[string]*parsedFile
}

// NewParseContext 创建解析上下文
func NewParseContext() *ParseContext {
	return &ParseContext{files: make(map[string]*parsedFile)}
}

// load 读取并解析文件，结果缓存
func (c *ParseContext) load(filename string) (*parsedFile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pf, ok := c.files[filename]; ok {
		return pf, nil
	}

	fset := token.NewFileSet()
	node, err := parser.ParseFile(fset, filename, nil, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("解析文件失败: %w", err)
	}

	pf := &parsedFile{file: node, imports: extractImports(node)}
	c.files[filename] = pf
	return pf, nil
}

// Forget 移除文件缓存，文件变更后调用
func (c *ParseContext) Forget(filename string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, filename)
}
