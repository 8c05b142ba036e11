package structparse

import (
	"go/ast"
	"regexp"
	"strconv"
	"strings"
)

var (
	majorVersionElem   = regexp.MustCompile(`^v[0-9]+$`)
	majorVersionSuffix = regexp.MustCompile(`\.v[0-9]+$`)
)

// extractImports 提取文件中的导入信息，跳过 _ 和 . 导入
func extractImports(file *ast.File) []ImportInfo {
	var imports []ImportInfo
	for _, imp := range file.Imports {
		importPath, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}

		info := ImportInfo{ImportPath: importPath}
		if imp.Name != nil {
			if imp.Name.Name == "_" || imp.Name.Name == "." {
				continue
			}
			// 有显式别名
			info.Alias = imp.Name.Name
			info.Qualifier = imp.Name.Name
		} else {
			info.Qualifier = guessPackageName(importPath)
		}
		imports = append(imports, info)
	}
	return imports
}

// importMap 限定符 -> 导入路径
func importMap(imports []ImportInfo) map[string]string {
	m := make(map[string]string, len(imports))
	for _, imp := range imports {
		m[imp.Qualifier] = imp.ImportPath
	}
	return m
}

// guessPackageName 根据导入路径推断包名
//
//	github.com/foo/bar/v2       -> bar
//	gopkg.in/yaml.v3            -> yaml
//	github.com/mattn/go-sqlite3 -> sqlite3
func guessPackageName(importPath string) string {
	parts := strings.Split(importPath, "/")
	name := parts[len(parts)-1]
	if majorVersionElem.MatchString(name) && len(parts) > 1 {
		name = parts[len(parts)-2]
	}
	name = majorVersionSuffix.ReplaceAllString(name, "")
	name = strings.TrimPrefix(name, "go-")
	return strings.ReplaceAll(name, "-", "_")
}
