package structparse

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"github.com/donutnomad/trlgen/annotation"
	"github.com/donutnomad/trlgen/engine"
)

// ParseRecord 解析指定文件中的结构体（包级便捷函数）
func ParseRecord(filename, structName string) (*Result, error) {
	return NewParseContext().ParseRecord(filename, structName)
}

// ParseRecord 解析指定文件中的结构体（ParseContext 方法）
func (c *ParseContext) ParseRecord(filename, structName string) (*Result, error) {
	pf, err := c.load(filename)
	if err != nil {
		return nil, err
	}

	decl, spec, st := findStruct(pf.file, structName)
	if st == nil {
		return nil, fmt.Errorf("%w: %s", ErrStructNotFound, structName)
	}
	if spec.TypeParams != nil && spec.TypeParams.NumFields() > 0 {
		return nil, fmt.Errorf("%w: %s", ErrGenericStruct, structName)
	}

	rec := &engine.Record{
		Name:    structName,
		Package: pf.file.Name.Name,
	}

	rec.Annotations, err = annotation.Parse(structDoc(decl, spec), engine.RecordVocabulary()...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", structName, err)
	}

	rec.Fields, err = parseFields(structName, st.Fields)
	if err != nil {
		return nil, err
	}

	return &Result{
		Record:      rec,
		PackageName: pf.file.Name.Name,
		FilePath:    filename,
		Imports:     importMap(pf.imports),
	}, nil
}

// findStruct 查找目标结构体的声明
func findStruct(file *ast.File, structName string) (*ast.GenDecl, *ast.TypeSpec, *ast.StructType) {
	for _, d := range file.Decls {
		genDecl, ok := d.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}
		for _, spec := range genDecl.Specs {
			typeSpec, ok := spec.(*ast.TypeSpec)
			if !ok || typeSpec.Name.Name != structName {
				continue
			}
			if st, ok := typeSpec.Type.(*ast.StructType); ok {
				return genDecl, typeSpec, st
			}
		}
	}
	return nil, nil, nil
}

// structDoc 结构体的文档注释。
// 非分组声明的注释挂在 GenDecl 上，分组声明中的注释挂在 TypeSpec 上。
func structDoc(decl *ast.GenDecl, spec *ast.TypeSpec) string {
	var parts []string
	if !decl.Lparen.IsValid() && decl.Doc != nil {
		parts = append(parts, commentText(decl.Doc))
	}
	if spec.Doc != nil {
		parts = append(parts, commentText(spec.Doc))
	}
	return strings.Join(parts, "\n")
}

// parseFields 按声明顺序展开字段
func parseFields(structName string, list *ast.FieldList) ([]engine.Field, error) {
	var fields []engine.Field
	for _, field := range list.List {
		anns, err := annotation.Parse(fieldDoc(field), engine.FieldVocabulary()...)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", structName, fieldLabel(field), err)
		}

		typ := types.ExprString(field.Type)

		if len(field.Names) == 0 {
			// 嵌入字段
			name := embeddedName(field.Type)
			fields = append(fields, engine.Field{
				Name:        name,
				Type:        typ,
				Public:      ast.IsExported(name),
				Index:       len(fields),
				Annotations: anns,
			})
			continue
		}

		for _, ident := range field.Names {
			name := ident.Name
			if name == "_" {
				name = ""
			}
			fields = append(fields, engine.Field{
				Name:        name,
				Type:        typ,
				Public:      ast.IsExported(name),
				Index:       len(fields),
				Annotations: anns,
			})
		}
	}
	return fields, nil
}

func fieldDoc(field *ast.Field) string {
	var parts []string
	if field.Doc != nil {
		parts = append(parts, commentText(field.Doc))
	}
	if field.Comment != nil {
		parts = append(parts, commentText(field.Comment))
	}
	return strings.Join(parts, "\n")
}

// commentText 保留注释标记的原文，CommentGroup.Text 会丢弃 //go: 一类指令行
func commentText(cg *ast.CommentGroup) string {
	lines := make([]string, len(cg.List))
	for i, c := range cg.List {
		lines[i] = c.Text
	}
	return strings.Join(lines, "\n")
}

// embeddedName 嵌入字段的名称：*pkg.Base -> Base，Base[T] -> Base
func embeddedName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return embeddedName(t.X)
	case *ast.SelectorExpr:
		return t.Sel.Name
	case *ast.IndexExpr:
		return embeddedName(t.X)
	case *ast.IndexListExpr:
		return embeddedName(t.X)
	}
	return ""
}

func fieldLabel(field *ast.Field) string {
	if len(field.Names) == 0 {
		return embeddedName(field.Type)
	}
	names := make([]string, len(field.Names))
	for i, n := range field.Names {
		names[i] = n.Name
	}
	return strings.Join(names, ",")
}
