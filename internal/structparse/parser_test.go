package structparse

import (
	"path/filepath"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donutnomad/trlgen/annotation"
	"github.com/donutnomad/trlgen/engine"
)

var recordsFile = filepath.Join("testdata", "records", "user.go")

func annotationNames(anns []annotation.Annotation) []string {
	return lo.Map(anns, func(a annotation.Annotation, _ int) string { return a.Name })
}

// TestParseRecord_User 测试结构体解析
// 场景：记录级注解、字段上方注释和行尾注释中的注解、跨包字段类型
func TestParseRecord_User(t *testing.T) {
	res, err := ParseRecord(recordsFile, "User")
	require.NoError(t, err, "解析结构体失败")

	rec := res.Record
	assert.Equal(t, "User", rec.Name)
	assert.Equal(t, "records", rec.Package)
	assert.Equal(t, "records", res.PackageName)
	assert.Equal(t, recordsFile, res.FilePath)

	assert.Equal(t, []string{"getters", "setters", "constructor"}, annotationNames(rec.Annotations))
	assert.Equal(t, []string{"id", "name", "email", "Phone", "CreatedAt", "balance", "meta"}, rec.FieldNames())

	byName := lo.KeyBy(rec.Fields, func(f engine.Field) string { return f.Name })
	assert.Equal(t, "int64", byName["id"].Type)
	assert.False(t, byName["id"].Public)
	assert.True(t, byName["Phone"].Public)
	assert.Equal(t, "time.Time", byName["CreatedAt"].Type)
	assert.Equal(t, "dec.Decimal", byName["balance"].Type)
	assert.Equal(t, "map[string]*yaml.Node", byName["meta"].Type)
	assert.Equal(t, 6, byName["meta"].Index)

	// 行尾注释
	require.Len(t, byName["name"].Annotations, 1)
	assert.Equal(t, "get", byName["name"].Annotations[0].Name)
	assert.True(t, byName["name"].Annotations[0].HasArgs)
	// 字段上方注释
	require.Len(t, byName["Phone"].Annotations, 1)
	assert.Equal(t, "set", byName["Phone"].Annotations[0].Name)
	assert.Empty(t, byName["email"].Annotations)

	assert.Equal(t, map[string]string{
		"time": "time",
		"dec":  "github.com/shopspring/decimal",
		"yaml": "gopkg.in/yaml.v3",
	}, res.Imports)
}

// TestParseRecord_GroupedDecl 测试分组声明中的结构体
// 场景：注释挂在 TypeSpec 上、a, b int 展开、空白字段
func TestParseRecord_GroupedDecl(t *testing.T) {
	res, err := ParseRecord(recordsFile, "Point")
	require.NoError(t, err)

	assert.Equal(t, []string{"getters"}, annotationNames(res.Record.Annotations))
	require.Len(t, res.Record.Fields, 3)
	assert.Equal(t, []string{"x", "y", ""}, res.Record.FieldNames())
	for i, f := range res.Record.Fields {
		assert.Equal(t, i, f.Index)
		assert.Equal(t, "int", f.Type)
	}

	plain, err := ParseRecord(recordsFile, "Plain")
	require.NoError(t, err)
	assert.Empty(t, plain.Record.Annotations, "分组声明的注释不应串到其他结构体")
}

// TestParseRecord_Embedded 测试嵌入字段以类型名命名
func TestParseRecord_Embedded(t *testing.T) {
	res, err := ParseRecord(recordsFile, "Wrapper")
	require.NoError(t, err)

	fields := res.Record.Fields
	require.Len(t, fields, 3)
	assert.Equal(t, engine.Field{Name: "Base", Type: "*Base", Public: true, Index: 0}, fields[0])
	assert.Equal(t, engine.Field{Name: "Duration", Type: "time.Duration", Public: true, Index: 1}, fields[1])
	assert.Equal(t, "label", fields[2].Name)
	assert.False(t, fields[2].Public)
}

// TestParseRecord_Errors 测试错误场景
func TestParseRecord_Errors(t *testing.T) {
	t.Run("struct not found", func(t *testing.T) {
		_, err := ParseRecord(recordsFile, "Missing")
		assert.ErrorIs(t, err, ErrStructNotFound)
	})

	t.Run("generic struct", func(t *testing.T) {
		_, err := ParseRecord(recordsFile, "Box")
		assert.ErrorIs(t, err, ErrGenericStruct)
	})

	t.Run("file not found", func(t *testing.T) {
		_, err := ParseRecord(filepath.Join("testdata", "missing.go"), "User")
		assert.Error(t, err)
	})

	t.Run("malformed record annotation", func(t *testing.T) {
		_, err := ParseRecord(filepath.Join("testdata", "invalid", "bad_args.go"), "Broken")
		require.Error(t, err)
		assert.ErrorIs(t, err, annotation.ErrMalformedArgumentValue)
		assert.Contains(t, err.Error(), "Broken")
	})

	t.Run("malformed field annotation", func(t *testing.T) {
		_, err := ParseRecord(filepath.Join("testdata", "invalid", "bad_args.go"), "BrokenField")
		require.Error(t, err)
		assert.ErrorIs(t, err, annotation.ErrUnrecognizedToken)
		assert.Contains(t, err.Error(), "BrokenField.value")
	})
}

// TestParseRecord_IgnoresForeignAnnotations 测试邮箱和其他注解不被识别
func TestParseRecord_IgnoresForeignAnnotations(t *testing.T) {
	res, err := ParseRecord(recordsFile, "Note")
	require.NoError(t, err)
	assert.Empty(t, res.Record.Annotations)
}

// TestParseRecord_WrongLevel 测试不属于所在层级的注解被忽略，即使参数无法解析
func TestParseRecord_WrongLevel(t *testing.T) {
	res, err := ParseRecord(filepath.Join("testdata", "records", "levels.go"), "Misplaced")
	require.NoError(t, err)
	assert.Equal(t, []string{"getters"}, annotationNames(res.Record.Annotations))

	require.Len(t, res.Record.Fields, 2)
	assert.Empty(t, res.Record.Fields[0].Annotations)
	assert.Equal(t, []string{"get"}, annotationNames(res.Record.Fields[1].Annotations))

	methods, err := engine.Generate(res.Record)
	require.NoError(t, err)
	names := lo.Map(methods, func(m engine.GeneratedMethod, _ int) string { return m.Name })
	assert.Equal(t, []string{"id", "label", "title"}, names)
}

// TestParseRecord_Generate 测试解析结果可直接交给引擎
func TestParseRecord_Generate(t *testing.T) {
	res, err := ParseRecord(recordsFile, "User")
	require.NoError(t, err)

	methods, err := engine.Generate(res.Record)
	require.NoError(t, err)

	names := lo.Map(methods, func(m engine.GeneratedMethod, _ int) string { return m.Name })
	assert.Equal(t, []string{
		"get_id", "get_name", "get_email", "get_balance", "get_meta",
		"set_name", "set_email",
		"new",
		"display_name",
		"update_Phone",
	}, names)
}

func TestParseContext_Cache(t *testing.T) {
	ctx := NewParseContext()

	_, err := ctx.ParseRecord(recordsFile, "User")
	require.NoError(t, err)
	_, err = ctx.ParseRecord(recordsFile, "Point")
	require.NoError(t, err)
	assert.Len(t, ctx.files, 1, "同一文件只应解析一次")

	ctx.Forget(recordsFile)
	assert.Empty(t, ctx.files)
}
