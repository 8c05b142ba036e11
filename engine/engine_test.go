package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donutnomad/trlgen/annotation"
)

// anns 从注释文本解析注解
func anns(t *testing.T, comment string) []annotation.Annotation {
	t.Helper()
	result, err := annotation.Parse(comment, Vocabulary()...)
	require.NoError(t, err)
	return result
}

// newRecord 构造测试记录，字段名首字母大写视为公开
func newRecord(t *testing.T, comment string, names ...string) *Record {
	t.Helper()
	rec := &Record{Name: "User", Package: "model", Annotations: anns(t, comment)}
	for i, name := range names {
		rec.Fields = append(rec.Fields, Field{
			Name:   name,
			Type:   "string",
			Public: name != "" && name[0] >= 'A' && name[0] <= 'Z',
			Index:  i,
		})
	}
	return rec
}

func methodNames(methods []GeneratedMethod) []string {
	var names []string
	for _, m := range methods {
		names = append(names, m.Name)
	}
	return names
}

func TestGenerate_NoAnnotations(t *testing.T) {
	rec := newRecord(t, "// User 用户", "id", "name")
	methods, err := Generate(rec)
	require.NoError(t, err)
	assert.Empty(t, methods)
}

func TestGenerate_EmptyRecord(t *testing.T) {
	rec := newRecord(t, "// @getters @setters")
	methods, err := Generate(rec)
	require.NoError(t, err)
	assert.Empty(t, methods)
}

func TestGenerate_Getters(t *testing.T) {
	tests := []struct {
		name     string
		comment  string
		fields   []string
		expected []string
	}{
		{name: "non-public field", comment: "// @getters", fields: []string{"id"}, expected: []string{"id"}},
		{name: "public field skipped", comment: "// @getters", fields: []string{"Phone"}, expected: nil},
		{name: "pub includes public", comment: "// @getters(pub)", fields: []string{"Phone"}, expected: []string{"Phone"}},
		{name: "prefix", comment: "// @getters(prefix=get_)", fields: []string{"id", "name"}, expected: []string{"get_id", "get_name"}},
		{name: "includes", comment: "// @getters(includes=[name])", fields: []string{"id", "name", "email"}, expected: []string{"name"}},
		{name: "excludes", comment: "// @getters(excludes=[password])", fields: []string{"id", "password"}, expected: []string{"id"}},
		{name: "includes and excludes", comment: "// @getters(includes=[id, name], excludes=[id])", fields: []string{"id", "name"}, expected: []string{"name"}},
		{name: "includes unknown name", comment: "// @getters(includes=[nope])", fields: []string{"id"}, expected: nil},
		{name: "includes public without pub", comment: "// @getters(includes=[Phone])", fields: []string{"Phone"}, expected: nil},
		{name: "last prefix wins", comment: "// @getters(prefix=a_, prefix=b_)", fields: []string{"id"}, expected: []string{"b_id"}},
		{name: "record-level name ignored", comment: "// @getters(name=other)", fields: []string{"id"}, expected: []string{"id"}},
		{name: "declaration order", comment: "// @getters", fields: []string{"c", "a", "b"}, expected: []string{"c", "a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			methods, err := Generate(newRecord(t, tt.comment, tt.fields...))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, methodNames(methods))
			for _, m := range methods {
				assert.Equal(t, KindGetter, m.Kind)
				assert.Equal(t, AnnotationGetters, m.Annotation)
			}
		})
	}
}

func TestGenerate_GetterShape(t *testing.T) {
	methods, err := Generate(newRecord(t, "// @getters", "id"))
	require.NoError(t, err)
	require.Len(t, methods, 1)

	m := methods[0]
	assert.Equal(t, "id", m.Name)
	assert.Equal(t, SelfRef, m.Self)
	assert.Empty(t, m.Params)
	require.NotNil(t, m.Returns)
	assert.Equal(t, "string", m.Returns.Type)
	assert.Equal(t, annotation.ModifierRef, m.Returns.Modifier)
	assert.Equal(t, Body{Kind: BodyRead, Field: "id", Access: SelfRef}, m.Body)
	assert.Equal(t, annotation.Public, m.Visibility.Kind)
}

func TestGenerate_GetterModifiers(t *testing.T) {
	tests := []struct {
		comment string
		self    SelfMode
		mod     annotation.Modifier
	}{
		{comment: "// @getters(ref)", self: SelfRef, mod: annotation.ModifierRef},
		{comment: "// @getters(move)", self: SelfValue, mod: annotation.ModifierMove},
		{comment: "// @getters(mut ref)", self: SelfMutRef, mod: annotation.ModifierMutRef},
		{comment: "// @getters(move, ref)", self: SelfRef, mod: annotation.ModifierRef},
	}

	for _, tt := range tests {
		t.Run(tt.comment, func(t *testing.T) {
			methods, err := Generate(newRecord(t, tt.comment, "id"))
			require.NoError(t, err)
			require.Len(t, methods, 1)
			assert.Equal(t, tt.self, methods[0].Self)
			assert.Equal(t, tt.mod, methods[0].Returns.Modifier)
			assert.Equal(t, tt.self, methods[0].Body.Access)
		})
	}
}

func TestGenerate_Setters(t *testing.T) {
	methods, err := Generate(newRecord(t, "// @setters", "id", "name", "Phone"))
	require.NoError(t, err)
	assert.Equal(t, []string{"set_id", "set_name"}, methodNames(methods))

	for _, m := range methods {
		assert.Equal(t, KindSetter, m.Kind)
		assert.Equal(t, SelfMutRef, m.Self)
		assert.Nil(t, m.Returns)
		require.Len(t, m.Params, 1)
		assert.Equal(t, Param{Name: "value", Type: "string"}, m.Params[0])
		assert.Equal(t, BodyAssign, m.Body.Kind)
		assert.Equal(t, m.Field, m.Body.Field)
		assert.Equal(t, "value", m.Body.Param)
	}
}

func TestGenerate_SettersIgnoreModifier(t *testing.T) {
	methods, err := Generate(newRecord(t, "// @setters(move, prefix=with_)", "id"))
	require.NoError(t, err)
	require.Len(t, methods, 1)
	assert.Equal(t, "with_id", methods[0].Name)
	assert.Equal(t, SelfMutRef, methods[0].Self)
}

func TestGenerate_Constructor(t *testing.T) {
	methods, err := Generate(newRecord(t, "// @constructor", "id", "name", "Phone"))
	require.NoError(t, err)
	require.Len(t, methods, 1)

	m := methods[0]
	assert.Equal(t, KindConstructor, m.Kind)
	assert.Equal(t, "new", m.Name)
	assert.Equal(t, annotation.Visibility{Kind: annotation.Public}, m.Visibility)
	assert.Equal(t, SelfNone, m.Self)
	assert.Equal(t, []Param{
		{Name: "id", Type: "string"},
		{Name: "name", Type: "string"},
		{Name: "Phone", Type: "string"},
	}, m.Params)
	assert.Equal(t, &ReturnShape{Type: "User", Record: true}, m.Returns)
	assert.Equal(t, []Assignment{
		{Field: "id", Param: "id"},
		{Field: "name", Param: "name"},
		{Field: "Phone", Param: "Phone"},
	}, m.Body.Assigns)
}

func TestGenerate_ConstructorPrivate(t *testing.T) {
	def, err := Generate(newRecord(t, "// @constructor", "id", "name"))
	require.NoError(t, err)
	methods, err := Generate(newRecord(t, `// @constructor(name=make, visibility="private")`, "id", "name"))
	require.NoError(t, err)
	require.Len(t, methods, 1)

	m := methods[0]
	assert.Equal(t, "make", m.Name)
	assert.Equal(t, annotation.Private, m.Visibility.Kind)
	assert.False(t, m.Visibility.Exported())
	assert.Equal(t, def[0].Params, m.Params)
	assert.Equal(t, def[0].Body, m.Body)
	assert.Equal(t, def[0].Returns, m.Returns)
}

func TestGenerate_ConstructorScoped(t *testing.T) {
	methods, err := Generate(newRecord(t, `// @constructor(visibility="pub(not a real scope)")`, "id"))
	require.NoError(t, err)
	require.Len(t, methods, 1)
	assert.Equal(t, annotation.Visibility{Kind: annotation.PublicScoped, Path: "not a real scope"}, methods[0].Visibility)
}

func TestGenerate_BadVisibility(t *testing.T) {
	rec := newRecord(t, "// @getters\n// @constructor(visibility=\"public\")", "id", "name")
	methods, err := Generate(rec)
	require.Error(t, err)
	assert.Nil(t, methods)
	assert.True(t, errors.Is(err, annotation.ErrMalformedArgumentValue))
}

func TestGenerate_ErrorsAbortRecord(t *testing.T) {
	tests := []struct {
		name    string
		comment string
		kind    error
	}{
		{name: "visibility in getters", comment: `// @getters(visibility="pub")`, kind: annotation.ErrUnknownArgumentKey},
		{name: "modifier in constructor", comment: "// @constructor(ref)", kind: annotation.ErrUnrecognizedToken},
		{name: "prefix string", comment: `// @setters(prefix="x")`, kind: annotation.ErrMalformedArgumentValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			methods, err := Generate(newRecord(t, tt.comment, "id"))
			require.Error(t, err)
			assert.Nil(t, methods)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestGenerate_FieldLevel(t *testing.T) {
	rec := newRecord(t, "", "id", "name", "Phone")
	rec.Fields[1].Annotations = anns(t, "// @get(name=display_name) @set")
	rec.Fields[2].Annotations = anns(t, "// @get(prefix=get_, includes=[nope], pub)")

	methods, err := Generate(rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"display_name", "set_name", "get_Phone"}, methodNames(methods))
	assert.Equal(t, AnnotationGet, methods[0].Annotation)
	assert.Equal(t, AnnotationSet, methods[1].Annotation)
	// 字段级注解不经过选择策略，公开字段同样生成
	assert.Equal(t, "Phone", methods[2].Field)
}

func TestGenerate_FieldLevelNameAndPrefix(t *testing.T) {
	rec := newRecord(t, "", "name")
	rec.Fields[0].Annotations = anns(t, "// @set(name=title, prefix=with_) @get(name=title, prefix=get_)")

	methods, err := Generate(rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"with_title", "get_title"}, methodNames(methods))
}

func TestGenerate_Order(t *testing.T) {
	rec := newRecord(t, "// @setters\n// @constructor\n// @getters(prefix=get_)", "id", "name")
	rec.Fields[0].Annotations = anns(t, "// @get(name=ident)")

	methods, err := Generate(rec)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"set_id", "set_name",
		"new",
		"get_id", "get_name",
		"ident",
	}, methodNames(methods))
}

func TestGenerate_UnknownAnnotationsIgnored(t *testing.T) {
	rec := &Record{
		Name: "User",
		Fields: []Field{
			{Name: "id", Type: "int64", Annotations: []annotation.Annotation{{Name: "getters"}, {Name: "json"}}},
		},
		Annotations: []annotation.Annotation{{Name: "get"}, {Name: "Gsql"}},
	}
	methods, err := Generate(rec)
	require.NoError(t, err)
	assert.Empty(t, methods)
}

func TestGenerate_UnnamedField(t *testing.T) {
	rec := &Record{
		Name:   "Pair",
		Fields: []Field{{Name: "a", Type: "int", Index: 0}, {Type: "int", Index: 1}},
	}

	rec.Annotations = anns(t, "// @constructor")
	_, err := Generate(rec)
	assert.ErrorIs(t, err, ErrUnsupportedFieldShape)

	rec.Annotations = anns(t, "// @getters")
	_, err = Generate(rec)
	assert.ErrorIs(t, err, ErrUnsupportedFieldShape)

	rec.Annotations = anns(t, "// @getters(includes=[a])")
	methods, err := Generate(rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, methodNames(methods))
}

func TestGenerate_DoesNotMutateRecord(t *testing.T) {
	rec := newRecord(t, "// @getters(includes=[id])\n// @setters", "id", "name")
	before := *rec
	beforeArgs := rec.Annotations[0].Args

	_, err := Generate(rec)
	require.NoError(t, err)
	assert.Equal(t, before.Fields, rec.Fields)
	assert.Equal(t, beforeArgs, rec.Annotations[0].Args)
}

func TestVocabulary(t *testing.T) {
	assert.Equal(t, []string{"getters", "setters", "constructor", "get", "set"}, Vocabulary())
	assert.Equal(t, []string{"getters", "setters", "constructor"}, RecordVocabulary())
	assert.Equal(t, []string{"get", "set"}, FieldVocabulary())
}
