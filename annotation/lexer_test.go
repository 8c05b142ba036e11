package annotation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string // 各表达式的 String()
	}{
		{name: "empty", input: "", expected: nil},
		{name: "blank", input: "   ", expected: nil},
		{name: "single ident", input: "pub", expected: []string{"pub"}},
		{name: "phrase", input: "mut ref", expected: []string{"mut ref"}},
		{name: "assign ident", input: "prefix=get_", expected: []string{"prefix=get_"}},
		{name: "assign with spaces", input: "prefix = get_", expected: []string{"prefix=get_"}},
		{name: "assign list", input: "includes=[id, name]", expected: []string{"includes=[id, name]"}},
		{name: "empty list", input: "excludes=[]", expected: []string{"excludes=[]"}},
		{name: "assign string", input: `visibility="pub(crate)"`, expected: []string{`visibility="pub(crate)"`}},
		{name: "raw string", input: "visibility=`private`", expected: []string{"visibility=`private`"}},
		{
			name:     "mixed",
			input:    "includes=[id, name], mut ref, prefix=get_, pub",
			expected: []string{"includes=[id, name]", "mut ref", "prefix=get_", "pub"},
		},
		{name: "trailing comma", input: "pub, ref,", expected: []string{"pub", "ref"}},
		{name: "list trailing comma", input: "includes=[id,]", expected: []string{"includes=[id]"}},
		{name: "literal path", input: "a.b", expected: []string{"a.b"}},
		{name: "literal number in list", input: "includes=[1, id]", expected: []string{"includes=[1, id]"}},
		{name: "empty value", input: "prefix=", expected: []string{"prefix="}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exprs, err := Tokenize(tt.input)
			require.NoError(t, err)
			require.Len(t, exprs, len(tt.expected))
			for i, e := range exprs {
				assert.Equal(t, tt.expected[i], e.String())
			}
		})
	}
}

func TestTokenize_Shapes(t *testing.T) {
	exprs, err := Tokenize(`includes=[id, "x"], mut ref, name=make`)
	require.NoError(t, err)
	require.Len(t, exprs, 3)

	kv, ok := exprs[0].(Assign)
	require.True(t, ok)
	assert.Equal(t, "includes", kv.Key)
	list, ok := kv.Value.(List)
	require.True(t, ok)
	require.Len(t, list.Elems, 2)
	assert.IsType(t, Ident{}, list.Elems[0])
	assert.IsType(t, StringLit{}, list.Elems[1])

	phrase, ok := exprs[1].(Phrase)
	require.True(t, ok)
	assert.Equal(t, []string{"mut", "ref"}, phrase.Words)

	kv, ok = exprs[2].(Assign)
	require.True(t, ok)
	assert.Equal(t, Ident{Name: "make", Position: kv.Value.Pos()}, kv.Value)
}

func TestTokenize_StringValue(t *testing.T) {
	exprs, err := Tokenize(`visibility="pub(crate::a)"`)
	require.NoError(t, err)
	require.Len(t, exprs, 1)

	lit, ok := exprs[0].(Assign).Value.(StringLit)
	require.True(t, ok)
	assert.Equal(t, "pub(crate::a)", lit.Value)
	assert.False(t, lit.Raw)
}

func TestTokenize_NonIdentKey(t *testing.T) {
	exprs, err := Tokenize("a.b=c")
	require.NoError(t, err)
	require.Len(t, exprs, 1)
	assert.IsType(t, Literal{}, exprs[0])
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  error
	}{
		{name: "unclosed bracket", input: "includes=[id, name", kind: ErrMalformedArgumentValue},
		{name: "extra close", input: "includes=id]", kind: ErrMalformedArgumentValue},
		{name: "mismatched", input: "includes=[id)", kind: ErrMalformedArgumentValue},
		{name: "empty list middle", input: "includes=[a,,b]", kind: ErrMalformedArgumentValue},
		{name: "empty list spaced", input: "includes=[a, , b]", kind: ErrMalformedArgumentValue},
		{name: "unclosed outside value", input: "[id, name", kind: ErrUnrecognizedToken},
		{name: "extra close outside value", input: "pub]", kind: ErrUnrecognizedToken},
		{name: "bare list empty middle", input: "[a,,b]", kind: ErrUnrecognizedToken},
		{name: "empty middle", input: "pub,,ref", kind: ErrUnrecognizedToken},
		{name: "leading comma", input: ",pub", kind: ErrUnrecognizedToken},
		{name: "unterminated string", input: `visibility="pub`, kind: ErrUnrecognizedToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
		})
	}
}

func TestTokenize_LiteralKeepsSpacing(t *testing.T) {
	exprs, err := Tokenize("mut ref = x, a .b=c")
	require.NoError(t, err)
	require.Len(t, exprs, 2)
	assert.Equal(t, "mut ref = x", exprs[0].String())
	assert.Equal(t, "a .b=c", exprs[1].String())
}
