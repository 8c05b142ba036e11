package engine

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donutnomad/trlgen/annotation"
)

func TestShouldGenerate(t *testing.T) {
	private := Field{Name: "id"}
	public := Field{Name: "Phone", Public: true}

	tests := []struct {
		name     string
		cfg      AccessorConfig
		field    Field
		expected bool
	}{
		{name: "default private", cfg: AccessorConfig{}, field: private, expected: true},
		{name: "default public", cfg: AccessorConfig{}, field: public, expected: false},
		{name: "include public", cfg: AccessorConfig{IncludePublic: true}, field: public, expected: true},
		{name: "in includes", cfg: AccessorConfig{Includes: []string{"id"}}, field: private, expected: true},
		{name: "not in includes", cfg: AccessorConfig{Includes: []string{"name"}}, field: private, expected: false},
		{name: "excluded", cfg: AccessorConfig{Excludes: []string{"id"}}, field: private, expected: false},
		{name: "included and excluded", cfg: AccessorConfig{Includes: []string{"id"}, Excludes: []string{"id"}}, field: private, expected: false},
		{name: "public included without pub", cfg: AccessorConfig{Includes: []string{"Phone"}}, field: public, expected: false},
		{name: "empty string include", cfg: AccessorConfig{Includes: []string{""}}, field: private, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShouldGenerate(tt.cfg, tt.field))
		})
	}
}

func TestShouldGenerate_Idempotent(t *testing.T) {
	fields := []Field{
		{Name: "id"},
		{Name: "name"},
		{Name: "Phone", Public: true},
	}
	configs := []AccessorConfig{
		{},
		{IncludePublic: true},
		{Includes: []string{"name"}},
		{Excludes: []string{"id"}},
		{Includes: []string{"id", "Phone"}, Excludes: []string{"Phone"}, IncludePublic: true},
	}

	for _, cfg := range configs {
		for _, f := range fields {
			first := ShouldGenerate(cfg, f)
			second := ShouldGenerate(cfg, f)
			assert.Equal(t, first, second, "cfg=%+v field=%s", cfg, f.Name)
		}
	}
}

func TestFillIncludes_RoundTrip(t *testing.T) {
	records := [][]string{
		nil,
		{"id"},
		{"id", "name", "email"},
		{"b", "a", "Phone", "c"},
	}

	for _, names := range records {
		fields := make([]Field, len(names))
		for i, n := range names {
			fields[i] = Field{Name: n, Index: i}
		}

		cfg, err := FillIncludes(DefaultAccessorConfig(Getter), fields)
		require.NoError(t, err)

		kept := lo.Filter(cfg.Includes, func(n string, _ int) bool {
			return lo.Contains(names, n)
		})
		assert.ElementsMatch(t, names, kept)
		assert.Len(t, kept, len(names))
	}
}

func TestFillIncludes_CopyOnly(t *testing.T) {
	orig := AccessorConfig{Excludes: []string{"x"}}
	filled, err := FillIncludes(orig, []Field{{Name: "id"}, {Name: "x"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "x"}, filled.Includes)
	assert.Empty(t, orig.Includes)

	filled.Excludes[0] = "changed"
	assert.Equal(t, "x", orig.Excludes[0])
}

func TestFillIncludes_KeepsExplicit(t *testing.T) {
	filled, err := FillIncludes(AccessorConfig{Includes: []string{"name"}}, []Field{{Name: "id"}, {Name: "name"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, filled.Includes)
}

func TestFillIncludes_Unnamed(t *testing.T) {
	_, err := FillIncludes(AccessorConfig{}, []Field{{Name: "id"}, {Index: 1}})
	assert.ErrorIs(t, err, ErrUnsupportedFieldShape)
}

func TestNarrow(t *testing.T) {
	cfg := AccessorConfig{
		Includes:      []string{"id"},
		Excludes:      []string{"name"},
		Prefix:        "get_",
		NameOverride:  "other",
		Modifier:      annotation.ModifierMutRef,
		IncludePublic: true,
	}

	assert.Equal(t, AccessorConfig{
		Prefix:   "get_",
		Modifier: annotation.ModifierMutRef,
	}, cfg.Narrow())

	// 原配置不变
	assert.Equal(t, "other", cfg.NameOverride)
	assert.Equal(t, []string{"id"}, cfg.Includes)
}

func TestDefaultConfigs(t *testing.T) {
	assert.Equal(t, "", DefaultAccessorConfig(Getter).Prefix)
	assert.Equal(t, "set_", DefaultAccessorConfig(Setter).Prefix)
	assert.Equal(t, annotation.ModifierRef, DefaultAccessorConfig(Getter).Modifier)
	assert.False(t, DefaultAccessorConfig(Getter).IncludePublic)

	ctor := DefaultConstructorConfig()
	assert.Equal(t, "new", ctor.Name)
	assert.Equal(t, annotation.Public, ctor.Visibility.Kind)
}
