package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/donutnomad/trlgen/annotation"
)

func TestResolveAccessor(t *testing.T) {
	tests := []struct {
		name     string
		kind     AccessorKind
		level    Level
		args     []annotation.Argument
		expected AccessorConfig
	}{
		{
			name:     "getter defaults",
			kind:     Getter,
			level:    RecordLevel,
			expected: AccessorConfig{Modifier: annotation.ModifierRef},
		},
		{
			name:     "setter defaults",
			kind:     Setter,
			level:    RecordLevel,
			expected: AccessorConfig{Prefix: "set_"},
		},
		{
			name:  "record level",
			kind:  Getter,
			level: RecordLevel,
			args: []annotation.Argument{
				annotation.ArgIncludes{Names: []string{"id"}},
				annotation.ArgExcludes{Names: []string{"name"}},
				annotation.ArgPrefix{Value: "get_"},
				annotation.ArgModifier{Modifier: annotation.ModifierMove},
				annotation.ArgIncludePublic{},
				annotation.ArgName{Value: "ignored"},
			},
			expected: AccessorConfig{
				Includes:      []string{"id"},
				Excludes:      []string{"name"},
				Prefix:        "get_",
				Modifier:      annotation.ModifierMove,
				IncludePublic: true,
			},
		},
		{
			name:  "field level ignores selection",
			kind:  Getter,
			level: FieldLevel,
			args: []annotation.Argument{
				annotation.ArgIncludes{Names: []string{"id"}},
				annotation.ArgExcludes{Names: []string{"name"}},
				annotation.ArgIncludePublic{},
				annotation.ArgName{Value: "title"},
			},
			expected: AccessorConfig{NameOverride: "title"},
		},
		{
			name:  "last wins",
			kind:  Setter,
			level: FieldLevel,
			args: []annotation.Argument{
				annotation.ArgPrefix{Value: "a_"},
				annotation.ArgName{Value: "x"},
				annotation.ArgPrefix{Value: "b_"},
				annotation.ArgName{Value: "y"},
			},
			expected: AccessorConfig{Prefix: "b_", NameOverride: "y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveAccessor(tt.kind, tt.level, tt.args))
		})
	}
}

func TestResolveConstructor(t *testing.T) {
	assert.Equal(t, DefaultConstructorConfig(), ResolveConstructor(nil))

	cfg := ResolveConstructor([]annotation.Argument{
		annotation.ArgCtorName{Value: "make"},
		annotation.ArgVisibility{Visibility: annotation.Visibility{Kind: annotation.Private}},
		annotation.ArgCtorName{Value: "build"},
	})
	assert.Equal(t, ConstructorConfig{
		Name:       "build",
		Visibility: annotation.Visibility{Kind: annotation.Private},
	}, cfg)
}

func TestSynthesizeAccessor_Naming(t *testing.T) {
	f := Field{Name: "name", Type: "string"}

	tests := []struct {
		name     string
		kind     AccessorKind
		cfg      AccessorConfig
		expected string
	}{
		{name: "getter plain", kind: Getter, cfg: AccessorConfig{}, expected: "name"},
		{name: "getter prefix", kind: Getter, cfg: AccessorConfig{Prefix: "get_"}, expected: "get_name"},
		{name: "getter override", kind: Getter, cfg: AccessorConfig{NameOverride: "title"}, expected: "title"},
		{name: "override then prefix", kind: Getter, cfg: AccessorConfig{Prefix: "get_", NameOverride: "title"}, expected: "get_title"},
		{name: "setter empty prefix", kind: Setter, cfg: AccessorConfig{}, expected: "set_name"},
		{name: "setter prefix", kind: Setter, cfg: AccessorConfig{Prefix: "with_"}, expected: "with_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := SynthesizeAccessor(tt.kind, tt.cfg, f)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, m.Name)
		})
	}
}

func TestSynthesizeAccessor_Unnamed(t *testing.T) {
	_, err := SynthesizeGetter(AccessorConfig{}, Field{Type: "int"})
	assert.ErrorIs(t, err, ErrUnsupportedFieldShape)
	_, err = SynthesizeSetter(AccessorConfig{}, Field{Type: "int"})
	assert.ErrorIs(t, err, ErrUnsupportedFieldShape)
}
