package engine

import (
	"github.com/donutnomad/trlgen/annotation"
)

// 注解名称
const (
	AnnotationGetters     = "getters"
	AnnotationSetters     = "setters"
	AnnotationConstructor = "constructor"
	AnnotationGet         = "get"
	AnnotationSet         = "set"
)

// handler 处理一个注解，field 仅在字段级注解时非空
type handler func(rec *Record, field *Field, args []annotation.Argument) ([]GeneratedMethod, error)

// entry 分派表的一项
type entry struct {
	name   string
	level  Level
	domain annotation.Domain
	handle handler
}

// dispatch 静态分派表，新增注解只需增加一项
var dispatch = []entry{
	{name: AnnotationGetters, level: RecordLevel, domain: annotation.DomainAccessor, handle: recordAccessors(Getter)},
	{name: AnnotationSetters, level: RecordLevel, domain: annotation.DomainAccessor, handle: recordAccessors(Setter)},
	{name: AnnotationConstructor, level: RecordLevel, domain: annotation.DomainConstructor, handle: constructor},
	{name: AnnotationGet, level: FieldLevel, domain: annotation.DomainAccessor, handle: fieldAccessor(Getter)},
	{name: AnnotationSet, level: FieldLevel, domain: annotation.DomainAccessor, handle: fieldAccessor(Setter)},
}

func lookup(name string, level Level) (entry, bool) {
	for _, e := range dispatch {
		if e.name == name && e.level == level {
			return e, true
		}
	}
	return entry{}, false
}

// Vocabulary 返回全部可识别的注解名称
func Vocabulary() []string {
	names := make([]string, len(dispatch))
	for i, e := range dispatch {
		names[i] = e.name
	}
	return names
}

// RecordVocabulary 返回记录级注解名称
func RecordVocabulary() []string {
	var names []string
	for _, e := range dispatch {
		if e.level == RecordLevel {
			names = append(names, e.name)
		}
	}
	return names
}

// FieldVocabulary 返回字段级注解名称
func FieldVocabulary() []string {
	var names []string
	for _, e := range dispatch {
		if e.level == FieldLevel {
			names = append(names, e.name)
		}
	}
	return names
}

// Generate 生成记录的全部方法。
// 顺序：记录级注解（源码顺序），然后按声明顺序遍历字段的字段级注解。
// 未知注解名忽略；任何错误都使整个记录失败，返回 nil。
func Generate(rec *Record) ([]GeneratedMethod, error) {
	var methods []GeneratedMethod

	for _, ann := range rec.Annotations {
		ms, err := apply(rec, nil, RecordLevel, ann)
		if err != nil {
			return nil, err
		}
		methods = append(methods, ms...)
	}

	for i := range rec.Fields {
		field := &rec.Fields[i]
		for _, ann := range field.Annotations {
			ms, err := apply(rec, field, FieldLevel, ann)
			if err != nil {
				return nil, err
			}
			methods = append(methods, ms...)
		}
	}

	return methods, nil
}

func apply(rec *Record, field *Field, level Level, ann annotation.Annotation) ([]GeneratedMethod, error) {
	e, ok := lookup(ann.Name, level)
	if !ok {
		return nil, nil
	}
	args, err := classify(e.domain, ann)
	if err != nil {
		return nil, err
	}
	methods, err := e.handle(rec, field, args)
	if err != nil {
		return nil, err
	}
	for i := range methods {
		methods[i].Annotation = ann.Name
	}
	return methods, nil
}

// recordAccessors 记录级 getters/setters：解析、展开 includes、按字段过滤、收窄、合成
func recordAccessors(kind AccessorKind) handler {
	return func(rec *Record, _ *Field, args []annotation.Argument) ([]GeneratedMethod, error) {
		cfg, err := FillIncludes(ResolveAccessor(kind, RecordLevel, args), rec.Fields)
		if err != nil {
			return nil, err
		}
		var methods []GeneratedMethod
		for _, f := range rec.Fields {
			if !ShouldGenerate(cfg, f) {
				continue
			}
			m, err := SynthesizeAccessor(kind, cfg.Narrow(), f)
			if err != nil {
				return nil, err
			}
			methods = append(methods, m)
		}
		return methods, nil
	}
}

// fieldAccessor 字段级 get/set：显式启用，不经过选择策略
func fieldAccessor(kind AccessorKind) handler {
	return func(_ *Record, field *Field, args []annotation.Argument) ([]GeneratedMethod, error) {
		m, err := SynthesizeAccessor(kind, ResolveAccessor(kind, FieldLevel, args), *field)
		if err != nil {
			return nil, err
		}
		return []GeneratedMethod{m}, nil
	}
}

func constructor(rec *Record, _ *Field, args []annotation.Argument) ([]GeneratedMethod, error) {
	m, err := SynthesizeConstructor(ResolveConstructor(args), rec)
	if err != nil {
		return nil, err
	}
	return []GeneratedMethod{m}, nil
}
