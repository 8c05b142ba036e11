package plugin

import (
	"fmt"
	"slices"
	"sync"
)

// binding 注解名绑定到的生成器和层级
type binding struct {
	gen   Generator
	level Level
}

// Registry 注解注册表
// 注解名只能绑定一个生成器，并固定在一个层级上
type Registry struct {
	mu         sync.RWMutex
	bindings   map[string]binding
	generators []Generator // 注册顺序，也是合并输出时的顺序
}

// NewRegistry 创建新的注册表
func NewRegistry() *Registry {
	return &Registry{
		bindings: make(map[string]binding),
	}
}

// Register 注册生成器
func (r *Registry) Register(gen Generator) error {
	vocab := gen.Vocabulary()
	if vocab.IsEmpty() {
		return fmt.Errorf("生成器 %q 没有声明任何注解", gen.Name())
	}
	if err := vocab.validate(); err != nil {
		return fmt.Errorf("生成器 %q: %w", gen.Name(), err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.generators {
		if existing.Name() == gen.Name() {
			return fmt.Errorf("生成器 %q 已注册", gen.Name())
		}
	}

	for _, name := range vocab.All() {
		if b, ok := r.bindings[name]; ok {
			return fmt.Errorf("注解 @%s 已被生成器 %q 绑定为%s注解，无法被 %q 再次绑定",
				name, b.gen.Name(), b.level, gen.Name())
		}
	}

	for _, name := range vocab.Record {
		r.bindings[name] = binding{gen: gen, level: LevelRecord}
	}
	for _, name := range vocab.Field {
		r.bindings[name] = binding{gen: gen, level: LevelField}
	}
	r.generators = append(r.generators, gen)
	return nil
}

// MustRegister 注册生成器，失败时 panic
func (r *Registry) MustRegister(gen Generator) {
	if err := r.Register(gen); err != nil {
		panic(err)
	}
}

// Generators 按注册顺序返回所有生成器
func (r *Registry) Generators() []Generator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.generators)
}

// Vocabulary 返回所有已注册的注解，每个层级内按名称排序
func (r *Registry) Vocabulary() Vocabulary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var vocab Vocabulary
	for name, b := range r.bindings {
		if b.level == LevelRecord {
			vocab.Record = append(vocab.Record, name)
		} else {
			vocab.Field = append(vocab.Field, name)
		}
	}
	slices.Sort(vocab.Record)
	slices.Sort(vocab.Field)
	return vocab
}

// Dispatch 一个生成器和分给它的目标
type Dispatch struct {
	Generator Generator
	Targets   []*AnnotatedTarget
}

// DispatchTargets 将扫描结果分发给对应的生成器，按注册顺序返回。
// 注解只在其绑定的层级上生效：字段级注解写在结构体文档中不会分发，反之亦然。
// 同一目标的多个注解绑定到同一生成器时只分发一次。
func (r *Registry) DispatchTargets(result *ScanResult) []Dispatch {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byGen := make(map[Generator][]*AnnotatedTarget)
	for _, target := range result.All() {
		seen := make(map[Generator]bool)
		take := func(names []string, level Level) {
			for _, name := range names {
				b, ok := r.bindings[name]
				if !ok || b.level != level || seen[b.gen] {
					continue
				}
				seen[b.gen] = true
				byGen[b.gen] = append(byGen[b.gen], target)
			}
		}
		take(target.RecordAnnotations, LevelRecord)
		take(target.FieldAnnotations, LevelField)
	}

	var dispatch []Dispatch
	for _, gen := range r.generators {
		if targets, ok := byGen[gen]; ok {
			dispatch = append(dispatch, Dispatch{Generator: gen, Targets: targets})
		}
	}
	return dispatch
}

// 全局注册表
var globalRegistry = NewRegistry()

// Global 返回全局注册表
func Global() *Registry {
	return globalRegistry
}

// MustRegister 向全局注册表注册生成器，失败时 panic
func MustRegister(gen Generator) {
	globalRegistry.MustRegister(gen)
}
