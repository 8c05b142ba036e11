// Package trlgen 将 @getters/@setters/@constructor/@get/@set 注解接入插件框架：
// 解析结构体 -> 引擎合成方法 -> 渲染为 gg 定义。
package trlgen

import (
	"fmt"
	"slices"

	"github.com/davecgh/go-spew/spew"
	"github.com/donutnomad/gg"
	"github.com/samber/lo"

	"github.com/donutnomad/trlgen/annotation"
	"github.com/donutnomad/trlgen/engine"
	"github.com/donutnomad/trlgen/internal/structparse"
	"github.com/donutnomad/trlgen/plugin"
	"github.com/donutnomad/trlgen/render"
)

const generatorName = "trlgen"

// defaultOutput 未配置输出路径时，与源文件同目录
const defaultOutput = "$FILE_accessors.go"

// Params 注解参数，仅用于帮助文本
type Params struct {
	Includes   string `param:"name=includes,annotations=getters|setters,description=只为列出的字段生成 如 [id、name]"`
	Excludes   string `param:"name=excludes,annotations=getters|setters,description=跳过列出的字段"`
	Pub        string `param:"name=pub,annotations=getters|setters,description=同时包含公开字段"`
	Prefix     string `param:"name=prefix,annotations=getters|setters|get|set,description=方法名前缀 get 默认无前缀 set 默认 set_"`
	Name       string `param:"name=name,annotations=get|set,description=完整方法名 覆盖前缀"`
	Modifier   string `param:"name=ref|move|mut ref,annotations=getters|setters|get|set,description=接收者访问方式 默认 ref"`
	CtorName   string `param:"name=name,default=new,annotations=constructor,description=构造函数名"`
	Visibility string `param:"name=visibility,default=pub,annotations=constructor,description=可见性: pub|private|pub(path)"`
}

// Generator 实现 plugin.Generator 接口
type Generator struct {
	plugin.BaseGenerator
}

// vocabulary 引擎分发表中的注解，按层级划分
func vocabulary() plugin.Vocabulary {
	return plugin.Vocabulary{
		Record: engine.RecordVocabulary(),
		Field:  engine.FieldVocabulary(),
	}
}

func NewGenerator() *Generator {
	vocab := vocabulary()
	base := plugin.NewBaseGenerator(generatorName, vocab, defaultOutput).
		WithParams(lo.Must(plugin.ParseParams(Params{}, vocab)))
	return &Generator{BaseGenerator: *base}
}

// Examples 帮助文本中的用法示例
func (g *Generator) Examples() []string {
	return []string{
		"// @getters(prefix=get_, excludes=[secret])",
		"// @setters(includes=[name], mut ref)",
		`// @constructor(name=make, visibility="private")`,
		"name string // @get(name=display_name)",
	}
}

// recordInfo 一个已合成方法的记录
type recordInfo struct {
	target  *plugin.AnnotatedTarget
	parsed  *structparse.Result
	methods []engine.GeneratedMethod
}

// Generate 执行代码生成
func (g *Generator) Generate(ctx *plugin.GenerateContext) (*plugin.GenerateResult, error) {
	result := plugin.NewGenerateResult()

	if len(ctx.Targets) == 0 {
		return result, nil
	}

	// 同一文件中的多个结构体共用一次解析
	parseCtx := structparse.NewParseContext()

	// key: 输出路径
	fileRecords := make(map[string][]*recordInfo)

	for _, at := range ctx.Targets {
		parsed, err := parseCtx.ParseRecord(at.Target.FilePath, at.Target.Name)
		if err != nil {
			result.AddError(fmt.Errorf("%s: 解析结构体 %s 失败: %w", at.Target.FilePath, at.Target.Name, err))
			continue
		}

		for _, w := range nonIdentElements(parsed.Record) {
			fmt.Printf("警告: %s: %s\n", at.Target.FilePath, w)
		}

		methods, err := engine.Generate(parsed.Record)
		if err != nil {
			result.AddError(fmt.Errorf("%s: %s: %w", at.Target.FilePath, at.Target.Name, err))
			continue
		}
		if len(methods) == 0 {
			result.Skipped++
			if ctx.Verbose {
				fmt.Printf("[trlgen] 跳过结构体 %s (没有需要生成的方法)\n", at.Target.Name)
			}
			continue
		}

		pkgConfig := ctx.GetPackageConfig(at.Target.FilePath)
		outputPath := plugin.GetOutputPath(at.Target, defaultOutput, pkgConfig, g.Name(), ctx.DefaultOutput)

		fileRecords[outputPath] = append(fileRecords[outputPath], &recordInfo{
			target:  at,
			parsed:  parsed,
			methods: methods,
		})

		if ctx.Verbose {
			fmt.Printf("[trlgen] 处理结构体 %s -> %s (%d 个方法)\n", at.Target.Name, outputPath, len(methods))
		}
	}

	// 按输出路径排序，确保生成顺序一致
	outputPaths := lo.Keys(fileRecords)
	slices.Sort(outputPaths)

	for _, outputPath := range outputPaths {
		records := fileRecords[outputPath]

		if ctx.Verbose {
			for _, item := range records {
				fmt.Printf("[trlgen] %s", spew.Sdump(item.methods))
			}
		}

		gen, reports, errs := g.generateDefinition(outputPath, records)
		for _, err := range errs {
			result.AddError(fmt.Errorf("生成 %s 失败: %w", outputPath, err))
		}
		if len(reports) == 0 {
			continue
		}
		result.AddDefinition(outputPath, gen)
		result.AddReport(reports...)
	}

	return result, nil
}

// generateDefinition 为同一输出文件的记录生成 gg 定义。
// 单个记录渲染失败只丢弃该记录，不影响同文件的其他记录。
func (g *Generator) generateDefinition(outputPath string, records []*recordInfo) (*gg.Generator, []plugin.MethodReport, []error) {
	packageName := records[0].parsed.PackageName
	for _, r := range records[1:] {
		if r.parsed.PackageName != packageName {
			return nil, nil, []error{fmt.Errorf("输出文件中的包名不一致: %s 与 %s", packageName, r.parsed.PackageName)}
		}
	}

	gen := gg.New()
	gen.SetPackage(packageName)

	var reports []plugin.MethodReport
	var errs []error
	for _, r := range records {
		symbols, err := render.Render(gen, r.parsed.Record, r.methods, r.parsed.Imports)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.target.Target.FilePath, err))
			continue
		}
		for _, sym := range symbols {
			reports = append(reports, plugin.MethodReport{
				Generator:  generatorName,
				Package:    packageName,
				Record:     sym.Record,
				Source:     r.target.Target.FilePath,
				Output:     outputPath,
				Annotation: sym.Method.Annotation,
				Kind:       sym.Method.Kind.String(),
				Name:       sym.Method.Name,
				GoName:     sym.GoName,
				Signature:  sym.Signature,
				Visibility: sym.Visibility,
			})
		}
	}

	return gen, reports, errs
}

// nonIdentElements 列出 includes/excludes 中不是标识符的元素，这些元素按空名称处理
func nonIdentElements(rec *engine.Record) []string {
	var warnings []string
	check := func(owner string, anns []annotation.Annotation) {
		for _, ann := range anns {
			for _, arg := range ann.Args {
				kv, ok := arg.(annotation.Assign)
				if !ok {
					continue
				}
				list, ok := kv.Value.(annotation.List)
				if !ok {
					continue
				}
				for _, el := range list.Elems {
					if _, ok := el.(annotation.Ident); ok {
						continue
					}
					warnings = append(warnings, fmt.Sprintf("%s @%s: %s 中的 %s 不是标识符，按空名称处理",
						owner, ann.Name, kv.Key, el.String()))
				}
			}
		}
	}

	check(rec.Name, rec.Annotations)
	for _, f := range rec.Fields {
		check(rec.Name+"."+f.Name, f.Annotations)
	}
	return warnings
}
