package plugin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/bytedance/sonic"
	"github.com/donutnomad/gg"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/samber/lo"

	"github.com/donutnomad/trlgen/internal/utils"
)

// DefaultHeader 生成文件的默认文件头
const DefaultHeader = "Code generated by trlgen. DO NOT EDIT."

// ErrStale -check 模式下生成文件与磁盘内容不一致
var ErrStale = errors.New("生成文件已过期")

// RunOptions 运行选项
type RunOptions struct {
	Registry *Registry
	Patterns []string
	Verbose  bool
	Output   string // 命令行指定的默认输出路径（最低优先级）
	Async    bool   // 是否异步执行生成器
	Check    bool   // 只比较生成结果与磁盘文件，不写入
	DryRun   bool   // 只生成不写入
	Manifest string // 生成方法清单（JSON）的输出路径，为空不输出
	Header   string // 文件头模板（text/template + sprig），为空使用 DefaultHeader
}

// RunStats 运行统计信息
type RunStats struct {
	ScanDuration     time.Duration  // 扫描耗时
	GenerateDuration time.Duration  // 生成耗时
	TotalDuration    time.Duration  // 总耗时
	TargetCount      int            // 目标数量
	FileCount        int            // 生成文件数量
	Files            []string       // 生成的文件（-check 和 DryRun 下为将要生成的文件）
	StaleFiles       []string       // -check 模式下过期的文件，包括应删除的旧输出
	OrphanFiles      []string       // 不再有任何内容的旧输出文件，非 -check/DryRun 时已删除
	Reports          []MethodReport // 生成的方法
}

// HeaderData 文件头模板数据
type HeaderData struct {
	File       string   // 输出文件名
	Package    string   // 包名
	Generators []string // 输出到该文件的生成器
	Sources    []string // 源文件名
}

// Manifest 生成方法清单
type Manifest struct {
	Files   []string       `json:"files"`
	Methods []MethodReport `json:"methods"`
}

// RunWithOptions 带选项运行
func RunWithOptions(ctx context.Context, opts *RunOptions) error {
	_, err := RunWithOptionsAndStats(ctx, opts)
	return err
}

// RunWithOptionsAndStats 带选项运行并返回统计信息
// 1. 扫描指定路径的注解
// 2. 按注解层级将目标分发给对应的生成器
// 3. 执行生成器
// 4. 合并同一文件的 gg 定义并写入文件
// 5. 删除不再有内容的旧输出文件
func RunWithOptionsAndStats(ctx context.Context, opts *RunOptions) (*RunStats, error) {
	totalStart := time.Now()
	stats := &RunStats{}

	registry := opts.Registry
	if registry == nil {
		registry = globalRegistry
	}

	vocab := registry.Vocabulary()
	if vocab.IsEmpty() {
		return nil, fmt.Errorf("没有已注册的生成器")
	}

	header, err := parseHeader(opts.Header)
	if err != nil {
		return nil, err
	}

	// 扫描
	scanStart := time.Now()
	scanner := NewScanner(
		WithVocabulary(vocab),
		WithScannerVerbose(opts.Verbose),
	)
	result, err := scanner.Scan(ctx, opts.Patterns...)
	if err != nil {
		return nil, fmt.Errorf("扫描失败: %w", err)
	}
	stats.ScanDuration = time.Since(scanStart)

	stats.TargetCount = len(result.All())
	if opts.Verbose {
		if stats.TargetCount == 0 {
			fmt.Println("没有找到任何带注解的目标")
		} else {
			fmt.Printf("找到 %d 个带注解的目标 (扫描耗时: %v)\n", stats.TargetCount, stats.ScanDuration)
		}
	}

	generateStart := time.Now()

	// 分发目标，按注册顺序执行和合并
	dispatch := registry.DispatchTargets(result)
	genNames := make([]string, len(dispatch))
	for i, d := range dispatch {
		genNames[i] = d.Generator.Name()
	}

	// genResultItem 存储单个生成器的执行结果
	type genResultItem struct {
		genName string
		result  *GenerateResult
		err     error
	}

	// 执行生成器的函数
	executeGenerator := func(d Dispatch) genResultItem {
		genName, gen, targets := d.Generator.Name(), d.Generator, d.Targets

		if opts.Verbose {
			fmt.Printf("执行生成器: %s (开始处理 %d 个目标)\n", genName, len(targets))
		}

		genCtx := &GenerateContext{
			Targets:        targets,
			PackageConfigs: result.PackageConfigs,
			DefaultOutput:  opts.Output,
			Verbose:        opts.Verbose,
		}

		nt1 := time.Now()
		genResult, err := gen.Generate(genCtx)
		if opts.Verbose {
			fmt.Printf("执行生成器: %s (耗时: %v)\n", genName, time.Since(nt1))
		}

		return genResultItem{genName: genName, result: genResult, err: err}
	}

	var allErrors []error
	genResults := make(map[string]*GenerateResult)
	collect := func(item genResultItem) {
		if item.err != nil {
			allErrors = append(allErrors, fmt.Errorf("生成器 %s 执行失败: %w", item.genName, item.err))
			return
		}
		if item.result != nil {
			genResults[item.genName] = item.result
		}
	}

	if opts.Async {
		// 异步执行每个生成器
		resultChan := make(chan genResultItem, len(dispatch))
		var wg sync.WaitGroup

		for _, d := range dispatch {
			wg.Add(1)
			go func(d Dispatch) {
				defer wg.Done()
				resultChan <- executeGenerator(d)
			}(d)
		}

		// 等待所有生成器完成
		go func() {
			wg.Wait()
			close(resultChan)
		}()

		for item := range resultChan {
			collect(item)
		}
	} else {
		// 同步执行每个生成器
		for _, d := range dispatch {
			collect(executeGenerator(d))
		}
	}

	// 收集 gg 定义，按输出路径分组
	// key: 输出文件路径, value: 多个生成器可能输出到同一文件
	fileDefinitions := make(map[string][]*gg.Generator)
	// key: 输出文件路径, value: 生成器名称列表（按注册顺序），用于添加分隔符
	fileGenNames := make(map[string][]string)

	// 按注册顺序处理结果
	for _, genName := range genNames {
		genResult, ok := genResults[genName]
		if !ok {
			continue
		}

		for path, def := range genResult.Definitions {
			fileDefinitions[path] = append(fileDefinitions[path], def)
			fileGenNames[path] = append(fileGenNames[path], genName)
		}
		stats.Reports = append(stats.Reports, genResult.Reports...)
		allErrors = append(allErrors, genResult.Errors...)
	}

	// 合并同一文件的定义并写入，按路径排序保证输出顺序稳定
	paths := lo.Keys(fileDefinitions)
	slices.Sort(paths)
	for _, path := range paths {
		names := fileGenNames[path]
		merged, err := mergeDefinitionsWithSeparator(fileDefinitions[path], names)
		if err != nil {
			allErrors = append(allErrors, fmt.Errorf("合并文件 %s 的定义失败: %w", path, err))
			continue
		}

		headerText, err := renderHeader(header, HeaderData{
			File:       filepath.Base(path),
			Package:    merged.PackageName(),
			Generators: names,
			Sources:    sourcesOf(stats.Reports, path),
		})
		if err != nil {
			allErrors = append(allErrors, fmt.Errorf("生成文件 %s 的文件头失败: %w", path, err))
			continue
		}
		merged.SetHeader("%s", headerText)

		src, err := utils.FormatSource(path, merged.Bytes())
		if err != nil {
			allErrors = append(allErrors, err)
			continue
		}
		stats.Files = append(stats.Files, path)

		switch {
		case opts.Check:
			stale, err := checkFile(path, src)
			if err != nil {
				allErrors = append(allErrors, err)
			} else if stale {
				stats.StaleFiles = append(stats.StaleFiles, path)
			}
		case opts.DryRun:
			if opts.Verbose {
				fmt.Printf("将生成文件: %s\n", path)
			}
		default:
			written, err := writeGGFile(path, src)
			if err != nil {
				allErrors = append(allErrors, fmt.Errorf("写入文件 %s 失败: %w", path, err))
				continue
			}
			stats.FileCount++
			if written {
				fmt.Printf("生成文件: %s\n", path)
			} else if opts.Verbose {
				fmt.Printf("文件未变化: %s\n", path)
			}
		}
	}

	orphans, err := orphanOutputs(registry, result, opts.Output, fileDefinitions)
	if err != nil {
		allErrors = append(allErrors, err)
	}
	for _, path := range orphans {
		stats.OrphanFiles = append(stats.OrphanFiles, path)
		switch {
		case opts.Check:
			fmt.Printf("文件已过期（没有需要生成的内容，应删除）: %s\n", path)
			stats.StaleFiles = append(stats.StaleFiles, path)
		case opts.DryRun:
			if opts.Verbose {
				fmt.Printf("将删除文件: %s\n", path)
			}
		case len(allErrors) > 0:
			// 有错误时保留旧文件，避免注解写错时丢失上一次的输出
			fmt.Printf("存在错误，保留旧文件: %s\n", path)
		default:
			if err := os.Remove(path); err != nil {
				allErrors = append(allErrors, fmt.Errorf("删除文件 %s 失败: %w", path, err))
				continue
			}
			fmt.Printf("删除文件: %s\n", path)
		}
	}

	if opts.Manifest != "" {
		if err := writeManifest(opts.Manifest, stats); err != nil {
			allErrors = append(allErrors, fmt.Errorf("写入清单 %s 失败: %w", opts.Manifest, err))
		}
	}

	stats.GenerateDuration = time.Since(generateStart)
	stats.TotalDuration = time.Since(totalStart)

	if len(allErrors) > 0 {
		for _, e := range allErrors {
			fmt.Printf("错误: %v\n", e)
		}
		return stats, fmt.Errorf("生成过程中出现 %d 个错误", len(allErrors))
	}

	if len(stats.StaleFiles) > 0 {
		return stats, fmt.Errorf("%w: %d 个文件需要重新生成", ErrStale, len(stats.StaleFiles))
	}

	return stats, nil
}

// generatedMarker Go 约定的生成文件标记
var generatedMarker = regexp.MustCompile(`(?m)^// Code generated .* DO NOT EDIT\.$`)

// orphanOutputs 找出本次没有任何定义、但磁盘上仍存在的旧输出文件。
// 候选路径由每个源文件按各生成器的输出规则计算，只认带生成标记的文件。
func orphanOutputs(registry *Registry, result *ScanResult, cmdOutput string, produced map[string][]*gg.Generator) ([]string, error) {
	sources := make(map[string]bool, len(result.Sources))
	for _, src := range result.Sources {
		sources[src] = true
	}

	seen := make(map[string]bool)
	var orphans []string
	for _, src := range result.Sources {
		pkgName, err := packageName(src)
		if err != nil {
			// 语法错误的文件由扫描阶段报告
			continue
		}
		target := &Target{PackageName: pkgName, FilePath: src}
		pkgConfig := result.PackageConfigs[filepath.Dir(src)]

		for _, gen := range registry.Generators() {
			path := GetOutputPath(target, gen.DefaultOutput(), pkgConfig, gen.Name(), cmdOutput)
			if seen[path] || sources[path] {
				continue
			}
			seen[path] = true
			if _, ok := produced[path]; ok {
				continue
			}

			content, err := os.ReadFile(path)
			if os.IsNotExist(err) {
				continue
			}
			if err != nil {
				return orphans, fmt.Errorf("读取 %s 失败: %w", path, err)
			}
			if !generatedMarker.Match(content) {
				continue
			}
			orphans = append(orphans, path)
		}
	}
	slices.Sort(orphans)
	return orphans, nil
}

// packageName 只解析 package 子句
func packageName(path string) (string, error) {
	file, err := parser.ParseFile(token.NewFileSet(), path, nil, parser.PackageClauseOnly)
	if err != nil {
		return "", err
	}
	return file.Name.Name, nil
}

// mergeDefinitionsWithSeparator 合并多个 gg.Generator 定义到一个文件，并添加分隔符
func mergeDefinitionsWithSeparator(definitions []*gg.Generator, genNames []string) (*gg.Generator, error) {
	if len(definitions) == 0 {
		return nil, fmt.Errorf("没有定义需要合并")
	}

	merged := gg.New()

	// 收集包名
	var pkgName string
	for _, def := range definitions {
		if def.PackageName() != "" {
			if pkgName == "" {
				pkgName = def.PackageName()
			} else if pkgName != def.PackageName() {
				return nil, fmt.Errorf("包名不一致: %s vs %s", pkgName, def.PackageName())
			}
		}
	}
	if pkgName != "" {
		merged.SetPackage(pkgName)
	}

	// 只有一个生成器时不加分隔符
	if len(definitions) == 1 {
		merged.Merge(definitions[0])
		return merged, nil
	}

	// 直接使用 Merge，它会正确处理 imports 和别名
	for i, def := range definitions {
		genName := "unknown"
		if i < len(genNames) {
			genName = genNames[i]
		}
		merged.Body().AddLine()
		merged.Body().AddString(fmt.Sprintf("// ================ %s ================", genName))
		merged.Body().AddLine()

		merged.Merge(def)
	}

	return merged, nil
}

// writeGGFile 写入格式化后的代码，内容未变化时不写，返回是否写入
func writeGGFile(path string, src []byte) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, src) {
		return false, nil
	}
	if err := utils.WriteFile(path, src); err != nil {
		return false, err
	}
	return true, nil
}

// checkFile 比较生成结果与磁盘文件，不一致时打印 unified diff
func checkFile(path string, src []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("读取 %s 失败: %w", path, err)
	}
	if bytes.Equal(existing, src) {
		return false, nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(existing)),
		B:        difflib.SplitLines(string(src)),
		FromFile: path,
		ToFile:   path + " (生成)",
		Context:  3,
	})
	if err != nil {
		return true, fmt.Errorf("计算 %s 的差异失败: %w", path, err)
	}
	fmt.Printf("文件已过期: %s\n%s", path, diff)
	return true, nil
}

// parseHeader 解析文件头模板，可用 sprig 函数
func parseHeader(text string) (*template.Template, error) {
	if text == "" {
		text = DefaultHeader
	}
	tmpl, err := template.New("header").Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("解析文件头模板失败: %w", err)
	}
	return tmpl, nil
}

// renderHeader 渲染文件头，结果折叠为一行
func renderHeader(tmpl *template.Template, data HeaderData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(buf.String()), " "), nil
}

// sourcesOf 输出到 path 的源文件名
func sourcesOf(reports []MethodReport, path string) []string {
	var sources []string
	for _, r := range reports {
		if r.Output == path {
			sources = append(sources, filepath.Base(r.Source))
		}
	}
	sources = lo.Uniq(sources)
	slices.Sort(sources)
	return sources
}

// writeManifest 写入 JSON 清单
func writeManifest(path string, stats *RunStats) error {
	manifest := Manifest{
		Files:   stats.Files,
		Methods: stats.Reports,
	}
	if manifest.Files == nil {
		manifest.Files = []string{}
	}
	if manifest.Methods == nil {
		manifest.Methods = []MethodReport{}
	}
	data, err := sonic.ConfigStd.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	return utils.WriteFile(path, append(data, '\n'))
}

// GetOutputPath 根据配置和默认规则计算输出路径
// 优先级：包级插件配置 > 包级默认配置 > 命令行参数 > 默认文件名
// 模板变量：
//   - $FILE: 源文件名（不含 .go 后缀）
//   - $PACKAGE: 包名
func GetOutputPath(target *Target, defaultFileName string, pkgConfig *PackageConfig, pluginName string, cmdOutput string) string {
	var output string

	// 1. 优先使用包级配置
	if pkgConfig != nil {
		output = pkgConfig.GetPluginOutput(strings.ToLower(pluginName))
	}

	// 2. 其次使用命令行参数
	if output == "" && cmdOutput != "" {
		output = cmdOutput
	}

	// 3. 如果都没有，使用默认输出
	if output == "" {
		return defaultOutputPath(target, defaultFileName)
	}

	// 处理模板变量
	output = replaceTemplateVars(output, target)

	// 确保有 .go 后缀
	if !strings.HasSuffix(output, ".go") {
		output += ".go"
	}

	if filepath.IsAbs(output) {
		return output
	}
	// 相对于源文件目录
	return filepath.Join(filepath.Dir(target.FilePath), output)
}

// replaceTemplateVars 替换模板变量
func replaceTemplateVars(tpl string, target *Target) string {
	fileName := strings.TrimSuffix(filepath.Base(target.FilePath), ".go")
	tpl = strings.ReplaceAll(tpl, "$FILE", fileName)
	tpl = strings.ReplaceAll(tpl, "$PACKAGE", target.PackageName)
	return tpl
}

// defaultOutputPath 获取默认输出路径
func defaultOutputPath(target *Target, defaultFileName string) string {
	if defaultFileName == "" {
		defaultFileName = "generate.go"
	}
	defaultFileName = replaceTemplateVars(defaultFileName, target)
	return filepath.Join(filepath.Dir(target.FilePath), defaultFileName)
}
