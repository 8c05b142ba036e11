package plugin

import (
	"bufio"
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// Scanner 两阶段并行注解扫描器
// 第一阶段：快速文本匹配，找出可能包含注解的文件
// 第二阶段：对匹配的文件进行 AST 解析
type Scanner struct {
	workers int
	verbose bool

	// vocabulary 为空时任意 @name 都算注解
	vocabulary Vocabulary
}

// ScannerOption 扫描器选项
type ScannerOption func(*Scanner)

func WithScannerVerbose(v bool) ScannerOption {
	return func(s *Scanner) {
		s.verbose = v
	}
}

// WithVocabulary 只识别词汇表中的注解，并按层级区分
func WithVocabulary(v Vocabulary) ScannerOption {
	return func(s *Scanner) {
		s.vocabulary = v
	}
}

func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// annotationNameRegex 匹配 @name，@ 前不能是标识符字符（排除邮箱）
var annotationNameRegex = regexp.MustCompile(`(?:^|[^\w])@(\w+)`)

// directivePrefix 包级配置指令
const directivePrefix = "go:trlgen:"

// generatedSuffixes 生成的文件不参与扫描
var generatedSuffixes = []string{"_test.go", "_accessors.go", "_gen.go"}

// Scan 扫描指定路径
// 支持: ./... ./pkg/... ./pkg /abs/path/... file.go
func (s *Scanner) Scan(ctx context.Context, patterns ...string) (*ScanResult, error) {
	// 收集所有文件
	allFiles, sources, err := s.collectFiles(patterns)
	if err != nil {
		return nil, err
	}

	if len(allFiles) == 0 {
		return &ScanResult{Sources: sources}, nil
	}

	// ========== 第一阶段：快速匹配 ==========
	matchedFiles, err := s.quickMatch(ctx, allFiles)
	if err != nil {
		return nil, err
	}

	if len(matchedFiles) == 0 {
		return &ScanResult{Sources: sources}, nil
	}

	// ========== 第二阶段：AST 解析 ==========
	result, err := s.parseFiles(ctx, matchedFiles)
	if err != nil {
		return nil, err
	}
	result.Sources = sources
	return result, nil
}

// runWorkers 用 workers 个 goroutine 并行处理 files，ctx 取消后停止派发
func runWorkers[T any](ctx context.Context, workers int, files []string, fn func(string) T) <-chan T {
	resultCh := make(chan T, len(files))
	fileCh := make(chan string)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range fileCh {
				resultCh <- fn(file)
			}
		}()
	}

	// 发送文件
	go func() {
		defer close(fileCh)
		for _, file := range files {
			select {
			case <-ctx.Done():
				return
			case fileCh <- file:
			}
		}
	}()

	// 等待完成
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	return resultCh
}

// quickMatch 第一阶段：快速文本匹配
// 并行读取文件，检查是否包含 @xxx 模式
func (s *Scanner) quickMatch(ctx context.Context, files []string) ([]string, error) {
	type matchResult struct {
		file    string
		matched bool
		err     error
	}

	results := runWorkers(ctx, s.workers, files, func(file string) matchResult {
		matched, err := s.QuickMatchFile(file)
		return matchResult{file: file, matched: matched, err: err}
	})

	// 收集匹配的文件
	var matchedFiles []string
	for r := range results {
		if r.err != nil {
			if s.verbose {
				fmt.Printf("警告: 读取 %s 失败: %v\n", r.file, r.err)
			}
			continue
		}
		if r.matched {
			matchedFiles = append(matchedFiles, r.file)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return matchedFiles, nil
}

// QuickMatchFile 快速检查文件是否包含注解或 go:trlgen 配置
// 用于 dev 模式判断文件是否需要触发代码生成
func (s *Scanner) QuickMatchFile(filePath string) (bool, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return false, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		idx := strings.Index(line, "//")
		if idx < 0 {
			idx = strings.Index(line, "/*")
		}
		if idx < 0 && !strings.HasPrefix(strings.TrimSpace(line), "*") {
			continue
		}

		// 支持 //go:trlgen: 和 // go:trlgen:
		if strings.Contains(line, directivePrefix) {
			return true, nil
		}

		if len(s.annotationNames(line, 0)) > 0 {
			return true, nil
		}
	}

	return false, scanner.Err()
}

// annotationNames 文本中出现的注解名。
// level 为 0 时接受词汇表中任意层级的名称，否则只接受该层级的名称。
func (s *Scanner) annotationNames(text string, level Level) []string {
	var names []string
	for _, match := range annotationNameRegex.FindAllStringSubmatch(text, -1) {
		name := match[1]
		if !s.vocabulary.IsEmpty() {
			got, ok := s.vocabulary.LevelOf(name)
			if !ok || (level != 0 && got != level) {
				continue
			}
		}
		names = append(names, name)
	}
	return names
}

// fileResult 单个文件的解析结果
type fileResult struct {
	structs   []*AnnotatedTarget
	pkgConfig *PackageConfig
	err       error
}

// parseFiles 第二阶段：AST 解析
func (s *Scanner) parseFiles(ctx context.Context, files []string) (*ScanResult, error) {
	results := runWorkers(ctx, s.workers, files, s.parseFile)

	// 收集结果
	result := &ScanResult{
		PackageConfigs: make(map[string]*PackageConfig),
	}
	for r := range results {
		if r.err != nil {
			fmt.Printf("警告: %v\n", r.err)
			continue
		}
		result.Structs = append(result.Structs, r.structs...)
		if r.pkgConfig != nil {
			mergePackageConfig(result.PackageConfigs, r.pkgConfig)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 并行收集的顺序不固定，按文件和行号排序保证输出稳定
	slices.SortFunc(result.Structs, func(a, b *AnnotatedTarget) int {
		if c := strings.Compare(a.Target.FilePath, b.Target.FilePath); c != 0 {
			return c
		}
		return a.Target.Line - b.Target.Line
	})

	return result, nil
}

// mergePackageConfig 合并同一包内多个文件的配置，后发现的覆盖先发现的
func mergePackageConfig(configs map[string]*PackageConfig, cfg *PackageConfig) {
	pkgDir := cfg.PackageDir
	existing, ok := configs[pkgDir]
	if !ok {
		configs[pkgDir] = cfg
		return
	}

	if cfg.DefaultOutput != "" {
		if existing.DefaultOutput != "" && existing.DefaultOutput != cfg.DefaultOutput {
			fmt.Printf("警告: 包 %s 中存在多个不同的 go:trlgen 默认输出配置，使用后发现的配置\n", pkgDir)
		}
		existing.DefaultOutput = cfg.DefaultOutput
	}
	for k, v := range cfg.PluginOutputs {
		if existingV, ok := existing.PluginOutputs[k]; ok && existingV != v {
			fmt.Printf("警告: 包 %s 中插件 %s 存在多个不同的输出配置，使用后发现的配置\n", pkgDir, k)
		}
		existing.PluginOutputs[k] = v
	}
}

// parseFile AST 解析单个文件
func (s *Scanner) parseFile(filePath string) fileResult {
	var result fileResult

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filePath, nil, parser.ParseComments)
	if err != nil {
		result.err = fmt.Errorf("解析 %s 失败: %w", filePath, err)
		return result
	}

	// 解析包级 go:trlgen: 配置
	result.pkgConfig = s.parsePackageConfig(file, filePath)

	for _, decl := range file.Decls {
		d, ok := decl.(*ast.GenDecl)
		if !ok || d.Tok != token.TYPE {
			continue
		}
		result.structs = append(result.structs, s.parseTypeDecl(fset, filePath, file.Name.Name, d)...)
	}

	return result
}

// parseTypeDecl 解析类型声明
// 结构体文档注释和字段注释中出现的注解都会使结构体成为目标
func (s *Scanner) parseTypeDecl(fset *token.FileSet, filePath, packageName string, decl *ast.GenDecl) []*AnnotatedTarget {
	var targets []*AnnotatedTarget

	for _, spec := range decl.Specs {
		typeSpec, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}
		structType, ok := typeSpec.Type.(*ast.StructType)
		if !ok {
			continue
		}

		var recordNames, fieldNames []string
		// 分组声明的文档注释属于整个分组，不属于某个结构体
		if !decl.Lparen.IsValid() {
			recordNames = append(recordNames, s.commentNames(decl.Doc, LevelRecord)...)
		}
		recordNames = append(recordNames, s.commentNames(typeSpec.Doc, LevelRecord)...)
		for _, field := range structType.Fields.List {
			fieldNames = append(fieldNames, s.commentNames(field.Doc, LevelField)...)
			fieldNames = append(fieldNames, s.commentNames(field.Comment, LevelField)...)
		}
		if len(recordNames) == 0 && len(fieldNames) == 0 {
			continue
		}

		targets = append(targets, &AnnotatedTarget{
			Target: &Target{
				Name:        typeSpec.Name.Name,
				PackageName: packageName,
				FilePath:    filePath,
				Line:        fset.Position(typeSpec.Pos()).Line,
			},
			RecordAnnotations: lo.Uniq(recordNames),
			FieldAnnotations:  lo.Uniq(fieldNames),
		})
	}

	return targets
}

func (s *Scanner) commentNames(cg *ast.CommentGroup, level Level) []string {
	if cg == nil {
		return nil
	}
	var names []string
	for _, c := range cg.List {
		names = append(names, s.annotationNames(c.Text, level)...)
	}
	return names
}

// collectFiles 收集所有需要扫描的文件。
// sources 只包含通过目录收集到的文件：只有完整扫描过的目录才能判断旧输出是否过期。
func (s *Scanner) collectFiles(patterns []string) (files, sources []string, err error) {
	seen := make(map[string]bool)
	seenSource := make(map[string]bool)

	add := func(path string, fromDir bool) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
		if fromDir && !seenSource[path] {
			seenSource[path] = true
			sources = append(sources, path)
		}
	}

	for _, pattern := range patterns {
		recursive := strings.HasSuffix(pattern, "/...")
		if recursive {
			pattern = strings.TrimSuffix(pattern, "/...")
		}

		absPath, err := filepath.Abs(pattern)
		if err != nil {
			return nil, nil, err
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, nil, err
		}

		if !info.IsDir() {
			if strings.HasSuffix(absPath, ".go") {
				add(absPath, false)
			}
			continue
		}

		err = filepath.WalkDir(absPath, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				if path == absPath {
					return nil
				}
				name := d.Name()
				if !recursive || strings.HasPrefix(name, ".") || name == "vendor" || name == "testdata" {
					return filepath.SkipDir
				}
				return nil
			}

			if isSourceFile(path) {
				add(path, true)
			}
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
	}

	return files, sources, nil
}

func isSourceFile(path string) bool {
	if !strings.HasSuffix(path, ".go") {
		return false
	}
	for _, suffix := range generatedSuffixes {
		if strings.HasSuffix(path, suffix) {
			return false
		}
	}
	return true
}

// directiveRegex 匹配 go:trlgen: 指令
// 支持两种格式：//go:trlgen: 和 // go:trlgen:
var directiveRegex = regexp.MustCompile(`go:trlgen:\s*(.*)`)

// parsePackageConfig 解析包级 go:trlgen: 配置
// 支持格式:
//
//	//go:trlgen: -output `$FILE_accessors`
//	// go:trlgen: plugin:trlgen -output `zz_accessors`
func (s *Scanner) parsePackageConfig(file *ast.File, filePath string) *PackageConfig {
	var lines []string

	// 收集所有 go:trlgen: 注释
	for _, cg := range file.Comments {
		for _, c := range cg.List {
			text := strings.TrimPrefix(c.Text, "//")
			text = strings.TrimPrefix(text, "/*")
			text = strings.TrimSuffix(text, "*/")
			text = strings.TrimSpace(text)

			if !strings.HasPrefix(text, directivePrefix) {
				continue
			}
			if matches := directiveRegex.FindStringSubmatch(text); len(matches) > 1 {
				lines = append(lines, matches[1])
			}
		}
	}

	if len(lines) == 0 {
		return nil
	}

	// 检查是否有多个 go:trlgen: 定义
	if len(lines) > 1 {
		fmt.Printf("警告: 文件 %s 定义了多个 go:trlgen: 指令，将被忽略\n", filePath)
		return nil
	}

	return parseDirectiveLine(lines[0], filePath)
}

// parseDirectiveLine 解析单行 go:trlgen: 配置
// 格式:
//
//	-output `xxx`                                    // 默认输出
//	plugin:trlgen -output `xxx` plugin:other -output `yyy`  // 插件特定输出
func parseDirectiveLine(line string, filePath string) *PackageConfig {
	config := &PackageConfig{
		PackageDir:    filepath.Dir(filePath),
		PluginOutputs: make(map[string]string),
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	parts := splitDirectiveArgs(line)

	var currentPlugin string
	for i := 0; i < len(parts); i++ {
		part := parts[i]

		if strings.HasPrefix(part, "plugin:") {
			// 切换到特定插件
			currentPlugin = strings.ToLower(strings.TrimPrefix(part, "plugin:"))
		} else if part == "-output" && i+1 < len(parts) {
			i++
			output := trimQuotes(parts[i])
			if currentPlugin == "" {
				config.DefaultOutput = output
			} else {
				config.PluginOutputs[currentPlugin] = output
			}
		}
	}

	// 如果没有任何配置，返回 nil
	if config.DefaultOutput == "" && len(config.PluginOutputs) == 0 {
		return nil
	}

	return config
}

// splitDirectiveArgs 分割指令参数，支持引号内的空格
func splitDirectiveArgs(line string) []string {
	var parts []string
	var current strings.Builder
	quoteChar := byte(0)

	for i := 0; i < len(line); i++ {
		c := line[i]

		switch {
		case quoteChar == 0 && (c == '`' || c == '"' || c == '\''):
			quoteChar = c
			current.WriteByte(c)
		case quoteChar != 0 && c == quoteChar:
			quoteChar = 0
			current.WriteByte(c)
		case quoteChar == 0 && (c == ' ' || c == '\t'):
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteByte(c)
		}
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}

// trimQuotes 去除引号
func trimQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '`' && s[len(s)-1] == '`') ||
			(s[0] == '"' && s[len(s)-1] == '"') ||
			(s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
