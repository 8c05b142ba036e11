package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"
	"golang.org/x/tools/imports"

	"github.com/donutnomad/trlgen/plugin"
)

// DevOptions dev 命令选项
type DevOptions struct {
	Patterns []string      // 监听的路径模式
	Verbose  bool          // 详细输出
	Output   string        // 默认输出路径
	Header   string        // 文件头模板
	Async    bool          // 异步执行
	Debounce time.Duration // 防抖动时间
}

// defaultDebounce 同一包目录连续变动时，最后一次变动后等待的时间
const defaultDebounce = 2 * time.Second

// devRunner 处理文件变动的核心逻辑
type devRunner struct {
	opts     *DevOptions
	registry *plugin.Registry
	watcher  *fsnotify.Watcher
	scanner  *plugin.Scanner
	ctx      context.Context // 用于响应退出信号

	// generate 执行一个包目录的生成，默认为 runGenerate
	generate func(pkgDir string)

	// 防抖动相关
	mu          sync.Mutex
	pendingDirs map[string]*pendingRun // key: 包目录路径
}

// pendingRun 一个包目录的防抖动状态。
// 同一目录同一时间最多只有一次生成在执行。
type pendingRun struct {
	timer   *time.Timer
	seq     int  // 每次重新计时加一，过期的定时器据此忽略
	running bool // 正在生成
	again   bool // 生成期间又有变动，结束后重新计时
}

// runDev 启动开发模式
func runDev(args []string) {
	opts := &DevOptions{
		Patterns: patternsOf(args),
		Verbose:  *verbose,
		Output:   *output,
		Header:   *header,
		Async:    *async,
		Debounce: defaultDebounce,
	}

	if err := dev(mustRegistry(), opts); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

// dev 启动开发模式
func dev(registry *plugin.Registry, opts *DevOptions) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听退出信号
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\n正在退出...")
		cancel()
	}()

	// 创建 watcher
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监听器失败: %w", err)
	}
	defer watcher.Close()

	runner := newDevRunner(ctx, registry, opts)
	runner.watcher = watcher

	// 退出时停止所有待处理的定时器
	defer runner.stop()

	// 收集并添加监听目录
	dirs, err := collectWatchDirs(opts.Patterns)
	if err != nil {
		return fmt.Errorf("收集监听目录失败: %w", err)
	}

	if len(dirs) == 0 {
		return fmt.Errorf("没有找到需要监听的目录")
	}

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("添加监听目录失败 %s: %w", dir, err)
		}
		if opts.Verbose {
			fmt.Printf("监听目录: %s\n", dir)
		}
	}

	fmt.Printf("开发模式已启动，监听 %d 个目录\n", len(dirs))
	fmt.Println("按 Ctrl+C 退出")
	fmt.Println()

	// 启动事件处理循环
	return runner.watchLoop(ctx)
}

func newDevRunner(ctx context.Context, registry *plugin.Registry, opts *DevOptions) *devRunner {
	r := &devRunner{
		opts:        opts,
		registry:    registry,
		scanner:     plugin.NewScanner(plugin.WithVocabulary(registry.Vocabulary())),
		ctx:         ctx,
		pendingDirs: make(map[string]*pendingRun),
	}
	r.generate = r.runGenerate
	return r
}

// stop 停止所有待处理的定时器
func (r *devRunner) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.pendingDirs {
		if p.timer != nil {
			p.timer.Stop()
		}
	}
}

// watchLoop 事件处理循环
func (r *devRunner) watchLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			r.handleEvent(event)

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			if r.opts.Verbose {
				fmt.Printf("监听错误: %v\n", err)
			}
		}
	}
}

// handleEvent 处理文件事件，返回是否触发了生成
func (r *devRunner) handleEvent(event fsnotify.Event) bool {
	// 新建的子目录加入监听
	if event.Op.Has(fsnotify.Create) && r.watcher != nil {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !skipDir(info.Name()) {
			if err := r.watcher.Add(event.Name); err == nil && r.opts.Verbose {
				fmt.Printf("监听目录: %s\n", event.Name)
			}
			return false
		}
	}

	filePath := event.Name

	// 只处理源文件，写入生成文件不应再次触发生成
	if !strings.HasSuffix(filePath, ".go") || isGeneratedFile(filePath) {
		return false
	}

	pkgDir := filepath.Dir(filePath)

	// 源文件被删除或改名时，旧输出需要清理
	if event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
		if !r.hasOutput(filePath) {
			return false
		}
		if r.opts.Verbose {
			fmt.Printf("源文件已移除: %s\n", filePath)
		}
		r.scheduleGenerate(pkgDir)
		return true
	}

	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
		return false
	}

	if r.opts.Verbose {
		fmt.Printf("检测到文件变化: %s\n", filePath)
	}

	// 检查文件是否包含注解
	hasAnnotation, err := r.scanner.QuickMatchFile(filePath)
	if err != nil {
		if r.opts.Verbose {
			fmt.Printf("检查注解失败 %s: %v\n", filePath, err)
		}
		return false
	}

	// 没有注解但有旧输出：注解刚被删掉，需要重新生成以清理旧输出
	if !hasAnnotation && !r.hasOutput(filePath) {
		if r.opts.Verbose {
			fmt.Printf("跳过文件（无注解）: %s\n", filePath)
		}
		return false
	}

	// 检查语法错误
	if err := checkSyntax(filePath); err != nil {
		fmt.Printf("语法错误 %s: %v\n", filePath, err)
		return false
	}

	r.scheduleGenerate(pkgDir)
	return true
}

// hasOutput 源文件按各生成器的默认规则是否已有输出文件
func (r *devRunner) hasOutput(filePath string) bool {
	target := &plugin.Target{FilePath: filePath}
	for _, gen := range r.registry.Generators() {
		path := plugin.GetOutputPath(target, gen.DefaultOutput(), nil, gen.Name(), r.opts.Output)
		if _, err := os.Stat(path); err == nil {
			return true
		}
	}
	return false
}

// scheduleGenerate 防抖动调度生成
func (r *devRunner) scheduleGenerate(pkgDir string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scheduleLocked(pkgDir)
}

func (r *devRunner) scheduleLocked(pkgDir string) {
	p, ok := r.pendingDirs[pkgDir]
	if !ok {
		p = &pendingRun{}
		r.pendingDirs[pkgDir] = p
	}

	// 正在生成时只做标记，结束后重新计时
	if p.running {
		p.again = true
		return
	}

	if p.timer != nil {
		p.timer.Stop()
	}
	p.seq++
	seq := p.seq
	p.timer = time.AfterFunc(r.opts.Debounce, func() {
		r.fire(pkgDir, p, seq)
	})
}

// fire 定时器到期后执行生成
func (r *devRunner) fire(pkgDir string, p *pendingRun, seq int) {
	r.mu.Lock()
	// Stop 无法撤回已经开始执行的回调，用 seq 识别过期的定时器
	if r.pendingDirs[pkgDir] != p || p.seq != seq || p.running {
		r.mu.Unlock()
		return
	}
	if r.ctx.Err() != nil {
		delete(r.pendingDirs, pkgDir)
		r.mu.Unlock()
		return
	}
	p.running = true
	p.timer = nil
	r.mu.Unlock()

	r.generate(pkgDir)

	r.mu.Lock()
	defer r.mu.Unlock()
	p.running = false
	if p.again && r.ctx.Err() == nil {
		p.again = false
		r.scheduleLocked(pkgDir)
		return
	}
	delete(r.pendingDirs, pkgDir)
}

// runGenerate 执行实际的代码生成
func (r *devRunner) runGenerate(pkgDir string) {
	if r.opts.Verbose {
		fmt.Printf("触发代码生成: %s\n", pkgDir)
	}

	opts := &plugin.RunOptions{
		Registry: r.registry,
		Patterns: []string{pkgDir}, // 只生成变动的包
		Verbose:  r.opts.Verbose,
		Output:   r.opts.Output,
		Header:   r.opts.Header,
		Async:    r.opts.Async,
	}

	stats, err := plugin.RunWithOptionsAndStats(r.ctx, opts)
	if err != nil {
		fmt.Printf("生成失败: %v\n", err)
		return
	}

	if stats == nil {
		return
	}
	if stats.FileCount > 0 || len(stats.OrphanFiles) > 0 {
		fmt.Printf("生成完成: %d 个文件, %d 个方法, 删除 %d 个旧文件 (耗时: %v)\n",
			stats.FileCount, len(stats.Reports), len(stats.OrphanFiles), stats.TotalDuration)
		for _, line := range recordSummary(stats.Reports) {
			fmt.Printf("  %s\n", line)
		}
	} else if r.opts.Verbose {
		fmt.Printf("生成完成: 无文件生成\n")
	}
}

// recordSummary 每个结构体生成的方法数，按结构体名排序
func recordSummary(reports []plugin.MethodReport) []string {
	counts := lo.CountValuesBy(reports, func(r plugin.MethodReport) string {
		return r.Package + "." + r.Record
	})
	names := lo.Keys(counts)
	slices.Sort(names)
	return lo.Map(names, func(name string, _ int) string {
		return fmt.Sprintf("%s: %d 个方法", name, counts[name])
	})
}

// checkSyntax 检查文件语法
func checkSyntax(filePath string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	_, err = imports.Process(filePath, content, &imports.Options{
		Fragment:   true,
		AllErrors:  true,
		Comments:   true,
		FormatOnly: true, // 只检查语法，不修改 imports
	})

	return err
}

// collectWatchDirs 收集所有需要监听的目录
func collectWatchDirs(patterns []string) ([]string, error) {
	var dirs []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		recursive := strings.HasSuffix(pattern, "/...")
		baseDir := strings.TrimSuffix(pattern, "/...")

		absDir, err := filepath.Abs(baseDir)
		if err != nil {
			return nil, err
		}

		info, err := os.Stat(absDir)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			continue
		}

		if recursive {
			// 递归收集所有子目录
			err := filepath.WalkDir(absDir, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}

				if !d.IsDir() {
					return nil
				}

				if path != absDir && skipDir(d.Name()) {
					return filepath.SkipDir
				}

				if !seen[path] {
					seen[path] = true
					dirs = append(dirs, path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else {
			if !seen[absDir] {
				seen[absDir] = true
				dirs = append(dirs, absDir)
			}
		}
	}

	return dirs, nil
}

// skipDir 跳过隐藏目录、vendor 和 testdata
func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "vendor" || name == "testdata"
}

// isGeneratedFile 检查是否是生成的文件，写入生成文件不应再次触发生成
func isGeneratedFile(filePath string) bool {
	base := filepath.Base(filePath)
	return strings.HasSuffix(base, "_test.go") ||
		strings.HasSuffix(base, "_accessors.go") ||
		strings.HasSuffix(base, "_gen.go")
}
