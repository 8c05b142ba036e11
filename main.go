package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cast"

	"github.com/donutnomad/trlgen/plugin"
	"github.com/donutnomad/trlgen/trlgen"
)

func init() {
	plugin.MustRegister(trlgen.NewGenerator())
}

var (
	verbose  = flag.Bool("v", envBool("TRLGEN_VERBOSE", false), "详细输出（环境变量 TRLGEN_VERBOSE）")
	help     = flag.Bool("h", false, "显示帮助信息")
	output   = flag.String("output", "", "默认输出路径（支持模板变量 $FILE, $PACKAGE），为空时使用 $FILE_accessors.go")
	async    = flag.Bool("async", envBool("TRLGEN_ASYNC", true), "异步执行生成器（环境变量 TRLGEN_ASYNC）")
	check    = flag.Bool("check", false, "只检查生成文件是否最新，不写入；过期时退出码为 2")
	manifest = flag.String("manifest", "", "将生成的方法清单写入 JSON 文件")
	header   = flag.String("header", plugin.DefaultHeader, "生成文件头模板（text/template + sprig）")
)

// envBool 读取布尔环境变量，无法解析时使用默认值
func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *help {
		usage()
		os.Exit(0)
	}

	args := flag.Args()

	// 默认命令是 gen
	if len(args) == 0 {
		runGen([]string{"./..."})
		return
	}

	cmd := args[0]
	switch cmd {
	case "gen":
		runGen(args[1:])
	case "dev":
		runDev(args[1:])
	case "list":
		runList(args[1:])
	default:
		// 不是子命令，当作路径参数处理，执行 gen
		runGen(args)
	}
}

func patternsOf(args []string) []string {
	if len(args) == 0 {
		return []string{"./..."}
	}
	return args
}

func mustRegistry() *plugin.Registry {
	registry := plugin.Global()
	if len(registry.Generators()) == 0 {
		fmt.Fprintln(os.Stderr, "错误: 没有已注册的生成器")
		os.Exit(1)
	}
	return registry
}

func runGen(args []string) {
	patterns := patternsOf(args)
	registry := mustRegistry()

	if *verbose {
		fmt.Printf("已注册 %d 个生成器:\n", len(registry.Generators()))
		for _, gen := range registry.Generators() {
			anns := lo.Map(gen.Vocabulary().All(), func(item string, index int) string {
				return "@" + item
			})
			fmt.Printf("  - %s (%s)\n", gen.Name(), strings.Join(anns, ","))
		}
		fmt.Println()
	}

	opts := &plugin.RunOptions{
		Registry: registry,
		Patterns: patterns,
		Verbose:  *verbose,
		Output:   *output,
		Async:    *async,
		Check:    *check,
		Manifest: *manifest,
		Header:   *header,
	}

	stats, err := plugin.RunWithOptionsAndStats(context.Background(), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		if errors.Is(err, plugin.ErrStale) {
			for _, f := range stats.StaleFiles {
				fmt.Fprintf(os.Stderr, "  %s\n", f)
			}
			os.Exit(2)
		}
		os.Exit(1)
	}

	if stats != nil && (stats.FileCount > 0 || *verbose) {
		fmt.Printf("\n统计: 扫描 %d 个目标, 生成 %d 个文件, %d 个方法\n", stats.TargetCount, stats.FileCount, len(stats.Reports))
		fmt.Printf("耗时: 扫描 %v, 生成 %v, 总计 %v\n", stats.ScanDuration, stats.GenerateDuration, stats.TotalDuration)
	}
}

func usage() {
	_, _ = fmt.Fprintf(os.Stderr, `trlgen - 访问器与构造函数代码生成工具

用法:
  trlgen [选项] [路径...]
  trlgen gen [选项] [路径...]
  trlgen dev [选项] [路径...]
  trlgen list [选项] [路径...]

命令:
  gen     执行代码生成（默认）
  dev     启动开发模式，监听文件变动自动生成
  list    列出将要生成的方法，不写入文件

路径:
  支持 Go 包路径模式，如:
    ./...          递归扫描当前目录及子目录（默认）
    ./pkg/...      递归扫描指定目录
    ./models       只扫描 models 目录

选项:
`)
	flag.PrintDefaults()

	registry := plugin.Global()
	if len(registry.Generators()) > 0 {
		_, _ = fmt.Fprintf(os.Stderr, "\n支持的注解:\n")
		_, _ = fmt.Fprint(os.Stderr, plugin.FormatHelpText(registry))
	}

	_, _ = fmt.Fprintf(os.Stderr, `模板变量:
  $FILE     - 源文件名（不含 .go 后缀）
  $PACKAGE  - 包名

示例:
  trlgen                                    扫描当前目录（默认 ./...）
  trlgen -v ./models/...                    详细模式扫描 models 目录
  trlgen -output $FILE_gen ./...            指定输出文件名
  trlgen -check ./...                       检查生成文件是否最新（适合 CI）
  trlgen -manifest methods.json ./...       同时输出方法清单
  trlgen list ./models/...                  列出将要生成的方法
  trlgen dev ./...                          开发模式，监听文件变动
`)
}
