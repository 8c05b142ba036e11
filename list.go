package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/olekukonko/tablewriter"

	"github.com/donutnomad/trlgen/plugin"
)

// runList 列出将要生成的方法，不写入文件
func runList(args []string) {
	opts := &plugin.RunOptions{
		Registry: mustRegistry(),
		Patterns: patternsOf(args),
		Verbose:  *verbose,
		Output:   *output,
		Async:    *async,
		DryRun:   true,
		Header:   *header,
	}

	stats, err := plugin.RunWithOptionsAndStats(context.Background(), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}

	if stats == nil || len(stats.Reports) == 0 {
		fmt.Println("没有需要生成的方法")
		return
	}

	cwd, _ := os.Getwd()
	printReports(os.Stdout, cwd, stats.Reports)
}

// printReports 以表格形式输出方法记录，路径相对于 base 显示
func printReports(w io.Writer, base string, reports []plugin.MethodReport) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Output", "Record", "Annotation", "Method", "Signature", "Visibility"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	for _, r := range reports {
		table.Append([]string{
			relPath(base, r.Output),
			r.Record,
			"@" + r.Annotation,
			r.Name,
			r.Signature,
			r.Visibility,
		})
	}

	table.SetFooter([]string{"", "", "", "", "Total", fmt.Sprintf("%d", len(reports))})
	table.Render()

	_, _ = w.Write(buf.Bytes())
}

func relPath(base, path string) string {
	if base == "" {
		return path
	}
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}
