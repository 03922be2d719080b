package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type BenchmarkResult struct {
	Name       string
	Framework  string
	Category   string
	Scenario   string
	Iterations int64
	NsPerOp    float64
	BytesPerOp int64
	AllocsOp   int64
}

type CategoryResults struct {
	Category string
	Results  []BenchmarkResult
}

var frameworkColors = map[string]text.Colors{
	"Stiletto": {text.FgGreen, text.Bold},
	"Do":       {text.FgYellow},
	"Dig":      {text.FgMagenta},
	"Fx":       {text.FgBlue},
}

var categoryOrder = []string{
	"Bind_Simple", "Bind_Chain",
	"Resolve_Singleton", "Resolve_Chain", "Resolve_TransientChain",
	"Keyed_10",
	"Collection_10",
}

var categoryTitles = map[string]string{
	"Bind_Simple":            "Registration (single value)",
	"Bind_Chain":             "Registration (six-service chain)",
	"Resolve_Singleton":      "Resolution (singleton)",
	"Resolve_Chain":          "Resolution (singleton chain)",
	"Resolve_TransientChain": "Resolution (transient chain)",
	"Keyed_10":               "Keyed services (10 services)",
	"Collection_10":          "Collections (10 implementations)",
}

func main() {
	fmt.Println(text.Colors{text.FgCyan, text.Bold}.Sprint("Stiletto DI Benchmark Suite"))
	fmt.Println(text.Faint.Sprint("Running benchmarks..."))
	fmt.Println()

	benchDir := ".."
	if len(os.Args) > 1 && os.Args[1] != "--json" {
		benchDir = os.Args[1]
	}

	cmd := exec.Command("go", "test", "-bench=.", "-benchmem", "-count=3", "-benchtime=100ms")
	cmd.Dir = benchDir
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "Benchmark failed: %s\n", string(exitErr.Stderr))
		}
		os.Exit(1)
	}

	results := parseResults(output)
	grouped := groupByCategory(results)

	for _, cat := range grouped {
		printCategory(cat)
	}

	printSummary(grouped)

	if len(os.Args) > 1 && os.Args[len(os.Args)-1] == "--json" {
		exportJSON(results)
	}
}

func parseResults(output []byte) []BenchmarkResult {
	benchPattern := regexp.MustCompile(`^Benchmark(\w+)-\d+\s+(\d+)\s+([\d.]+) ns/op\s+(\d+) B/op\s+(\d+) allocs/op`)
	seen := make(map[string][]BenchmarkResult)
	var names []string

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		matches := benchPattern.FindStringSubmatch(scanner.Text())
		if matches == nil {
			continue
		}

		name := matches[1]
		parts := strings.Split(name, "_")
		if len(parts) < 3 {
			continue
		}

		iterations, _ := strconv.ParseInt(matches[2], 10, 64)
		nsPerOp, _ := strconv.ParseFloat(matches[3], 64)
		bytesPerOp, _ := strconv.ParseInt(matches[4], 10, 64)
		allocsOp, _ := strconv.ParseInt(matches[5], 10, 64)

		if _, ok := seen[name]; !ok {
			names = append(names, name)
		}
		seen[name] = append(
			seen[name], BenchmarkResult{
				Name:       name,
				Framework:  parts[len(parts)-1],
				Category:   parts[0],
				Scenario:   strings.Join(parts[1:len(parts)-1], "_"),
				Iterations: iterations,
				NsPerOp:    nsPerOp,
				BytesPerOp: bytesPerOp,
				AllocsOp:   allocsOp,
			},
		)
	}

	results := make([]BenchmarkResult, 0, len(names))
	for _, name := range names {
		results = append(results, average(seen[name]))
	}
	return results
}

func average(runs []BenchmarkResult) BenchmarkResult {
	var totalNs float64
	var totalBytes, totalAllocs int64
	for _, r := range runs {
		totalNs += r.NsPerOp
		totalBytes += r.BytesPerOp
		totalAllocs += r.AllocsOp
	}
	count := float64(len(runs))

	avg := runs[0]
	avg.NsPerOp = totalNs / count
	avg.BytesPerOp = int64(float64(totalBytes) / count)
	avg.AllocsOp = int64(float64(totalAllocs) / count)
	return avg
}

func groupByCategory(results []BenchmarkResult) []CategoryResults {
	groups := make(map[string][]BenchmarkResult)
	var extra []string
	for _, r := range results {
		key := r.Category + "_" + r.Scenario
		if _, ok := groups[key]; !ok && !contains(categoryOrder, key) {
			extra = append(extra, key)
		}
		groups[key] = append(groups[key], r)
	}

	var ordered []CategoryResults
	for _, key := range append(append([]string{}, categoryOrder...), extra...) {
		results, ok := groups[key]
		if !ok {
			continue
		}
		sort.Slice(
			results, func(i, j int) bool {
				return results[i].NsPerOp < results[j].NsPerOp
			},
		)
		ordered = append(ordered, CategoryResults{Category: key, Results: results})
	}
	return ordered
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func printCategory(cat CategoryResults) {
	title, ok := categoryTitles[cat.Category]
	if !ok {
		title = strings.ReplaceAll(cat.Category, "_", " ")
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Framework", "Time/op", "B/op", "Allocs/op", "Relative"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	fastest := cat.Results[0].NsPerOp
	for i, r := range cat.Results {
		relative := "fastest"
		if i > 0 && fastest > 0 {
			relative = fmt.Sprintf("%.1fx slower", r.NsPerOp/fastest)
		}

		name := r.Framework
		if colors, ok := frameworkColors[r.Framework]; ok {
			name = colors.Sprint(r.Framework)
		}

		t.AppendRow(table.Row{name, formatNs(r.NsPerOp), r.BytesPerOp, r.AllocsOp, relative})
	}

	t.Render()
	fmt.Println()
}

func formatNs(ns float64) string {
	if ns >= 1_000_000 {
		return fmt.Sprintf("%.2f ms", ns/1_000_000)
	}
	if ns >= 1_000 {
		return fmt.Sprintf("%.2f µs", ns/1_000)
	}
	return fmt.Sprintf("%.0f ns", ns)
}

func printSummary(groups []CategoryResults) {
	wins := make(map[string]int)
	for _, cat := range groups {
		wins[cat.Results[0].Framework]++
	}

	type frameworkWins struct {
		name string
		wins int
	}

	sorted := make([]frameworkWins, 0, len(wins))
	for name, count := range wins {
		sorted = append(sorted, frameworkWins{name, count})
	}
	sort.Slice(
		sorted, func(i, j int) bool {
			if sorted[i].wins != sorted[j].wins {
				return sorted[i].wins > sorted[j].wins
			}
			return sorted[i].name < sorted[j].name
		},
	)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Summary")
	t.AppendHeader(table.Row{"Framework", "Wins", "Source"})
	for _, fw := range sorted {
		t.AppendRow(table.Row{fw.name, fmt.Sprintf("%d/%d", fw.wins, len(groups)), frameworkSource(fw.name)})
	}
	t.Render()
	fmt.Println()
}

func frameworkSource(name string) string {
	switch name {
	case "Stiletto":
		return "github.com/danpasecinic/stiletto"
	case "Do":
		return "github.com/samber/do"
	case "Dig":
		return "go.uber.org/dig"
	case "Fx":
		return "go.uber.org/fx"
	default:
		return ""
	}
}

func exportJSON(results []BenchmarkResult) {
	output := struct {
		Benchmarks []BenchmarkResult `json:"benchmarks"`
	}{
		Benchmarks: results,
	}

	data, _ := json.MarshalIndent(output, "", "  ")
	_ = os.WriteFile("benchmark_results.json", data, 0o644)
	fmt.Println(text.Faint.Sprint("Results exported to benchmark_results.json"))
}
