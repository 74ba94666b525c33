package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/glint-lang/glint/pkg/compile"
	"github.com/glint-lang/glint/pkg/engine"
	"github.com/glint-lang/glint/pkg/exec"
	"github.com/glint-lang/glint/pkg/value"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:     "glint",
		Short:   "Embeddable expression and statement scripting engine",
		Version: version,
	}

	compileCmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile a source file and print its parameterized inputs",
		Args:  cobra.ExactArgs(1),
		RunE:  runCompile,
	}

	runCmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Compile and execute a source file, printing its return value",
		Args:  cobra.ExactArgs(1),
		RunE:  runRun,
	}
	runCmd.Flags().BoolP("arena", "a", false, "Execute via the flattened-arena walker instead of the tree walker")
	runCmd.Flags().StringArrayP("var", "v", nil, "Bind a parameterized input as name=value (repeatable)")

	watchCmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-run a source file every time it changes on disk",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch,
	}

	rootCmd.AddCommand(compileCmd, runCmd, watchCmd)

	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func runCompile(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	source, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filePath, err)
	}

	start := time.Now()
	e := engine.New()
	ast, err := e.Compile(string(source), compile.New())
	if err != nil {
		printError(err)
		return err
	}
	elapsed := time.Since(start)

	printSuccess(fmt.Sprintf("compiled %s", filePath))
	printInfo(fmt.Sprintf("compile time: %s", elapsed))

	params := ast.ParameterizedVariables()
	if len(params) == 0 {
		printInfo("no parameterized inputs")
		return nil
	}
	printInfo(fmt.Sprintf("parameterized inputs (%d):", len(params)))
	for name, idx := range params {
		fmt.Printf("  %s -> frame[%d]\n", name, idx)
	}
	return nil
}

func runRun(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	useArena, _ := cmd.Flags().GetBool("arena")
	rawVars, _ := cmd.Flags().GetStringArray("var")

	vars, err := parseVarFlags(rawVars)
	if err != nil {
		return err
	}

	source, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filePath, err)
	}

	return executeSource(string(source), useArena, vars)
}

// parseVarFlags turns repeated "name=value" pairs from --var into bound
// input values, guessing a scalar kind from the literal text (true/false,
// null, integer, decimal, falling back to string).
func parseVarFlags(pairs []string) (map[string]value.Value, error) {
	vars := make(map[string]value.Value, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("--var %q: expected name=value", pair)
		}
		vars[name] = parseVarValue(raw)
	}
	return vars, nil
}

func parseVarValue(raw string) value.Value {
	switch raw {
	case "true":
		return value.Bool(true)
	case "false":
		return value.Bool(false)
	case "null":
		return value.Null()
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return value.IntFromInt64(i)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return value.Decimal(f)
	}
	return value.Str(raw)
}

func executeSource(source string, useArena bool, vars map[string]value.Value) error {
	e := engine.New()
	ctx := compile.New()
	for name := range vars {
		ctx.PushVariable(&compile.Variable{Name: name, CanInline: false}, false)
	}

	ast, err := e.Compile(source, ctx)
	if err != nil {
		printError(err)
		return err
	}

	executionID := engine.NewExecutionID()
	start := time.Now()
	var result value.Value
	if useArena {
		optimized := exec.NewArenaExecutor(ast.ToOptimized())
		for name, v := range vars {
			optimized.PushVariable(name, v)
		}
		result, err = engine.LogExecution(executionID, optimized.Execute)
	} else {
		executor := ast.Executor()
		for name, v := range vars {
			executor.PushVariable(name, v)
		}
		result, err = engine.LogExecution(executionID, executor.Execute)
	}
	if err != nil {
		printError(err)
		return err
	}
	elapsed := time.Since(start)

	printSuccess(fmt.Sprintf("execution time: %s", elapsed))
	printInfo(fmt.Sprintf("result: %s", value.Display(result)))
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	run := func() {
		source, err := os.ReadFile(filePath)
		if err != nil {
			printError(err)
			return
		}
		if err := executeSource(string(source), false, nil); err != nil {
			printWarning(fmt.Sprintf("run failed: %v", err))
		}
	}

	printInfo(fmt.Sprintf("watching %s for changes", filePath))
	run()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(filePath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(filePath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				printInfo(fmt.Sprintf("%s changed, re-running", filePath))
				run()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			printError(fmt.Errorf("watcher error: %w", err))
		}
	}
}

var (
	infoColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
)

func printInfo(msg string)    { infoColor.Printf("[INFO] %s\n", msg) }
func printSuccess(msg string) { successColor.Printf("[SUCCESS] %s\n", msg) }
func printWarning(msg string) { warningColor.Printf("[WARNING] %s\n", msg) }
func printError(err error)    { errorColor.Printf("[ERROR] %s\n", err.Error()) }
