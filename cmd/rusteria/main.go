// Command rusteria is the shader DSL's CLI: compile-and-run a script,
// shade a single uv sample, start an interactive REPL, or serve a live
// preview. Adapted from the teacher's cmd/sentra/main.go: hand-rolled
// flag dispatch and command aliases, no CLI framework — the teacher
// never imports one, so neither do we.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"rusteria/internal/compiler"
	"rusteria/internal/module"
	"rusteria/internal/preview"
	"rusteria/internal/repl"
	"rusteria/internal/shadevm"
	"rusteria/internal/vmvalue"
)

const version = "0.1.0"

var commandAliases = map[string]string{
	"r": "run",
	"s": "shade",
	"i": "repl",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		showVersion()
	case "run":
		runCommand(args[1:])
	case "shade":
		shadeCommand(args[1:])
	case "repl":
		repl.Start()
	case "serve":
		serveCommand(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		showUsage()
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println("rusteria - a procedural shader DSL compiler and VM")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  rusteria run <file.shade> [-v]         Compile and run a script   (alias: r)")
	fmt.Println("  rusteria shade <file.shade> --uv=u,v    Run shade(uv) once         (alias: s)")
	fmt.Println("  rusteria repl                           Start an interactive REPL  (alias: i)")
	fmt.Println("  rusteria serve <file.shade> [--addr=:8787]   Start the live preview server")
	fmt.Println()
	fmt.Println("  rusteria --version                      Show version")
	fmt.Println("  rusteria --help                          Show this message")
}

func showVersion() {
	fmt.Printf("rusteria %s\n", version)
}

// newLoader builds the default search-path loader (., ./lib and the stdlib
// directory), resolved against the current working directory rather than
// the script's own directory.
func newLoader() module.Loader {
	return module.NewFileLoader(module.DefaultSearchPath()...)
}

func runCommand(args []string) {
	var verbose bool
	var filename string
	for _, a := range args {
		if a == "-v" || a == "--verbose" {
			verbose = true
			continue
		}
		if filename == "" {
			filename = a
		}
	}
	if filename == "" {
		log.Fatal("rusteria run: no file given")
	}

	source, err := os.ReadFile(filename)
	if err != nil {
		log.Fatalf("rusteria run: %v", err)
	}

	start := time.Now()
	program, err := compiler.CompileProgram(string(source), filename, newLoader())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	compileElapsed := time.Since(start)

	in := shadevm.New(program)
	runStart := time.Now()
	if err := in.Execute(program.Body, program); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	runElapsed := time.Since(runStart)

	if v, ok := in.Peek(); ok {
		fmt.Printf("(%g, %g, %g)\n", v.X, v.Y, v.Z)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "compiled in %sns, ran in %sns (%s source)\n",
			humanize.Comma(compileElapsed.Nanoseconds()),
			humanize.Comma(runElapsed.Nanoseconds()),
			humanize.Bytes(uint64(len(source))),
		)
	}
}

func shadeCommand(args []string) {
	var filename, uvFlag string
	for _, a := range args {
		if strings.HasPrefix(a, "--uv=") {
			uvFlag = strings.TrimPrefix(a, "--uv=")
			continue
		}
		if filename == "" {
			filename = a
		}
	}
	if filename == "" {
		log.Fatal("rusteria shade: no file given")
	}

	u, v, err := parseUV(uvFlag)
	if err != nil {
		log.Fatalf("rusteria shade: %v", err)
	}

	source, err := os.ReadFile(filename)
	if err != nil {
		log.Fatalf("rusteria shade: %v", err)
	}

	program, err := compiler.CompileProgram(string(source), filename, newLoader())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if program.ShadeIndex == nil {
		log.Fatal("rusteria shade: source defines no shade(uv) function")
	}

	in := shadevm.New(program)
	if err := in.Execute(program.Body, program); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	uv := vmvalue.New(u, v, 0)
	in.UV = uv
	color, err := in.RunFunction(program, *program.ShadeIndex, []vmvalue.Value{uv})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("(%g, %g, %g)\n", color.X, color.Y, color.Z)
}

func parseUV(flag string) (float32, float32, error) {
	if flag == "" {
		return 0, 0, nil
	}
	parts := strings.SplitN(flag, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("--uv expects u,v, got %q", flag)
	}
	u, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid u: %w", err)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid v: %w", err)
	}
	return float32(u), float32(v), nil
}

func serveCommand(args []string) {
	var filename, addr string
	addr = ":8787"
	for _, a := range args {
		if strings.HasPrefix(a, "--addr=") {
			addr = strings.TrimPrefix(a, "--addr=")
			continue
		}
		if filename == "" {
			filename = a
		}
	}
	if filename == "" {
		log.Fatal("rusteria serve: no file given")
	}

	srv := preview.NewServer(filename, newLoader())
	if err := srv.CheckCompiles(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	coloredOK := "ok"
	if isatty.IsTerminal(os.Stdout.Fd()) {
		coloredOK = "\033[32mok\033[0m"
	}
	fmt.Printf("rusteria serve: %s — compiled %s, listening on %s (ws://%s/ws)\n",
		coloredOK, filename, addr, addr)

	if err := srv.ListenAndServe(addr); err != nil {
		log.Fatalf("rusteria serve: %v", err)
	}
}
