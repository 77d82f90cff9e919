// Package repl implements the interactive `rusteria repl` shell,
// adapted from the teacher's repl.Start() (bufio.Scanner over stdin,
// recompile-and-run each turn). Unlike the teacher's per-line chunk swap,
// this recompiles the accumulated session buffer on every line: the
// language has no notion of an incremental top-level chunk, so a `let`
// from an earlier line needs to still resolve as a global when a later
// line references it.
package repl

import (
	"bufio"
	"fmt"
	"os"

	"rusteria/internal/compiler"
	"rusteria/internal/module"
	"rusteria/internal/shadevm"
)

// Start runs the REPL loop against stdin/stdout until the user types
// "exit" or sends EOF.
func Start() {
	fmt.Println("rusteria REPL | type 'exit' to quit")
	scanner := bufio.NewScanner(os.Stdin)
	loader := module.NewFileLoader(".")

	var lines []string

	for {
		fmt.Print(">>> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "exit" {
			break
		}
		if line == "" {
			continue
		}

		candidate := append(append([]string{}, lines...), line)
		source := joinLines(candidate)

		program, err := compiler.CompileProgram(source, "<repl>", loader)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}

		in := shadevm.New(program)
		if err := in.Execute(program.Body, program); err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}

		if v, ok := in.Peek(); ok {
			fmt.Printf("=> (%g, %g, %g)\n", v.X, v.Y, v.Z)
		}

		lines = candidate
	}
}

func joinLines(lines []string) string {
	out := ""
	for _, l := range lines {
		out += l + "\n"
	}
	return out
}
