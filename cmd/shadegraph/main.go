// Shadegraph evaluates and compiles shader node graphs. Graphs are written as
// YAML documents; the tool evaluates them on the CPU, compiles them to shader
// code, keeps them in a local store and serves them to editors over the
// language server protocol.
package main

import (
	"os"

	"src.shadegraph.dev/pkg/buildinfo"
	"src.shadegraph.dev/pkg/lsp"
	"src.shadegraph.dev/pkg/prog"
	"src.shadegraph.dev/pkg/tool"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		buildinfo.Program{}, lsp.Program{}, tool.Program{}))
}
