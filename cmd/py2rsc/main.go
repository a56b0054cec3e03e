// Command py2rsc is the py2rs toolchain's command-line front end:
// transpile, check, and watch subcommands layered over pkg/transpile.
package main

func main() {
	Execute()
}
