// Command arrowquery is a diagnostic CLI over the query compiler: it
// prints registered schema metadata and compiles bundled example
// chains to SQL, interactively or as one-shot output.
package main

import "github.com/marshallshelly/arrowquery/cmd/arrowquery/commands"

func main() {
	commands.Execute()
}
