// This program talks to a running node from the command line.
package main

import "github.com/ardanlabs/powchain/app/tooling/cli/cmd"

func main() {
	cmd.Execute()
}
