// Command taskflow drives the simulated TaskFlow backend from the shell.
package main

import "github.com/mesh-intelligence/taskflow/internal/cli"

func main() {
	cli.Execute()
}
