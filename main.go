// Package main is the entry point for the bun-runner CLI.
package main

import "github.com/hughescr/stryker-bun-runner/cmd"

func main() {
	cmd.Execute()
}
