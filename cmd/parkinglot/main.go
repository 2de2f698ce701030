// Package main provides the parkinglot CLI.
package main

import "github.com/mesh-intelligence/parkinglot/internal/cli"

func main() {
	cli.Execute()
}
