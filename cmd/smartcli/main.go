package main

import "github.com/prudhvi1709/smart-cli/internal/cli"

func main() {
	cli.Execute()
}
