package main

import "buckgen/internal/cli"

func main() {
	cli.Execute()
}
