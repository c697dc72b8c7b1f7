package main

import "lawrag/internal/cli"

func main() {
	cli.Execute()
}
