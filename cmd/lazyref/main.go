package main

import "github.com/kordat/lazyref/internal/cmd"

func main() {
	cmd.Execute()
}
