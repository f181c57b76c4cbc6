package main

import "poolcalc/internal/cli"

func main() {
	cli.Execute()
}
