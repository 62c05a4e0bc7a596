package main

import "github.com/strrl/sleepq/internal/cmd"

func main() {
	cmd.Execute()
}
