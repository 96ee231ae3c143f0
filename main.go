package main

import "github.com/mateconpizza/tabkeep/cmd"

func main() {
	cmd.Execute()
}
