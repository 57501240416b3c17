package main

import "github.com/checkline/checkline-cli/cmd"

func main() {
	cmd.Execute()
}
