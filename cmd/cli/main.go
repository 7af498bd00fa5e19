package main

import "warehub/cmd/cli/command"

func main() {
	command.Execute()
}
