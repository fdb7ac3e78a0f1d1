package main

import "github.com/josephlewis42/cronsh/cmd"

func main() {
	cmd.Execute()
}
