package main

import "github.com/aquamon/aquamon/cmd"

func main() {
	cmd.Execute()
}
