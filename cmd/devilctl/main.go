package main

import "github.com/okian/devilmatch/internal/cli"

func main() {
	cli.Execute()
}
