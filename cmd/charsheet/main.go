package main

import "github.com/mcoot/charsheet-go/internal/cli"

func main() {
	cli.Execute()
}
