package main

import (
	"os"

	"section-cms/pkg/cli"
)

var version = "dev"

func main() {
	os.Exit(cli.Execute(version))
}
