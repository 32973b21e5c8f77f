package main

import "github.com/papaleguas-app/papaleguas/internal/cli"

func main() {
	cli.Execute()
}
