package main

import "github.com/baton-remote/baton/internal/cli"

func main() {
	cli.Execute()
}
