package main

import "github.com/mvp-joe/codecontext/internal/cli"

func main() {
	cli.Execute()
}
