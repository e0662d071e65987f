package main

import "faqgen/internal/cli"

func main() {
	cli.Execute()
}
