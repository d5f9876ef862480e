package main

import "github.com/bcnelson/yatube/internal/cli"

func main() {
	cli.Execute()
}
