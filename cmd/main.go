package main

import (
	cmd "github.com/kagemura/tankobon/cmd/tankobon"
)

func main() {
	cmd.Execute()
}
