package main

import "github.com/pastchais/check-notion-url/cmd"

func main() {
	cmd.Execute()
}
