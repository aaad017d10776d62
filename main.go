package main

import "github.com/theirongolddev/banker/cmd"

func main() {
	cmd.Execute()
}
