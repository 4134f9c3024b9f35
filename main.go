package main

import "github.com/cunarist/rinf/automate/cmd"

func main() {
	cmd.Execute()
}
