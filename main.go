package main

import "github.com/Tiliavir/punchclock/cmd"

func main() {
	cmd.Execute()
}
