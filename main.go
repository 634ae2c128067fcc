package main

import "github.com/khanhnv2901/reality-check/cmd"

var execCmd = cmd.Execute

func main() {
	execCmd()
}
