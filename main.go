package main

import "github.com/kozaktomas/face-morph/cmd"

func main() {
	cmd.Execute()
}
