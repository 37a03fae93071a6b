package main

import "github.com/mj1618/figma-batch/cmd"

func main() {
	cmd.Execute()
}
