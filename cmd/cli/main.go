package main

import "ccpatch/cmd/cli/app/cmd"

func main() {
	cmd.Execute()
}
