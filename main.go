package main

import "gar-builder/cmd"

func main() {
	cmd.Execute()
}
