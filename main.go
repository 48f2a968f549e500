package main

import "reposcout/cmd"

func main() {
	cmd.Execute()
}
