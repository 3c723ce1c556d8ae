package main

import "factlens/cmd"

func main() {
	cmd.Execute()
}
