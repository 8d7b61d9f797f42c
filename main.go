package main

import "medallion/cmd"

func main() {
	cmd.Execute()
}
