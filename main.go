package main

import "mediadedup/cmd"

func main() {
	cmd.Execute()
}
