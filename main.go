package main

import "github.com/bentoudev/conanci/cmd"

func main() {
	cmd.Execute()
}
