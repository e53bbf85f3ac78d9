package main

import "github.com/gerddie/mia-sub002/cmd"

func main() {
	cmd.Execute()
}
