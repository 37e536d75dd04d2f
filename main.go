package main

import "github.com/smartexpense/smartexpense/cmd"

func main() {
	cmd.Execute()
}
