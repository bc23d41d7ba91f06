package main

import "github.com/Himess/delreg/cmd"

func main() {
	cmd.Execute()
}
