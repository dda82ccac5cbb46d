package main

import "github.com/timexceed/testa-go/cmd"

func main() {
	cmd.Execute()
}
