package main

import (
	"github.com/devrahi999/ihntopup/cmd"
)

func main() {
	cmd.Execute()
}
