package main

import (
	"submerge/cmd"
)

func main() {
	cmd.Execute()
}
