package main

import "github.com/fmastery/admin-console/cmd"

func main() {
	cmd.Execute()
}
