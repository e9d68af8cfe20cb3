package main

import "github.com/sparklabnyc/bymcmc/cmd"

func main() {
	cmd.Execute()
}
