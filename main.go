package main

import "github.com/mdtools/jira2md/cmd"

func main() {
	cmd.Execute()
}
