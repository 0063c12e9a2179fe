// pm stores, tags and searches LLM prompts in a local SQLite database.
package main

import "github.com/mateconpizza/pm/cmd"

func main() {
	cmd.Execute()
}
