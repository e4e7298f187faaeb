// Command spotctl runs maintenance tasks against a Spotboard database.
package main

import "spotboard/cmd/spotctl/commands"

func main() {
	commands.Execute()
}
