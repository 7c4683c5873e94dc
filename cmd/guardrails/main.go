// guardrails: named soft and hard limits for database users, with a
// runtime reconfiguration server.
package main

import "github.com/ppiankov/guardrails/internal/cli"

func main() {
	cli.Execute()
}
