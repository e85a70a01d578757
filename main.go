// ABOUTME: Entry point for the dealdesk CLI and MCP server
// ABOUTME: Hands off to the cobra command tree in the cli package
package main

import "github.com/harperreed/dealdesk/cli"

const version = "0.1.0"

func main() {
	cli.Execute(version)
}
