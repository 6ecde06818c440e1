// Chatlens - Chat Export Analytics
//
// Chatlens parses exported group-chat logs and reports who talks, when they
// talk, and what they say.
package main

import (
	"os"

	"github.com/ccollicutt/chatlens/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
