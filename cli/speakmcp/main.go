package main

import (
	"os"

	speakmcpcmder "github.com/speakmcp/speakmcp-cli/cmd/speakmcp"
)

func main() {
	cmd := speakmcpcmder.NewSpeakmcpCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
