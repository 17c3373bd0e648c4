// main is the entry point of the users-api binary.
//
// RUNNING THE SERVER:
//
//	go run ./cmd/users-api serve --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/users-api serve
//
// Other commands: init-db (create tables), rotate (archive old audit
// entries). See --help.
package main

import (
	"context"
	"os"

	"github.com/aanand-mishra/users-api/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1) // cobra has already printed the error
	}
}
