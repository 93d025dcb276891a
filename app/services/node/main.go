package main

import (
	"fmt"
	"os"

	"github.com/ardanlabs/gossipchain/app/services/node/commands"
	"github.com/ardanlabs/gossipchain/foundation/logger"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Run the command selected on the command line.
	if err := commands.Execute(log, build); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}
