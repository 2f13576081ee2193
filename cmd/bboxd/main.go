// Package main starts the bbox editor server.
package main

import (
	"flag"
	"time"
)

// main is the entrypoint for the bbox editor server.
func main() {
	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	discover := flag.Duration("discover", 0, "List editors announced on the local network for this long, then exit")
	flag.Parse()

	if *discover > 0 {
		if err := listEditors(*discover); err != nil {
			logFatal(err)
		}
		return
	}
	if err := run(*debug); err != nil {
		logFatal(err)
	}
}

// defaultShutdownTimeout bounds graceful HTTP shutdown.
const defaultShutdownTimeout = 5 * time.Second
