/*
weightsync saves and restores vertex group weights of mesh objects, and
re-applies them to linked library objects whenever their scene is opened.
*/
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/weightsync/cli"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// start shutdown goroutine
	go func() {
		// capture sigterm and other system call here
		<-sigCh
		cancel()
	}()

	if err := cli.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
