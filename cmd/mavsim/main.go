package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/groundctl/mavmon/pkg/simulator"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := simulator.Command().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
