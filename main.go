package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/niloybiswas/toolhost/bootstrap"
	"github.com/niloybiswas/toolhost/config"
	logcontext "github.com/niloybiswas/toolhost/context"
	"github.com/niloybiswas/toolhost/log"
)

func main() {
	// Initialize logging
	log.Init()

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle Ctrl+C (SIGINT)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT)
	go func() {
		<-sigChan
		log.Info(context.Background(), "\nProgram terminated externally. Exiting...")
		cancel()
		// Unblock the pending scanner.Scan so the loop exits immediately.
		os.Stdin.Close()
	}()

	// 0. Load Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf(context.Background(), "Failed to load config: %v", err)
	}

	// 1. Init App Components using Bootstrap
	app, err := bootstrap.Setup(ctx, cfg)
	if err != nil {
		log.Fatalf(context.Background(), "Setup failed: %v", err)
	}
	defer app.Shutdown(context.Background())

	// 2. Interactive loop
	fmt.Println("Tool host ready. Type 'tools' to list tools, 'clear' to reset, 'exit' to quit.")
	runREPL(ctx, app, os.Stdin)

	log.Info(context.Background(), "Goodbye")
}

func runREPL(ctx context.Context, app *bootstrap.App, in io.Reader) {
	scanner := bufio.NewScanner(in)
	debug := false

	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		if ctx.Err() != nil {
			return
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "exit", "quit":
			return
		case "clear":
			app.Loop.Clear()
			fmt.Println("Conversation history cleared.")
			continue
		case "tools":
			fmt.Print(app.Loop.RenderCatalog())
			continue
		case "debug":
			debug = !debug
			if debug {
				log.SetLevel(logrus.DebugLevel)
				fmt.Println("Debug logging on.")
			} else {
				log.SetLevel(logrus.InfoLevel)
				fmt.Println("Debug logging off.")
			}
			continue
		}

		// Tag the turn with a request ID for log correlation
		turnCtx := logcontext.WithRequestID(ctx, logcontext.NewRequestID())

		answer, err := app.Loop.Run(turnCtx, input)
		if err != nil {
			log.Errorf(turnCtx, "Turn failed: %v", err)
			fmt.Printf("Sorry, that didn't work: %v\n", err)
			continue
		}
		fmt.Println(answer)
	}
}
