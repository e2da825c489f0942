// Package main is the entry point for the mentions demo editor.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/dshills/mentions/internal/config"
	"github.com/dshills/mentions/internal/demo"
	"github.com/dshills/mentions/internal/host"
	"github.com/dshills/mentions/internal/logger"
	"github.com/dshills/mentions/internal/suggest"
)

func main() {
	app := &cli.Command{
		Name:  "mentions",
		Usage: "Inline mention/hashtag suggestion demo editor",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to a YAML options file",
				Sources: cli.EnvVars("MENTIONS_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("MENTIONS_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs to this file instead of discarding them",
			},
			&cli.StringFlag{
				Name:  "load",
				Usage: "Open a document saved with ctrl+s",
			},
			&cli.StringFlag{
				Name:  "save",
				Value: "mentions-doc.json",
				Usage: "Where ctrl+s writes the document",
			},
		},
		Action: run,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "mentions: %v\n", err)
		os.Exit(1)
	}
}

func run(_ context.Context, cmd *cli.Command) error {
	opts := config.DefaultOptions()
	if path := cmd.String("config"); path != "" {
		var err error
		if opts, err = config.Load(path); err != nil {
			return err
		}
	}

	// Logs can't share the terminal with the editor screen.
	var logOut io.Writer
	if path := cmd.String("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	log := logger.New(cmd.String("log-level"), logOut)

	var doc *host.MemoryDocument
	if path := cmd.String("load"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("load document: %w", err)
		}
		if doc, err = host.Unmarshal(data); err != nil {
			return fmt.Errorf("load document: %w", err)
		}
	}

	ed, err := demo.NewEditor(opts, sampleDirectory(), doc, cmd.String("save"), log)
	if err != nil {
		return err
	}
	return ed.Run()
}

// sampleDirectory is the built-in suggestion source.
func sampleDirectory() *suggest.Directory {
	return suggest.NewDirectory(
		[]suggest.Person{
			{Handle: "ali", DisplayName: "Ali Connors"},
			{Handle: "alice", DisplayName: "Alice Barnham"},
			{Handle: "alan", DisplayName: "Alan Key"},
			{Handle: "bob", DisplayName: "Bob Loblaw"},
			{Handle: "carol", DisplayName: "Carol Danvers"},
			{Handle: "john-doe", DisplayName: "John Doe"},
		},
		[]string{"work", "wip", "done", "blocked", "idea", "question"},
	)
}
