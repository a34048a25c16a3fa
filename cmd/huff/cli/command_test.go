// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string
	var receivedArgs []string

	root := &Command{
		Name: "huff",
		Subcommands: []*Command{
			{
				Name: "list",
				Run: func(ctx context.Context, args []string) error {
					called = "list"
					receivedArgs = args
					return nil
				},
			},
			{
				Name: "inspect",
				Run: func(ctx context.Context, args []string) error {
					called = "inspect"
					return nil
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"list", "a.huf"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "list" {
		t.Errorf("dispatched to %q, want %q", called, "list")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "a.huf" {
		t.Errorf("args = %v, want [a.huf]", receivedArgs)
	}
}

func TestCommand_Execute_PassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "marker")

	var seen any
	root := &Command{
		Name: "huff",
		Subcommands: []*Command{{
			Name: "stats",
			Run: func(ctx context.Context, args []string) error {
				seen = ctx.Value(key{})
				return nil
			},
		}},
	}
	if err := root.Execute(ctx, []string{"stats"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if seen != "marker" {
		t.Errorf("context value = %v, want marker", seen)
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var output string
	var target string

	command := &Command{
		Name: "compress",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("compress", pflag.ContinueOnError)
			flagSet.StringVarP(&output, "output", "o", "", "output path")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				target = args[0]
			}
			return nil
		},
	}

	if err := command.Execute(context.Background(), []string{"-o", "out.huf", "notes"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if output != "out.huf" {
		t.Errorf("output = %q, want %q", output, "out.huf")
	}
	if target != "notes" {
		t.Errorf("target = %q, want %q", target, "notes")
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "compress",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("compress", pflag.ContinueOnError)
			flagSet.String("exclude", "", "exclude pattern")
			flagSet.String("include", "", "include pattern")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error { return nil },
	}

	err := command.Execute(context.Background(), []string{"--exlude", "*.tmp"})
	if err == nil {
		t.Fatal("expected error for unknown flag")
	}
	if !strings.Contains(err.Error(), "did you mean --exclude?") {
		t.Errorf("error = %q, want suggestion for --exclude", err)
	}
	if !strings.Contains(err.Error(), "Run 'compress --help'") {
		t.Errorf("error = %q, want help pointer", err)
	}
}

func TestCommand_Execute_UnknownSubcommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "huff",
		Subcommands: []*Command{
			{Name: "compress", Run: func(ctx context.Context, args []string) error { return nil }},
			{Name: "decompress", Run: func(ctx context.Context, args []string) error { return nil }},
		},
	}

	err := root.Execute(context.Background(), []string{"compres"})
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), `did you mean "compress"?`) {
		t.Errorf("error = %q, want suggestion", err)
	}

	err = root.Execute(context.Background(), []string{"zzzzzzzzzz"})
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %v, want unknown command without suggestion", err)
	}
}

func TestCommand_Execute_Help(t *testing.T) {
	var help bytes.Buffer
	root := &Command{
		Name:        "huff",
		Description: "Compress files with static Huffman coding.",
		HelpOutput:  &help,
		Subcommands: []*Command{
			{
				Name:    "list",
				Summary: "List archive entries",
				Usage:   "huff list ARCHIVE [flags]",
				Examples: []Example{
					{Description: "List as JSON", Command: "huff list notes.huf --json"},
				},
				Flags: func() *pflag.FlagSet {
					flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
					flagSet.Bool("json", false, "output as JSON")
					return flagSet
				},
				Run: func(ctx context.Context, args []string) error {
					t.Error("Run called for --help")
					return nil
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"--help"}); err != nil {
		t.Fatalf("Execute(--help) error: %v", err)
	}
	for _, want := range []string{"Compress files", "Commands:", "list", "List archive entries"} {
		if !strings.Contains(help.String(), want) {
			t.Errorf("root help missing %q:\n%s", want, help.String())
		}
	}

	help.Reset()
	if err := root.Execute(context.Background(), []string{"list", "--help"}); err != nil {
		t.Fatalf("Execute(list --help) error: %v", err)
	}
	for _, want := range []string{"huff list ARCHIVE", "--json", "# List as JSON"} {
		if !strings.Contains(help.String(), want) {
			t.Errorf("list help missing %q:\n%s", want, help.String())
		}
	}
}

func TestCommand_Execute_SubcommandRequired(t *testing.T) {
	var help bytes.Buffer
	root := &Command{
		Name:        "huff",
		HelpOutput:  &help,
		Subcommands: []*Command{{Name: "version", Run: func(ctx context.Context, args []string) error { return nil }}},
	}

	err := root.Execute(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("error = %v, want subcommand required", err)
	}
	if help.Len() == 0 {
		t.Error("no help printed")
	}
}

func TestExitError(t *testing.T) {
	var err error = &ExitError{Code: 2}
	coder, ok := err.(interface{ ExitCode() int })
	if !ok {
		t.Fatal("ExitError does not expose ExitCode")
	}
	if coder.ExitCode() != 2 {
		t.Errorf("ExitCode() = %d, want 2", coder.ExitCode())
	}
	if err.Error() != "exit code 2" {
		t.Errorf("Error() = %q", err.Error())
	}
}
