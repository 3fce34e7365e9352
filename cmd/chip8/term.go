/*
 *   Copyright (c) 2024 Gustavo Lopez <git.gustavolopez.xyz@gmail.com>
 *   All rights reserved.
 */
package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/guslan/chip8"
	"github.com/guslan/chip8/terminal"
	"github.com/spf13/cobra"
)

func newTermCommand(flags *consoleFlags) *cobra.Command {
	var noTerm bool
	var hold uint

	cmd := &cobra.Command{
		Use:   "term <rom>",
		Short: "Run a program in the terminal, Ctrl-C quits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := readProgram(args[0])
			if err != nil {
				return err
			}

			var display chip8.Display = terminal.NewDisplay()
			if noTerm {
				display = chip8.NewDummyDisplay()
			}

			console, err := chip8.NewConsole(program, flags.consoleConfig, func(config *chip8.ConsoleConfig) {
				config.Display = display
				config.Buzzer = terminal.NewBuzzer()
			})
			if err != nil {
				return err
			}
			if err := console.Boot(); err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			keyboard := terminal.NewKeyboard(console)
			keyboard.HoldDuration = time.Duration(hold) * time.Millisecond
			listening := make(chan struct{})
			go func() {
				defer close(listening)
				if err := keyboard.Listen(ctx, cancel); err != nil {
					slog.Error("Error reading the keyboard", slog.Any("error", err))
					cancel()
				}
			}()

			err = console.Run(ctx)
			cancel()
			<-listening

			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&noTerm, "noterm", false, "Turn off the terminal display")
	cmd.Flags().UintVar(&hold, "hold", uint(terminal.DefaultHoldDuration/time.Millisecond),
		"Milliseconds a key stays pressed after it is typed")

	return cmd
}
