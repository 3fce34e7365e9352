/*
 *   Copyright (c) 2024 Gustavo Lopez <git.gustavolopez.xyz@gmail.com>
 *   All rights reserved.
 */
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/guslan/chip8"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/spf13/cobra"
)

var (
	version = "0.2.0"
	commit  = ""
	date    = ""
)

type consoleFlags struct {
	speed uint
	debug bool
}

func main() {
	var flags consoleFlags

	rootCmd := &cobra.Command{
		Use:           "chip8",
		Short:         "CHIP-8 interpreter for the terminal and the browser",
		Version:       buildinfo.Version(version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if flags.debug {
				level = slog.LevelDebug
			}
			// stdout belongs to the terminal display
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	rootCmd.PersistentFlags().UintVar(&flags.speed, "speed", chip8.DefaultSpeed,
		fmt.Sprintf("Speed of the CPU in Hz, in the range [%d, %d]", chip8.MinSpeed, chip8.MaxSpeed))
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Log every executed instruction")

	rootCmd.AddCommand(newTermCommand(&flags), newWebCommand(&flags))

	if err := rootCmd.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func (flags consoleFlags) consoleConfig(config *chip8.ConsoleConfig) {
	config.Speed = flags.speed
}

func readProgram(path string) ([]byte, error) {
	program, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading program '%s': %w", path, err)
	}

	return program, nil
}
