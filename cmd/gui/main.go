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
	"github.com/guslan/chip8/gui"
	"github.com/spf13/cobra"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})))
}

func main() {
	var autostart, debug bool
	var initialSpeed uint
	var pixelSize int32
	var offColor, onColor string

	cmd := &cobra.Command{
		Use:          "chip8-gui [rom]",
		Short:        "Desktop CHIP-8 interpreter, programs can be dropped on the window",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))
			}

			theme, err := chip8.ParseTheme(offColor, onColor)
			if err != nil {
				return err
			}

			app, err := gui.NewApp(func(config *gui.AppConfig) {
				config.Speed = initialSpeed
				config.Theme = theme
				config.PixelSize = max(pixelSize, 1)
			})
			if err != nil {
				return err
			}

			if len(args) > 0 {
				app.Load(args[0])
			}

			app.Run(autostart)
			return nil
		},
	}
	cmd.Flags().BoolVar(&autostart, "start", false, "Starts the console automatically if there is a program loaded")
	cmd.Flags().BoolVar(&debug, "debug", false, "Log every executed instruction")
	cmd.Flags().UintVar(&initialSpeed, "speed", chip8.DefaultSpeed,
		fmt.Sprintf("The starting speed of the CPU in Hz, in the range [%d, %d]", chip8.MinSpeed, chip8.MaxSpeed))
	cmd.Flags().Int32Var(&pixelSize, "pixel-size", gui.DefaultPixelSize, "Size in screen pixels of each cell")
	cmd.Flags().StringVar(&offColor, "off-color", "#FFD700", "Color of unlit pixels")
	cmd.Flags().StringVar(&onColor, "on-color", "#FFFF00", "Color of lit pixels")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
