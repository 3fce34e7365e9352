/*
 *   Copyright (c) 2024 Gustavo Lopez <git.gustavolopez.xyz@gmail.com>
 *   All rights reserved.
 */
package main

import (
	"os/signal"
	"syscall"

	"github.com/guslan/chip8"
	"github.com/guslan/chip8/web"
	"github.com/spf13/cobra"
)

func newWebCommand(flags *consoleFlags) *cobra.Command {
	var port int
	var static string
	var stats string
	var paused bool
	var offColor, onColor string

	cmd := &cobra.Command{
		Use:   "web [rom]",
		Short: "Serve a program to the browser, a missing rom can be uploaded to /load",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var program []byte
			if len(args) > 0 {
				var err error
				if program, err = readProgram(args[0]); err != nil {
					return err
				}
			}

			theme, err := chip8.ParseTheme(offColor, onColor)
			if err != nil {
				return err
			}

			server, err := web.NewServer(program, func(config *web.ServerConfig) {
				config.Theme = theme
				config.StaticDir = static
				config.StatsAddr = stats
				config.StartStopped = paused
				config.Console = []chip8.ConsoleConfigCb{flags.consoleConfig}
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return server.Listen(ctx, port)
		},
	}
	cmd.Flags().IntVar(&port, "port", 9999, "The port of the server")
	cmd.Flags().StringVar(&static, "static", "./static", "Directory served on /")
	cmd.Flags().StringVar(&stats, "stats", "", "Serve runtime stats on this address, e.g. localhost:18066")
	cmd.Flags().BoolVar(&paused, "paused", false, "Wait for /start before running the program")
	cmd.Flags().StringVar(&offColor, "off-color", "#000000", "Color of unlit pixels")
	cmd.Flags().StringVar(&onColor, "on-color", "#FFFFFF", "Color of lit pixels")

	return cmd
}
