package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pagepilot/internal/di"
	"pagepilot/internal/usecase/script"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var errRunFailed = errors.New("script failed")

type globalFlags struct {
	configPath string
	engine     string
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "pagepilot",
		Short:         "Drive a Chromium page from scripts, the shell or HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "YAML config file")
	root.PersistentFlags().StringVar(&flags.engine, "engine", "", "automation engine: rod or playwright (overrides config)")

	root.AddCommand(
		newRunCommand(flags),
		newServeCommand(flags),
		newShotCommand(flags),
	)
	return root
}

func newRunCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run <script.yaml>",
		Short: "Run a YAML script of browser steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := script.Load(args[0])
			if err != nil {
				return err
			}

			c, err := di.NewContainer(di.Options{
				ConfigPath: flags.configPath,
				Engine:     flags.engine,
				RunName:    s.Name,
				Out:        cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}
			defer c.Close()

			c.Logger.Info("Script started", "script", s.Name, "steps", len(s.Steps), "engine", c.Driver.Name())
			result, err := c.Runner.Run(cmd.Context(), s)
			if err != nil {
				return err
			}
			if !result.Succeeded() {
				return fmt.Errorf("%w: %d of %d steps failed", errRunFailed, result.Failed, len(result.Steps))
			}
			return nil
		},
	}
}

func newServeCommand(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the browser tools over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := di.NewContainer(di.Options{
				ConfigPath: flags.configPath,
				Engine:     flags.engine,
				RunName:    "serve",
				Out:        cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}
			defer c.Close()

			srv := c.NewServer(addr)
			color.New(color.FgCyan).Fprintf(cmd.OutOrStdout(), "pagepilot serving %s engine\n", c.Driver.Name())
			return srv.ListenAndServe(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func newShotCommand(flags *globalFlags) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "shot <url>",
		Short: "Open a URL and save a full-page JPEG screenshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := args[0]
			if !strings.Contains(url, "://") && !strings.HasPrefix(url, "about:") {
				url = "https://" + url
			}

			c, err := di.NewContainer(di.Options{
				ConfigPath: flags.configPath,
				Engine:     flags.engine,
				RunName:    "shot",
				Out:        cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}
			defer c.Close()

			ctx := cmd.Context()
			if err := c.Browser.Initialize(ctx); err != nil {
				return err
			}
			if err := c.Browser.Navigate(ctx, url); err != nil {
				return err
			}
			if err := c.Browser.WaitForLoadState(ctx); err != nil {
				return err
			}

			shot, err := c.Browser.TakeScreenshot(ctx)
			if err != nil {
				return err
			}
			data, err := base64.StdEncoding.DecodeString(shot)
			if err != nil {
				return fmt.Errorf("decode screenshot: %w", err)
			}
			if dir := filepath.Dir(out); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return err
				}
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return fmt.Errorf("write screenshot: %w", err)
			}

			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Saved %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "screenshot.jpg", "output file")
	return cmd
}
