package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newDurationCmd(c *cli) *cobra.Command {
	var (
		speed   time.Duration
		delay   time.Duration
		counter string
	)
	cmd := &cobra.Command{
		Use:   "duration [text...]",
		Short: "Print how long the typewriter animation takes for text",
		Long:  "Print the typewriter animation duration in milliseconds. Without arguments the text is read from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg.Animation
			if cmd.Flags().Changed("speed") {
				cfg.Speed = speed
			}
			if cmd.Flags().Changed("delay") {
				cfg.StartDelay = delay
			}
			if cmd.Flags().Changed("counter") {
				cfg.Counter = counter
			}
			calc, err := cfg.Calculator()
			if err != nil {
				return err
			}

			text := strings.Join(args, " ")
			if len(args) == 0 {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = strings.TrimSuffix(string(b), "\n")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", calc.Duration(text).Milliseconds())
			return nil
		},
	}
	cmd.Flags().DurationVar(&speed, "speed", 0, "time per character (default from config)")
	cmd.Flags().DurationVar(&delay, "delay", 0, "delay before the first character (default from config)")
	cmd.Flags().StringVar(&counter, "counter", "", "character counter: runes, utf16 or graphemes")
	return cmd
}
