package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/isidrok/site"
)

// errIssues is returned when the collection has schema issues. They have
// already been printed, so main only sets the exit status.
var errIssues = errors.New("collection has issues")

// cli holds state shared by every command.
type cli struct {
	cfgFile string
	verbose bool

	cfg site.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "site",
		Short:         "Content and dev tooling for isidrok.com",
		Long:          "site validates the blog collection, indexes it and serves a live-reloading dev server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is ./site.yaml if present)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "verbose output (sets log level to debug)")

	root.AddCommand(
		newCheckCmd(c),
		newSyncCmd(c),
		newListCmd(c),
		newDurationCmd(c),
		newNewCmd(c),
		newServeCmd(c),
		newVersionCmd(),
	)
	return root
}

func (c *cli) load() error {
	cfg, err := site.LoadConfig(c.cfgFile)
	if err != nil {
		return err
	}
	if c.verbose {
		cfg.LogLevel = "debug"
	}
	log, err := site.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.log = log
	return nil
}

// app returns an App that has not been opened.
func (c *cli) app() *site.App {
	return site.New(c.cfg, site.WithLogger(c.log))
}

// openApp returns an opened App. The caller must Close it.
func (c *cli) openApp() (*site.App, error) {
	a := c.app()
	if err := a.Open(); err != nil {
		return nil, err
	}
	return a, nil
}
