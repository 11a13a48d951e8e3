package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/moffa90/go-sahara/efs"
	"github.com/moffa90/go-sahara/images"
	"github.com/moffa90/go-sahara/loader"
	"github.com/moffa90/go-sahara/modem"
	"github.com/moffa90/go-sahara/serial"
)

// envPrefix is prepended to a flag name to find its environment fallback.
const envPrefix = "SAHARA_"

// options holds the persistent flags.
type options struct {
	tty        string
	modem      string
	baud       uint
	imageRoot  string
	efsDir     string
	verbose    bool
	logJSON    bool
	noProgress bool
}

// cli carries state shared by all commands.
type cli struct {
	opts   options
	log    *logrus.Logger
	lookup func(string) (string, bool)
}

func newCLI() *cli {
	return &cli{
		log:    newLogger(os.Stderr, false, false),
		lookup: os.LookupEnv,
	}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sahara-loader",
		Short: "Boot a Qualcomm modem over SAHARA and keep its EFS in sync",
		Long: `sahara-loader wakes an external Qualcomm modem, uploads its firmware
images over the SAHARA protocol and then services the modem's EFS sync
requests until it is stopped.

Every flag can also be set through the environment, for example
SAHARA_TTY=/dev/ttyUSB1 or SAHARA_IMAGE_ROOT=/vendor.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := applyEnv(cmd.Flags(), c.lookup); err != nil {
				return err
			}
			c.log = newLogger(cmd.ErrOrStderr(), c.opts.verbose, c.opts.logJSON)
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.opts.tty, "tty", modem.DefaultTTYPath, "modem serial device")
	flags.StringVar(&c.opts.modem, "modem", modem.DefaultPath, "modem control device")
	flags.UintVar(&c.opts.baud, "baud", serial.DefaultBaudRate, "serial line speed")
	flags.StringVar(&c.opts.imageRoot, "image-root", images.DefaultRoot, "directory the image table paths are resolved against")
	flags.StringVar(&c.opts.efsDir, "efs-dir", efs.DefaultDir, "directory synced EFS images are written to")
	flags.BoolVarP(&c.opts.verbose, "verbose", "v", false, "log protocol details")
	flags.BoolVar(&c.opts.logJSON, "log-json", false, "log in JSON format")
	flags.BoolVar(&c.opts.noProgress, "no-progress", false, "disable progress bars")

	root.AddCommand(c.bootCmd())
	root.AddCommand(c.transferCmd())
	root.AddCommand(c.efsSyncCmd())
	root.AddCommand(c.imagesCmd())

	return root
}

// applyEnv sets every flag not given on the command line from its
// SAHARA_ environment variable, if present.
func applyEnv(fs *pflag.FlagSet, lookup func(string) (string, bool)) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed {
			return
		}
		value, ok := lookup(envName(f.Name))
		if !ok {
			return
		}
		if setErr := fs.Set(f.Name, value); setErr != nil {
			err = errors.Wrapf(setErr, "invalid %s", envName(f.Name))
		}
	})
	return err
}

func envName(flag string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// loaderOptions returns the options shared by every command that talks to the modem.
func (c *cli) loaderOptions() []loader.Option {
	opts := []loader.Option{
		loader.WithLogger(logrusLogger{entry: logrus.NewEntry(c.log)}),
		loader.WithImageSource(images.NewFileSource(c.opts.imageRoot)),
		loader.WithSink(efs.NewDirSink(c.opts.efsDir)),
	}
	if c.showProgress() {
		opts = append(opts, loader.WithProgressCallback(newProgressReporter(os.Stderr).Update))
	}
	return opts
}

func (c *cli) showProgress() bool {
	return !c.opts.noProgress && !c.opts.logJSON && term.IsTerminal(int(os.Stderr.Fd()))
}

// openPort opens the modem tty with the given profile.
func (c *cli) openPort(profile loader.Profile) (*serial.Port, error) {
	cfg := serial.ConnectProfile(c.opts.tty)
	if profile == loader.ProfilePoll {
		cfg = serial.PollProfile(c.opts.tty)
	}
	cfg.BaudRate = c.opts.baud

	port, err := serial.Open(cfg)
	if err != nil {
		return nil, err
	}
	c.log.WithFields(logrus.Fields{"tty": c.opts.tty, "profile": profile.String()}).Debug("opened modem tty")
	return port, nil
}

// logFatal logs a command failure with the conversation phase, if any.
func (c *cli) logFatal(err error) {
	entry := c.log.WithError(err)
	if phase := loader.ErrorPhase(err); phase != "" {
		entry = entry.WithField("phase", string(phase))
	}
	entry.Error("sahara-loader failed")
}

func printf(cmd *cobra.Command, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
