package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/moffa90/go-sahara/images"
	"github.com/moffa90/go-sahara/loader"
	"github.com/moffa90/go-sahara/modem"
)

// DefaultQMIPath is the QMI control node that appears after a successful boot.
const DefaultQMIPath = "/dev/cdc-wdm0"

func (c *cli) bootCmd() *cobra.Command {
	var (
		qmiPath string
		settle  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "boot",
		Short: "Wake the modem, upload its images and service EFS sync",
		Long: `boot runs the complete start sequence: wake the modem, wait for its
serial node, transfer every requested image, wait for the modem to boot and
then service EFS sync requests until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := modem.Open(modem.Config{Path: c.opts.modem, TTYPath: c.opts.tty})
			if err != nil {
				return err
			}
			defer func() { _ = dev.Close() }()

			b := &loader.Boot{
				Device: dev,
				Open: func(ctx context.Context, profile loader.Profile) (loader.Port, error) {
					port, err := c.openPort(profile)
					if err != nil {
						return nil, err
					}
					return port, nil
				},
				Options:     c.loaderOptions(),
				Logger:      logrusLogger{entry: c.log.WithField("component", "boot")},
				SettleDelay: settle,
				QMIPath:     qmiPath,
			}

			if err := b.Run(cmd.Context()); err != nil {
				return err
			}
			c.log.Info("stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&qmiPath, "qmi", DefaultQMIPath, "QMI node checked after boot (empty to skip)")
	cmd.Flags().DurationVar(&settle, "settle", 2*time.Second, "wait after boot before checking the QMI node")

	return cmd
}

func (c *cli) transferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer",
		Short: "Upload images to a modem that is already in its boot ROM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := c.openPort(loader.ProfileConnect)
			if err != nil {
				return err
			}
			defer loader.CloseOnDone(cmd.Context(), port)()

			if err := loader.New(port, c.loaderOptions()...).TransferImages(cmd.Context()); err != nil {
				return err
			}
			c.log.Info("all images transferred")
			return nil
		},
	}
}

func (c *cli) efsSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "efs-sync",
		Short: "Service EFS sync requests from a booted modem",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := c.openPort(loader.ProfilePoll)
			if err != nil {
				return err
			}
			defer loader.CloseOnDone(cmd.Context(), port)()

			c.log.WithField("dir", c.opts.efsDir).Info("servicing EFS sync requests")
			return loader.ServeMemoryDebug(cmd.Context(), port, c.loaderOptions()...)
		},
	}
}

func (c *cli) imagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "images",
		Short: "List the image table and whether each file is present",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src := images.NewFileSource(c.opts.imageRoot)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tNAME\tPATH\tSIZE")

			missing := 0
			for _, st := range src.Inventory() {
				size := "missing"
				if st.Err == nil {
					size = humanize.IBytes(uint64(st.Size))
				} else {
					missing++
					c.log.WithFields(logrus.Fields{"image": st.Image.Name, "error": st.Err}).Debug("image not available")
				}
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", st.Image.ID, st.Image.Name, st.Path, size)
			}
			if err := w.Flush(); err != nil {
				return errors.Wrap(err, "write image table")
			}

			if missing > 0 {
				printf(cmd, "\n%d of %d images missing\n", missing, len(images.All()))
			}
			return nil
		},
	}
}
