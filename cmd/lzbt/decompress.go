package main

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newDecompressCommand() *cobra.Command {
	f := formatLZ4

	cmd := &cobra.Command{
		Use:   "decompress [OPTIONS] [INPUT [OUTPUT]]",
		Short: "Decompress INPUT (or standard input) to OUTPUT (or standard output)",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecompress(cmd, args, f)
		},
	}
	cmd.Flags().VarP(&f, "format", "f", "Input format (snappy, lz4, deflate, gzip, brotli)")
	return cmd
}

func runDecompress(cmd *cobra.Command, args []string, f format) (retErr error) {
	in, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := createOutput(cmd, args)
	if err != nil {
		return err
	}
	defer closeOutput(out, &retErr)

	cw := &countingWriter{w: out}
	if err := f.decode(cw, in); err != nil {
		return errors.Wrapf(err, "decompressing %s", f)
	}
	logrus.WithFields(logrus.Fields{"format": f, "out": cw.n}).Info("decompressed")
	return nil
}
