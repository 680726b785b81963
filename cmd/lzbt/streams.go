package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// openInput returns the file named by args[0], or the command's input when
// there is no argument or it is "-".
func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, errors.Wrap(err, "opening input")
	}
	return f, nil
}

// createOutput is like openInput for args[1] and the command's output.
func createOutput(cmd *cobra.Command, args []string) (io.WriteCloser, error) {
	if len(args) < 2 || args[1] == "-" {
		return nopWriteCloser{cmd.OutOrStdout()}, nil
	}
	f, err := createFile(args[1])
	if err != nil {
		return nil, errors.Wrap(err, "creating output")
	}
	return f, nil
}

var createFile = func(name string) (io.WriteCloser, error) { return os.Create(name) }

// closeOutput closes out once the command is done with it. A failure to
// close is reported unless the command already failed.
func closeOutput(out io.Closer, errp *error) {
	if err := out.Close(); err != nil && *errp == nil {
		*errp = errors.Wrap(err, "closing output")
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// countingWriter counts the bytes written through it.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
