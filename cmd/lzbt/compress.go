package main

import (
	"bytes"
	"io"

	"github.com/lzkit/pack"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// matchFinderValue is a pflag.Value for a pack.MatchFinderID.
type matchFinderValue struct {
	id *pack.MatchFinderID
}

func (v matchFinderValue) String() string {
	if v.id == nil {
		return ""
	}
	return v.id.String()
}

func (v matchFinderValue) Set(s string) error {
	id, err := pack.ParseMatchFinderID(s)
	if err != nil {
		return err
	}
	*v.id = id
	return nil
}

func (v matchFinderValue) Type() string { return "id" }

// installFinderFlags binds the match finder settings in cfg to flags.
func installFinderFlags(flags *pflag.FlagSet, cfg *pack.Config) {
	flags.Var(matchFinderValue{&cfg.MatchFinder}, "mf", "Match finder (bt2, bt4, hc4)")
	flags.IntVarP(&cfg.DictionarySize, "dict-size", "d", cfg.DictionarySize, "How far back matches may reach, in bytes")
	flags.IntVar(&cfg.FastBytes, "fast-bytes", cfg.FastBytes, "Match length at which the search stops (5-273)")
	flags.IntVar(&cfg.CutValue, "cut-value", cfg.CutValue, "Candidates examined per position (0 for the default)")
}

type compressOptions struct {
	format    format
	cfg       pack.Config
	blockSize int
	verify    bool
}

func newCompressCommand() *cobra.Command {
	opts := compressOptions{
		format:    formatLZ4,
		cfg:       pack.DefaultConfig,
		blockSize: 1 << 16,
	}

	cmd := &cobra.Command{
		Use:   "compress [OPTIONS] [INPUT [OUTPUT]]",
		Short: "Compress INPUT (or standard input) to OUTPUT (or standard output)",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompress(cmd, args, opts)
		},
	}
	flags := cmd.Flags()
	flags.VarP(&opts.format, "format", "f", "Output format (snappy, lz4, deflate, gzip, brotli, text)")
	installFinderFlags(flags, &opts.cfg)
	flags.IntVar(&opts.cfg.MinLength, "min-length", 0, "Shortest match to use (0 for the default)")
	flags.BoolVar(&opts.cfg.Lazy, "lazy", false, "Use lazy matching")
	flags.BoolVar(&opts.cfg.ChainBlocks, "chain-blocks", true, "Let matches refer to earlier blocks")
	flags.IntVarP(&opts.blockSize, "block-size", "b", opts.blockSize, "Bytes compressed per block")
	flags.BoolVar(&opts.verify, "verify", false, "Decompress the output in memory and compare it with the input")

	return cmd
}

func runCompress(cmd *cobra.Command, args []string, opts compressOptions) (retErr error) {
	if opts.blockSize < 1 || opts.blockSize > opts.format.maxBlockSize() {
		return errors.Errorf("block size %d not in [1, %d] for %s", opts.blockSize, opts.format.maxBlockSize(), opts.format)
	}
	if opts.verify && opts.format == formatText {
		return errors.New("the text format cannot be verified")
	}
	mf, err := opts.cfg.NewMatchFinder()
	if err != nil {
		return err
	}

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

	var src io.Reader = in
	var original, compressed bytes.Buffer
	cw := &countingWriter{w: out}
	var dest io.Writer = cw
	if opts.verify {
		src = io.TeeReader(in, &original)
		dest = io.MultiWriter(cw, &compressed)
	}

	w := opts.format.newWriter(dest, mf)
	w.BlockSize = opts.blockSize
	logrus.WithFields(logrus.Fields{
		"format":     opts.format,
		"mf":         opts.cfg.MatchFinder,
		"dict_size":  opts.cfg.DictionarySize,
		"fast_bytes": opts.cfg.FastBytes,
		"block_size": opts.blockSize,
	}).Debug("compressing")

	n, err := io.Copy(w, src)
	if err != nil {
		return errors.Wrap(err, "compressing")
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, "compressing")
	}

	fields := logrus.Fields{"format": opts.format, "in": n, "out": cw.n}
	if cw.n > 0 {
		fields["ratio"] = float64(n) / float64(cw.n)
	}
	logrus.WithFields(fields).Info("compressed")

	if opts.verify {
		var decoded bytes.Buffer
		if err := opts.format.decode(&decoded, &compressed); err != nil {
			return errors.Wrap(err, "verifying")
		}
		if !bytes.Equal(decoded.Bytes(), original.Bytes()) {
			return errors.New("verification failed: decompressed data differs from the input")
		}
		logrus.Debug("output verified")
	}
	return nil
}
