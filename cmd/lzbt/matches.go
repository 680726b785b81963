package main

import (
	"bufio"
	"strconv"

	"github.com/lzkit/pack"
	"github.com/lzkit/pack/lz"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type finder interface {
	lz.MatchFinder
	SetType(numHashBytes int)
	SetCutValue(v uint32)
}

type matchesOptions struct {
	cfg   pack.Config
	limit int
	all   bool
}

func newMatchesCommand() *cobra.Command {
	opts := matchesOptions{cfg: pack.DefaultConfig}

	cmd := &cobra.Command{
		Use:   "matches [OPTIONS] [INPUT]",
		Short: "Print the matches found at each position of INPUT",
		Long: `Print the matches found at each position of INPUT, one line per position:
the position, then a length:distance pair for each match, shortest first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatches(cmd, args, opts)
		},
	}
	flags := cmd.Flags()
	installFinderFlags(flags, &opts.cfg)
	flags.IntVarP(&opts.limit, "limit", "n", 0, "Stop after this many positions (0 for no limit)")
	flags.BoolVarP(&opts.all, "all", "a", false, "Print positions without matches too")
	return cmd
}

func newFinder(cfg pack.Config) (finder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var f finder
	switch cfg.MatchFinder {
	case pack.BT2:
		f = new(lz.BinTree)
		f.SetType(2)
	case pack.BT4:
		f = new(lz.BinTree)
		f.SetType(4)
	default:
		f = new(lz.HashChain)
		f.SetType(4)
	}
	if err := f.Create(uint32(cfg.DictionarySize), 0, uint32(cfg.FastBytes), 0); err != nil {
		return nil, err
	}
	if cfg.CutValue > 0 {
		f.SetCutValue(uint32(cfg.CutValue))
	}
	return f, nil
}

func runMatches(cmd *cobra.Command, args []string, opts matchesOptions) error {
	f, err := newFinder(opts.cfg)
	if err != nil {
		return err
	}
	in, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer in.Close()

	f.SetStream(bufio.NewReader(in))
	defer f.ReleaseStream()
	if err := f.Init(); err != nil {
		return errors.Wrap(err, "reading input")
	}

	out := bufio.NewWriter(cmd.OutOrStdout())
	var (
		pairs   []lz.Pair
		line    []byte
		matched int
		pos     int
	)
	for ; f.AvailableBytes() > 0 && (opts.limit == 0 || pos < opts.limit); pos++ {
		pairs, err = f.Matches(pairs[:0])
		if err != nil {
			return errors.Wrapf(err, "reading input at %d", pos)
		}
		if len(pairs) == 0 && !opts.all {
			continue
		}
		if len(pairs) > 0 {
			matched++
		}
		line = strconv.AppendInt(line[:0], int64(pos), 10)
		for _, p := range pairs {
			line = append(line, ' ')
			line = strconv.AppendUint(line, uint64(p.Len), 10)
			line = append(line, ':')
			line = strconv.AppendUint(line, uint64(p.Dist)+1, 10)
		}
		line = append(line, '\n')
		if _, err := out.Write(line); err != nil {
			return err
		}
	}
	logrus.WithFields(logrus.Fields{"positions": pos, "matched": matched}).Debug("match listing done")
	return out.Flush()
}
