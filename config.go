package pack

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// A MatchFinderID names one of the lz-backed match finders.
type MatchFinderID int

const (
	BT2 MatchFinderID = iota
	BT4
	HC4
)

var matchFinderIDs = []string{"BT2", "BT4", "HC4"}

func (id MatchFinderID) String() string {
	if id < 0 || int(id) >= len(matchFinderIDs) {
		return "MatchFinderID(" + strconv.Itoa(int(id)) + ")"
	}
	return matchFinderIDs[id]
}

// ParseMatchFinderID looks up a match finder by name, ignoring case.
func ParseMatchFinderID(s string) (MatchFinderID, error) {
	for i, name := range matchFinderIDs {
		if strings.EqualFold(s, name) {
			return MatchFinderID(i), nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidConfig, "unknown match finder %q", s)
}

const (
	minDictionarySize = 1
	maxDictionarySize = 1 << 30
	minFastBytes      = 5
	maxFastBytes      = 273
)

// Config holds the user-facing settings of an lz-backed match finder.
type Config struct {
	MatchFinder MatchFinderID

	// DictionarySize is how far back matches may reach.
	DictionarySize int

	// FastBytes is the length at which the search for a longer match stops.
	FastBytes int

	// CutValue limits the candidates examined per position. Zero keeps the
	// finder's default.
	CutValue int

	// MaxLength and MinLength are the match length limits of the output
	// format. Zero means 273 and 4.
	MaxLength int
	MinLength int

	Lazy        bool
	ChainBlocks bool
}

// DefaultConfig is a BT4 finder with a 64 KiB dictionary.
var DefaultConfig = Config{
	MatchFinder:    BT4,
	DictionarySize: 1 << 16,
	FastBytes:      32,
}

// Validate reports the first setting that is out of range.
func (c Config) Validate() error {
	if c.MatchFinder < BT2 || c.MatchFinder > HC4 {
		return errors.Wrapf(ErrInvalidConfig, "match finder %d", int(c.MatchFinder))
	}
	if c.DictionarySize < minDictionarySize || c.DictionarySize > maxDictionarySize {
		return errors.Wrapf(ErrInvalidConfig, "dictionary size %d not in [%d, %d]", c.DictionarySize, minDictionarySize, maxDictionarySize)
	}
	if c.FastBytes < minFastBytes || c.FastBytes > maxFastBytes {
		return errors.Wrapf(ErrInvalidConfig, "fast bytes %d not in [%d, %d]", c.FastBytes, minFastBytes, maxFastBytes)
	}
	if c.CutValue < 0 {
		return errors.Wrapf(ErrInvalidConfig, "cut value %d", c.CutValue)
	}
	if c.MinLength < 0 || c.MaxLength < 0 || (c.MaxLength > 0 && c.MinLength > c.MaxLength) {
		return errors.Wrapf(ErrInvalidConfig, "match length range [%d, %d]", c.MinLength, c.MaxLength)
	}
	return nil
}

// NewMatchFinder validates c and returns the match finder it describes.
func (c Config) NewMatchFinder() (MatchFinder, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	switch c.MatchFinder {
	case HC4:
		return &HashChain{
			MaxDistance: c.DictionarySize,
			MaxLength:   c.MaxLength,
			FastBytes:   c.FastBytes,
			MinLength:   c.MinLength,
			CutValue:    c.CutValue,
			ChainBlocks: c.ChainBlocks,
			Lazy:        c.Lazy,
		}, nil
	}
	numHashBytes := 4
	if c.MatchFinder == BT2 {
		numHashBytes = 2
	}
	return &BinaryTree{
		MaxDistance:  c.DictionarySize,
		MaxLength:    c.MaxLength,
		FastBytes:    c.FastBytes,
		MinLength:    c.MinLength,
		NumHashBytes: numHashBytes,
		CutValue:     c.CutValue,
		ChainBlocks:  c.ChainBlocks,
		Lazy:         c.Lazy,
	}, nil
}
