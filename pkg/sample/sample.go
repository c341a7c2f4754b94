// Package sample filters a manifest down to a reproducible subset of its files.
//
// Supported directives:
//
//	group   amount:groupSize    picks amount files at random in every group of groupSize consecutive files
//	random  amount:frequency    picks amount files out of every frequency files, at random over the whole set
//	range   start:stop:step     picks every step-th file from start (inclusive) to stop (exclusive)
//
// Files are considered in lexicographic order of their paths. Random picks are seeded, so
// the same directive and seed on the same manifest always yield the same subset.
package sample

import (
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/oneconcern/datagit/pkg/errors"
	"github.com/oneconcern/datagit/pkg/manifest"
)

// ErrInvalidDirective is returned for malformed or out of bound sampling directives
var ErrInvalidDirective = errors.New("invalid sampling directive")

// Kind of sampling directive
type Kind string

// Supported kinds of directives
const (
	Group  Kind = "group"
	Random Kind = "random"
	Range  Kind = "range"
)

// Sampler selects a subset of a list of sorted paths
type Sampler interface {
	Sample(paths []string) ([]string, error)
	String() string
}

// Parse a sampling directive
func Parse(kind, value string, seed int64) (Sampler, error) {
	switch Kind(kind) {
	case Group:
		amount, size, err := parsePair(value, "amount:groupSize")
		if err != nil {
			return nil, err
		}
		return groupSampler{amount: amount, groupSize: size, seed: seed}, nil
	case Random:
		amount, frequency, err := parsePair(value, "amount:frequency")
		if err != nil {
			return nil, err
		}
		return randomSampler{amount: amount, frequency: frequency, seed: seed}, nil
	case Range:
		return parseRange(value)
	default:
		return nil, ErrInvalidDirective.Detailf("unknown sample type %q, expected %s, %s or %s", kind, Group, Random, Range)
	}
}

func parseInts(value string, n int, format string) ([]int, error) {
	parts := strings.Split(value, ":")
	if len(parts) != n {
		return nil, ErrInvalidDirective.Detailf("%q does not match %s", value, format)
	}
	res := make([]int, n)
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, ErrInvalidDirective.Detailf("%q does not match %s", value, format).Wrap(err)
		}
		res[i] = v
	}
	return res, nil
}

func parsePair(value, format string) (int, int, error) {
	v, err := parseInts(value, 2, format)
	if err != nil {
		return 0, 0, err
	}
	amount, size := v[0], v[1]
	if amount <= 0 || size <= 0 {
		return 0, 0, ErrInvalidDirective.Detailf("%q: values must be positive", value)
	}
	if amount >= size {
		return 0, 0, ErrInvalidDirective.Detailf("%q: amount must be lower than %s", value, strings.Split(format, ":")[1])
	}
	return amount, size, nil
}

func parseRange(value string) (Sampler, error) {
	v, err := parseInts(value, 3, "start:stop:step")
	if err != nil {
		return nil, err
	}
	s := rangeSampler{start: v[0], stop: v[1], step: v[2]}
	if s.start < 0 || s.step <= 0 || s.start >= s.stop {
		return nil, ErrInvalidDirective.Detailf("%q: expected 0 <= start < stop and step > 0", value)
	}
	return s, nil
}

type groupSampler struct {
	amount, groupSize int
	seed              int64
}

func (s groupSampler) String() string {
	return string(Group) + " " + strconv.Itoa(s.amount) + ":" + strconv.Itoa(s.groupSize)
}

func (s groupSampler) Sample(paths []string) ([]string, error) {
	if s.groupSize > len(paths) {
		return nil, ErrInvalidDirective.Detailf("group size %d exceeds the number of files (%d)", s.groupSize, len(paths))
	}
	gen := rand.New(rand.NewSource(s.seed)) // #nosec
	var res []string
	for start := 0; start < len(paths); start += s.groupSize {
		end := start + s.groupSize
		if end > len(paths) {
			end = len(paths)
		}
		group := paths[start:end]
		picks := s.amount
		if picks > len(group) {
			picks = len(group)
		}
		for _, i := range gen.Perm(len(group))[:picks] {
			res = append(res, group[i])
		}
	}
	return res, nil
}

type randomSampler struct {
	amount, frequency int
	seed              int64
}

func (s randomSampler) String() string {
	return string(Random) + " " + strconv.Itoa(s.amount) + ":" + strconv.Itoa(s.frequency)
}

func (s randomSampler) Sample(paths []string) ([]string, error) {
	if s.frequency > len(paths) {
		return nil, ErrInvalidDirective.Detailf("frequency %d exceeds the number of files (%d)", s.frequency, len(paths))
	}
	picks := len(paths) * s.amount / s.frequency
	gen := rand.New(rand.NewSource(s.seed)) // #nosec
	res := make([]string, 0, picks)
	for _, i := range gen.Perm(len(paths))[:picks] {
		res = append(res, paths[i])
	}
	return res, nil
}

type rangeSampler struct {
	start, stop, step int
}

func (s rangeSampler) String() string {
	return string(Range) + " " + strconv.Itoa(s.start) + ":" + strconv.Itoa(s.stop) + ":" + strconv.Itoa(s.step)
}

func (s rangeSampler) Sample(paths []string) ([]string, error) {
	if s.stop > len(paths) {
		return nil, ErrInvalidDirective.Detailf("range stop %d exceeds the number of files (%d)", s.stop, len(paths))
	}
	var res []string
	for i := s.start; i < s.stop; i += s.step {
		res = append(res, paths[i])
	}
	return res, nil
}

// Apply a sampler to a manifest, yielding a new manifest with the selected files only
func Apply(m *manifest.Manifest, s Sampler) (*manifest.Manifest, error) {
	files := m.Files()
	paths := make([]string, 0, len(files))
	for pth := range files {
		paths = append(paths, pth)
	}
	sort.Strings(paths)

	selected, err := s.Sample(paths)
	if err != nil {
		return nil, err
	}
	res := manifest.New()
	for _, pth := range selected {
		res.Add(files[pth], pth)
	}
	return res, nil
}
