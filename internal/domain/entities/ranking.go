package entities

import (
	"cmp"
	"slices"
)

// RankedOption pairs an activity option with its tally.
type RankedOption struct {
	Option ActivityOption
	Score  int
}

// RankedTimeOption pairs a time option with its tally.
type RankedTimeOption struct {
	Option TimeOption
	Score  int
}

// RankOptions orders options by score descending. Equal scores go to the
// smaller DisplayOrder; ID is the last resort so the order stays total even
// for inconsistent data. Options absent from tally score 0.
func RankOptions(options []ActivityOption, tally map[string]int) []RankedOption {
	ranked := make([]RankedOption, len(options))
	for i, o := range options {
		ranked[i] = RankedOption{Option: o, Score: tally[o.ID]}
	}
	slices.SortFunc(ranked, func(a, b RankedOption) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Option.DisplayOrder, b.Option.DisplayOrder); c != 0 {
			return c
		}
		return cmp.Compare(a.Option.ID, b.Option.ID)
	})
	return ranked
}

// RankTimeOptions applies the RankOptions ordering to time options.
func RankTimeOptions(options []TimeOption, tally map[string]int) []RankedTimeOption {
	ranked := make([]RankedTimeOption, len(options))
	for i, o := range options {
		ranked[i] = RankedTimeOption{Option: o, Score: tally[o.ID]}
	}
	slices.SortFunc(ranked, func(a, b RankedTimeOption) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Option.DisplayOrder, b.Option.DisplayOrder); c != 0 {
			return c
		}
		return cmp.Compare(a.Option.ID, b.Option.ID)
	})
	return ranked
}
