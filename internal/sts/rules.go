package sts

import (
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/pbaille/legalsts/internal/domain"
	"github.com/pbaille/legalsts/internal/text"
)

// DefaultCombinatorialThreshold is the discussion size below which the
// triplet rule pairs every record with every other one.
const DefaultCombinatorialThreshold = 30

func pair(a, b domain.Opinion, group string, label int) domain.Sample {
	return domain.Sample{Source: a.Source, Group: group, TextA: a.Text, TextB: b.Text, Similarity: label}
}

// adjacentPairs emits (r[i], r[i+1]) for every record of a group.
func adjacentPairs(b *Builder, records []domain.Opinion, group string, label int) int {
	n := 0
	for i := 0; i+1 < len(records); i++ {
		if b.Add(pair(records[i], records[i+1], group, label)) {
			n++
		}
	}
	return n
}

// offsetPairs emits (x[i], y[i+offset]) while both sides exist.
func offsetPairs(b *Builder, x, y []domain.Opinion, offset int, group string, label int) int {
	n := 0
	for i := 0; i < len(x) && i+offset < len(y); i++ {
		if b.Add(pair(x[i], y[i+offset], group, label)) {
			n++
		}
	}
	return n
}

// SameGroupPairs pairs adjacent records inside each group. A group of n
// records yields n-1 pairs.
func SameGroupPairs(b *Builder, groups []Group, label int) int {
	n := 0
	for _, g := range groups {
		n += adjacentPairs(b, g.Records, g.Name(), label)
	}
	return n
}

// AdjacentGroupPairs pairs each group with the one following it, record i
// of the first against record i+1 of the second. A single-record group is
// therefore only ever a source: nothing reaches index 1 of it.
func AdjacentGroupPairs(b *Builder, groups []Group, label int) int {
	n := 0
	for i := 0; i+1 < len(groups); i++ {
		n += offsetPairs(b, groups[i].Records, groups[i+1].Records, 1, groups[i].Name(), label)
	}
	return n
}

// AntagonicGroupPairs pairs every area that has an antagonic entry with its
// counterpart, using the same offset pairing as AdjacentGroupPairs.
func AntagonicGroupPairs(b *Builder, areas []Group, m AntagonicMap, label int) (int, error) {
	index := indexByLast(areas)
	n, matched := 0, 0
	for _, area := range areas {
		if _, ok := m[area.Last()]; !ok {
			b.Logger().Debug("area without antagonic entry", "area", area.Last())
			continue
		}
		target, err := m.resolve(area.Last(), index)
		if err != nil {
			return n, err
		}
		matched++
		added := offsetPairs(b, area.Records, target.Records, 1, area.Name(), label)
		if added == 0 {
			b.Logger().Debug("antagonic area produced no pairs", "area", area.Last(), "antagonic", target.Last(),
				"records", area.Len(), "antagonic_records", target.Len())
		}
		n += added
	}
	if matched == 0 && len(areas) > 0 {
		return n, fmt.Errorf("%w: no corpus area has an entry", ErrAntagonicArea)
	}
	return n, nil
}

// SameDiscussionPairs emits the tier 3 pairs.
func SameDiscussionPairs(b *Builder, records []domain.Opinion) int {
	groups := GroupBy(records, domain.FieldArea, domain.FieldTheme, domain.FieldDiscussion)
	return SameGroupPairs(b, groups, TierSameDiscussion)
}

// SameThemePairs emits the tier 2 pairs: adjacent discussions of a theme.
func SameThemePairs(b *Builder, records []domain.Opinion) int {
	n := 0
	for _, area := range GroupBy(records, domain.FieldArea) {
		for _, theme := range area.Split(domain.FieldTheme) {
			n += AdjacentGroupPairs(b, theme.Split(domain.FieldDiscussion), TierSameTheme)
		}
	}
	return n
}

// SameAreaPairs emits the tier 1 pairs: adjacent themes of an area.
// Single-theme areas contribute nothing.
func SameAreaPairs(b *Builder, records []domain.Opinion) int {
	n := 0
	for _, area := range GroupBy(records, domain.FieldArea) {
		themes := area.Split(domain.FieldTheme)
		if len(themes) < 2 {
			continue
		}
		n += AdjacentGroupPairs(b, themes, TierSameArea)
	}
	return n
}

// CrossAreaPairs emits the tier 0 pairs. Without an antagonic map,
// consecutive areas are paired instead.
func CrossAreaPairs(b *Builder, records []domain.Opinion, m AntagonicMap) (int, error) {
	areas := GroupBy(records, domain.FieldArea)
	if len(m) == 0 {
		return AdjacentGroupPairs(b, areas, TierCrossArea), nil
	}
	return AntagonicGroupPairs(b, areas, m, TierCrossArea)
}

// ScaleRules runs the four tiers of the scale dataset, most similar first.
func ScaleRules(b *Builder, records []domain.Opinion, m AntagonicMap) error {
	log := b.Logger()

	n := SameDiscussionPairs(b, records)
	log.Info("pairs generated", "rule", "same discussion", "similarity", TierSameDiscussion, "count", n)

	n = SameThemePairs(b, records)
	log.Info("pairs generated", "rule", "same theme", "similarity", TierSameTheme, "count", n)

	n = SameAreaPairs(b, records)
	log.Info("pairs generated", "rule", "same area", "similarity", TierSameArea, "count", n)

	n, err := CrossAreaPairs(b, records, m)
	if err != nil {
		return fmt.Errorf("cross area pairs: %w", err)
	}
	log.Info("pairs generated", "rule", "cross area", "similarity", TierCrossArea, "count", n)
	return nil
}

// positiveIndexes lists the anchor/positive index pairs of a discussion:
// every i<j combination for small groups, adjacent records otherwise.
func positiveIndexes(size, threshold int) [][2]int {
	var out [][2]int
	if size < threshold {
		for i := 0; i < size; i++ {
			for j := i + 1; j < size; j++ {
				out = append(out, [2]int{i, j})
			}
		}
		return out
	}
	for i := 0; i+1 < size; i++ {
		out = append(out, [2]int{i, i + 1})
	}
	return out
}

// TripletRule emits (anchor, positive, negative) triplets. Anchor and
// positive share a discussion; the negative is drawn with rng from the
// antagonic area of the anchor.
func TripletRule(b *Builder, records []domain.Opinion, m AntagonicMap, threshold int, rng *rand.Rand) error {
	if threshold <= 0 {
		threshold = DefaultCombinatorialThreshold
	}
	areas := indexByLast(GroupBy(records, domain.FieldArea))
	discussions := GroupBy(records, domain.FieldArea, domain.FieldTheme, domain.FieldDiscussion)

	n := 0
	for _, d := range discussions {
		if d.Len() < 2 {
			continue
		}
		negatives, err := m.resolve(d.Key[0], areas)
		if err != nil {
			return err
		}
		for _, idx := range positiveIndexes(d.Len(), threshold) {
			anchor, positive := d.Records[idx[0]], d.Records[idx[1]]
			negative := negatives.Records[rng.IntN(negatives.Len())]
			if b.Add(domain.Sample{
				Source: anchor.Source,
				Group:  d.Name(),
				TextA:  anchor.Text,
				TextB:  positive.Text,
				TextC:  negative.Text,
			}) {
				n++
			}
		}
	}
	b.Logger().Info("triplets generated", "discussions", len(discussions), "count", n)
	return nil
}

// BenchmarkRule emits, per group, adjacent positives and for every record
// k negatives drawn without replacement from the other groups.
func BenchmarkRule(b *Builder, groups []Group, k int, rng *rand.Rand) int {
	var flat []domain.Opinion
	offsets := make([]int, len(groups))
	for i, g := range groups {
		offsets[i] = len(flat)
		flat = append(flat, g.Records...)
	}

	n := 0
	for gi, g := range groups {
		n += adjacentPairs(b, g.Records, g.Name(), Similar)

		complement := len(flat) - g.Len()
		for _, r := range g.Records {
			for _, j := range sampleIndexes(rng, complement, k) {
				if j >= offsets[gi] {
					j += g.Len()
				}
				if b.Add(pair(r, flat[j], g.Name(), Dissimilar)) {
					n++
				}
			}
		}
	}
	return n
}

// sampleIndexes draws min(k, n) distinct integers from [0, n).
func sampleIndexes(rng *rand.Rand, n, k int) []int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}
	seen := make(map[int]struct{}, k)
	out := make([]int, 0, k)
	for len(out) < k {
		j := rng.IntN(n)
		if _, ok := seen[j]; ok {
			continue
		}
		seen[j] = struct{}{}
		out = append(out, j)
	}
	return out
}

// LegacyPairs emits adjacent in-group positives and, between consecutive
// groups, negatives at offsets 0 and 1.
func LegacyPairs(b *Builder, groups []Group) int {
	n := SameGroupPairs(b, groups, Similar)
	for i := 0; i+1 < len(groups); i++ {
		first, second := groups[i], groups[i+1]
		n += offsetPairs(b, first.Records, second.Records, 0, first.Name(), Dissimilar)
		n += offsetPairs(b, first.Records, second.Records, 1, second.Name(), Dissimilar)
	}
	return n
}

// BinaryFromTriplets expands every triplet into labeled pairs, adding
// paragraph-shuffled copies of texts long enough to be shuffled.
func BinaryFromTriplets(b *Builder, triplets []domain.Sample, rng *rand.Rand) int {
	n := 0
	add := func(t domain.Sample, x, y string, label int) {
		if b.Add(domain.Sample{Source: t.Source, Group: t.Group, TextA: x, TextB: y, Similarity: label}) {
			n++
		}
	}
	for _, t := range triplets {
		anchor, positive, negative := text.Clean(t.TextA), text.Clean(t.TextB), text.Clean(t.TextC)
		add(t, anchor, positive, Similar)
		add(t, anchor, negative, Dissimilar)

		if shuffled, ok := text.ShuffleParagraphs(anchor, rng); ok {
			add(t, shuffled, positive, Similar)
			add(t, shuffled, negative, Dissimilar)
		}
		if shuffled, ok := text.ShuffleParagraphs(positive, rng); ok {
			add(t, anchor, shuffled, Similar)
		}
		if shuffled, ok := text.ShuffleParagraphs(negative, rng); ok {
			add(t, anchor, shuffled, Dissimilar)
		}
	}
	return n
}

// GroupedTexts emits one row per cleaned ementa labeled with the integer id
// of its discussion, ids counted in first-seen order. Ementas long enough
// to be shuffled get a second, paragraph-shuffled row in the same group.
func GroupedTexts(b *Builder, records []domain.Opinion, rng *rand.Rand) int {
	n := 0
	add := func(r domain.Opinion, id, ementa string) {
		if b.Add(domain.Sample{Source: r.Source, Group: id, TextA: ementa}) {
			n++
		}
	}
	discussions := GroupBy(records, domain.FieldArea, domain.FieldTheme, domain.FieldDiscussion)
	for i, d := range discussions {
		id := strconv.Itoa(i)
		for _, r := range d.Records {
			ementa := text.Clean(r.Text)
			add(r, id, ementa)
			if shuffled, ok := text.ShuffleParagraphs(ementa, rng); ok {
				add(r, id, shuffled)
			}
		}
	}
	b.Logger().Info("grouped texts generated", "discussions", len(discussions), "count", n)
	return n
}
