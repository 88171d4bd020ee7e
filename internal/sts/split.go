package sts

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/pbaille/legalsts/internal/domain"
)

// Split seeds and ratios of the exported datasets.
const (
	PrimarySeed   uint64 = 103
	SecondarySeed uint64 = 99

	ThreeWayTrain   = 0.70
	ThreeWayHoldout = 0.25
)

// Split shuffles samples with a generator seeded by seed and cuts the
// permutation after floor(N*trainFraction) elements.
func Split(samples []domain.Sample, trainFraction float64, seed uint64) (train, rest []domain.Sample, err error) {
	if trainFraction <= 0 || trainFraction >= 1 || math.IsNaN(trainFraction) {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidSplit, trainFraction)
	}
	n := len(samples)
	cut := int(math.Floor(float64(n)*trainFraction + 1e-9))

	perm := rand.New(rand.NewPCG(seed, seed)).Perm(n)
	train = make([]domain.Sample, 0, cut)
	rest = make([]domain.Sample, 0, n-cut)
	for i, j := range perm {
		if i < cut {
			train = append(train, samples[j])
		} else {
			rest = append(rest, samples[j])
		}
	}
	return train, rest, nil
}

// SplitThree splits 70/30 with PrimarySeed, then splits the 30% 25/75 with
// SecondarySeed into a holdout and a test set.
func SplitThree(samples []domain.Sample) (train, holdout, test []domain.Sample, err error) {
	train, rest, err := Split(samples, ThreeWayTrain, PrimarySeed)
	if err != nil {
		return nil, nil, nil, err
	}
	holdout, test, err = Split(rest, ThreeWayHoldout, SecondarySeed)
	if err != nil {
		return nil, nil, nil, err
	}
	return train, holdout, test, nil
}

// SplitPlan describes how a variant partitions its samples.
type SplitPlan struct {
	Train float64
	Seed  uint64
	// Holdout > 0 splits the remainder again with HoldoutSeed, the first
	// part becoming HoldoutName and the rest the test set.
	Holdout     float64
	HoldoutSeed uint64
	HoldoutName string
}

// Apply returns the full set followed by the partitions of the plan.
func (p SplitPlan) Apply(samples []domain.Sample) ([]domain.Partition, error) {
	name := p.HoldoutName
	if name == "" {
		name = domain.SplitDev
	}
	train, rest, err := Split(samples, p.Train, p.Seed)
	if err != nil {
		return nil, err
	}
	parts := []domain.Partition{
		{Name: domain.SplitFull, Samples: samples},
		{Name: domain.SplitTrain, Samples: train},
	}
	if p.Holdout == 0 {
		return append(parts, domain.Partition{Name: name, Samples: rest}), nil
	}
	holdout, test, err := Split(rest, p.Holdout, p.HoldoutSeed)
	if err != nil {
		return nil, err
	}
	return append(parts,
		domain.Partition{Name: name, Samples: holdout},
		domain.Partition{Name: domain.SplitTest, Samples: test},
	), nil
}
