package sts

import "fmt"

// AntagonicMap names, for a legal area, the area whose opinions serve as
// its hard negatives. The relation is one-directional: an entry X -> Y says
// nothing about Y.
type AntagonicMap map[string]string

// Lookup returns the antagonic counterpart of area.
func (m AntagonicMap) Lookup(area string) (string, error) {
	target, ok := m[area]
	if !ok || target == "" {
		return "", fmt.Errorf("%w: no entry for %q", ErrAntagonicArea, area)
	}
	return target, nil
}

// resolve finds the counterpart group of area among groups.
func (m AntagonicMap) resolve(area string, groups map[string]Group) (Group, error) {
	target, err := m.Lookup(area)
	if err != nil {
		return Group{}, err
	}
	g, ok := groups[target]
	if !ok || g.Len() == 0 {
		return Group{}, fmt.Errorf("%w: %q (antagonic to %q) not in corpus", ErrAntagonicArea, target, area)
	}
	return g, nil
}

func indexByLast(groups []Group) map[string]Group {
	index := make(map[string]Group, len(groups))
	for _, g := range groups {
		index[g.Last()] = g
	}
	return index
}
