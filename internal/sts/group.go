package sts

import (
	"strings"

	"github.com/pbaille/legalsts/internal/domain"
)

// Group is the set of opinions sharing the same values for a list of
// classification fields. Records keep corpus order.
type Group struct {
	Fields  []domain.Field
	Key     []string
	Records []domain.Opinion
}

// Name joins the key values, the way group labels appear in exported files.
func (g Group) Name() string {
	return strings.Join(g.Key, " ")
}

// Last returns the most specific key value.
func (g Group) Last() string {
	if len(g.Key) == 0 {
		return ""
	}
	return g.Key[len(g.Key)-1]
}

// Len returns the number of records in the group.
func (g Group) Len() int {
	return len(g.Records)
}

// GroupBy partitions records by the tuple of fields. Groups come out in the
// order their key was first seen, so adjacency between groups is a property
// of the input file, not of any sorting.
func GroupBy(records []domain.Opinion, fields ...domain.Field) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, r := range records {
		key := make([]string, len(fields))
		for i, f := range fields {
			key[i] = r.Value(f)
		}
		id := strings.Join(key, "\x1f")
		i, ok := index[id]
		if !ok {
			i = len(groups)
			index[id] = i
			groups = append(groups, Group{Fields: fields, Key: key})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}

// Split regroups the records of g by finer fields. The resulting groups
// carry g's key as a prefix.
func (g Group) Split(fields ...domain.Field) []Group {
	sub := GroupBy(g.Records, fields...)
	for i := range sub {
		sub[i].Fields = append(append([]domain.Field{}, g.Fields...), fields...)
		sub[i].Key = append(append([]string{}, g.Key...), sub[i].Key...)
	}
	return sub
}
