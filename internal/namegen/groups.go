package namegen

import (
	"fmt"
	"iter"
	"strconv"

	"pkt.systems/repostamp/schema"
)

var groupsFields = []Field{
	{Name: "start", Info: "first group number"},
	{Name: "test", Info: "test number shared by every repository"},
}

// Groups yields G<group>T<test> names for consecutive groups.
type Groups struct {
	Start int
	Test  int
}

func newGroups(params map[string]string) (Generator, error) {
	start, err := intParam(params, "start", 1)
	if err != nil {
		return nil, err
	}
	test, err := intParam(params, "test", 1)
	if err != nil {
		return nil, err
	}
	return Groups{Start: start, Test: test}, nil
}

// Generate implements Generator.
func (g Groups) Generate() iter.Seq[schema.NamePair] {
	return func(yield func(schema.NamePair) bool) {
		test := strconv.Itoa(g.Test)
		for group := g.Start; ; group++ {
			padded := pad(group, 2)
			pair := schema.NamePair{
				Name:        "G" + padded + "T" + test,
				Description: fmt.Sprintf("Data Structures - Group %s - Test %s", padded, test),
			}
			if !yield(pair) {
				return
			}
		}
	}
}
