package collab

import (
	"fmt"

	"pkt.systems/repostamp/schema"
)

var roundRobinFields = []Field{
	{Name: "logins", Info: "comma separated logins (required)"},
	{Name: "per_repo", Info: "logins assigned to each repository (default 1)"},
}

// RoundRobin deals logins across repositories in order, wrapping around.
type RoundRobin struct {
	Logins  []string
	PerRepo int
}

func newRoundRobin(params map[string]string) (Source, error) {
	logins := splitLogins(params["logins"])
	if len(logins) == 0 {
		return nil, fmt.Errorf("%w: logins are required", schema.ErrInvalidSource)
	}
	per, err := positiveParam(params, "per_repo", 1)
	if err != nil {
		return nil, err
	}
	return RoundRobin{Logins: logins, PerRepo: per}, nil
}

// Produce implements Source. PerRepo is capped at the number of logins.
func (s RoundRobin) Produce(count int) ([][]string, error) {
	if err := checkCount(count); err != nil {
		return nil, err
	}
	out := make([][]string, count)
	if len(s.Logins) == 0 {
		return out, nil
	}
	per := min(max(s.PerRepo, 1), len(s.Logins))
	next := 0
	for i := range out {
		row := make([]string, 0, per)
		for range per {
			row = append(row, s.Logins[next%len(s.Logins)])
			next++
		}
		out[i] = row
	}
	return out, nil
}
