package collab

import "strings"

var inlineFields = []Field{
	{Name: "groups", Info: "logins per repository; ';' separates repositories, ',' separates logins"},
}

// Inline holds lists parsed from a single parameter string.
type Inline struct {
	Rows [][]string
}

func newInline(params map[string]string) (Source, error) {
	return ParseInline(params["groups"]), nil
}

// ParseInline parses "alice,bob;carol" into one list per repository. Empty segments
// keep their position so a repository can be left without collaborators.
func ParseInline(value string) Inline {
	if strings.TrimSpace(value) == "" {
		return Inline{}
	}
	segments := strings.Split(value, ";")
	rows := make([][]string, 0, len(segments))
	for _, segment := range segments {
		rows = append(rows, splitLogins(segment))
	}
	return Inline{Rows: rows}
}

// Produce implements Source.
func (s Inline) Produce(count int) ([][]string, error) {
	return fit(s.Rows, count)
}
