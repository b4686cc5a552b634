package schema

import (
	"fmt"
	"strings"
	"unicode"
)

const maxRepoNameLen = 100

// NormalizeRole validates and normalizes a collaborator role.
// Allowed values: admin, maintain, read, triage, write.
func NormalizeRole(value string) (Role, error) {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	for _, role := range Roles() {
		if string(role) == trimmed {
			return role, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, value)
}

// NormalizeSlot returns the slot with DefaultSlot applied when empty.
// Slots may contain letters, digits, '.', '_' and '-'.
func NormalizeSlot(slot Slot) (Slot, error) {
	trimmed := strings.TrimSpace(string(slot))
	if trimmed == "" {
		return DefaultSlot, nil
	}
	for _, r := range trimmed {
		if r == '.' || r == '_' || r == '-' {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		return "", fmt.Errorf("%w: %q", ErrInvalidSlot, slot)
	}
	return Slot(trimmed), nil
}

// ValidateRepoName checks a repository name against the remote's naming rules:
// A-Z, a-z, 0-9, '.', '_', '-', at most 100 characters, not "." or "..".
func ValidateRepoName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidRepoName, name)
	}
	if len(name) > maxRepoNameLen {
		return fmt.Errorf("%w: %q exceeds %d characters", ErrInvalidRepoName, name, maxRepoNameLen)
	}
	for _, r := range name {
		if r == '.' || r == '_' || r == '-' {
			continue
		}
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			continue
		}
		return fmt.Errorf("%w: %q", ErrInvalidRepoName, name)
	}
	return nil
}

// ValidateCount ensures 1 <= count <= limit. A limit <= 0 disables the upper bound.
func ValidateCount(count, limit int) error {
	if count < 1 {
		return fmt.Errorf("%w: %d (must be at least 1)", ErrInvalidCount, count)
	}
	if limit > 0 && count > limit {
		return fmt.Errorf("%w: %d (limit is %d)", ErrInvalidCount, count, limit)
	}
	return nil
}
