// Package conf edits directive blocks in line-oriented configuration
// files such as odoo.conf. A directive is a single key whose value may
// span multiple physical lines via indented continuation lines:
//
//	addons_path = /mnt/extra-addons,
//	 /workspace/addons/oca/web,
//	 /workspace/addons/custom
//
// The package never parses the rest of the file; lines outside the
// directive block are carried through byte for byte.
package conf

import (
	"fmt"
	"slices"
	"strings"
)

// Outcome reports the result of a Rewrite call.
type Outcome int

const (
	// Changed means the directive block was rewritten.
	Changed Outcome = iota
	// Unchanged means the computed entry list already matches the file
	// and no rewrite is needed.
	Unchanged
	// NotFound means the directive does not exist anywhere in the file.
	NotFound
)

func (o Outcome) String() string {
	switch o {
	case Changed:
		return "changed"
	case Unchanged:
		return "unchanged"
	case NotFound:
		return "not found"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Block is the located region of a directive within a file. Start is the
// index of the header line, End the index of the first line past the last
// continuation line. Entries holds the parsed values in file order with
// duplicates removed by first occurrence.
type Block struct {
	Entries []string
	Start   int
	End     int
}

// Locate finds the first occurrence of the named directive in content and
// parses its entries, including continuation lines. Blank lines and
// comment lines inside the block are skipped without contributing
// entries. Trailing backslash continuation markers are stripped from
// values. Returns false (with Start and End set to -1) when the directive
// is absent.
func Locate(content, directive string) (Block, bool) {
	lines := splitLines(content)
	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		if !strings.HasPrefix(stripped, directive) {
			continue
		}

		block := Block{Start: i}
		seen := make(map[string]struct{})
		if _, value, found := strings.Cut(stripped, "="); found {
			block.Entries = appendEntries(block.Entries, seen, value)
		}

		j := i + 1
		for j < len(lines) {
			raw := lines[j]
			cont := strings.TrimSpace(raw)
			if cont == "" || strings.HasPrefix(cont, "#") {
				j++
				continue
			}
			if !strings.HasPrefix(raw, " ") && !strings.HasPrefix(raw, "\t") {
				break
			}
			block.Entries = appendEntries(block.Entries, seen, cont)
			j++
		}
		block.End = j
		return block, true
	}
	return Block{Start: -1, End: -1}, false
}

// Rewrite recomputes the entry list of the named directive so that it
// contains the entries of preserve that already exist in the file (in
// their original order) followed by the required entries (in caller
// order), without duplicates. When the result matches the current
// entries the input content is returned verbatim, which makes the
// operation idempotent. Rewritten blocks never use backslash
// continuation markers, so files that carried them are normalized.
func Rewrite(content, directive string, required, preserve []string) (string, Outcome) {
	block, found := Locate(content, directive)
	if !found {
		return "", NotFound
	}

	keep := make(map[string]struct{}, len(preserve))
	for _, name := range preserve {
		keep[name] = struct{}{}
	}

	seen := make(map[string]struct{}, len(block.Entries)+len(required))
	final := make([]string, 0, len(block.Entries)+len(required))
	for _, entry := range block.Entries {
		if _, ok := keep[entry]; !ok {
			continue
		}
		if _, dup := seen[entry]; dup {
			continue
		}
		seen[entry] = struct{}{}
		final = append(final, entry)
	}
	for _, entry := range required {
		if _, dup := seen[entry]; dup {
			continue
		}
		seen[entry] = struct{}{}
		final = append(final, entry)
	}

	if slices.Equal(final, block.Entries) {
		return content, Unchanged
	}

	lines := splitLines(content)
	out := make([]string, 0, len(lines)+len(final))
	out = append(out, lines[:block.Start]...)
	if len(final) == 0 {
		out = append(out, directive+" = ")
	}
	for i, entry := range final {
		comma := ","
		if i == len(final)-1 {
			comma = ""
		}
		if i == 0 {
			out = append(out, fmt.Sprintf("%s = %s%s", directive, entry, comma))
		} else {
			out = append(out, " "+entry+comma)
		}
	}
	out = append(out, lines[block.End:]...)

	return strings.Join(out, "\n") + "\n", Changed
}

// appendEntries splits a header or continuation value on commas and
// appends the trimmed, non-empty parts not seen before. A trailing
// backslash is removed both from the whole value and from each part.
func appendEntries(entries []string, seen map[string]struct{}, value string) []string {
	value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), `\`))
	if value == "" {
		return entries
	}
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), `\`))
		if part == "" {
			continue
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		entries = append(entries, part)
	}
	return entries
}

// splitLines splits content on newlines, dropping the empty element
// produced by a trailing newline so that joining with "\n" plus a final
// "\n" round-trips.
func splitLines(content string) []string {
	lines := strings.Split(content, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
