// Package ledger implements the Change Ledger (component G): an append-only
// per-commit record of change lists, one line per commit of the form
// "<index> <json_array>".
package ledger

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/smartgit-oss/semalog/internal/semalog/change"
	"github.com/smartgit-oss/semalog/internal/semalog/core"
)

// Entry is one parsed ledger line.
type Entry struct {
	Index   int
	Changes []change.Change
}

// Load reads every entry from r, in file order.
func Load(r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var entries []Entry
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry, err := parseLine(line)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, core.NewStoreError("read ledger", err)
	}
	return entries, nil
}

func parseLine(line string) (Entry, error) {
	sep := strings.IndexByte(line, ' ')
	if sep < 0 {
		return Entry{}, core.NewMalformedLedger(line, fmt.Errorf("missing space separator"))
	}
	index, err := strconv.Atoi(line[:sep])
	if err != nil {
		return Entry{}, core.NewMalformedLedger(line, err)
	}
	changes, err := change.DecodeBatch([]byte(line[sep+1:]))
	if err != nil {
		return Entry{}, core.NewMalformedLedger(line, err)
	}
	return Entry{Index: index, Changes: changes}, nil
}

// Append writes one new entry at the end of w, formatted as "<index>
// <json_array>\n".
func Append(w io.Writer, entry Entry) error {
	payload, err := change.EncodeBatch(entry.Changes)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%d %s\n", entry.Index, payload)
	if err != nil {
		return core.NewStoreError("append ledger", err)
	}
	return nil
}

// NextIndex returns the index the next appended entry should use: zero for
// an empty ledger, or one past the maximum index already present.
func NextIndex(entries []Entry) int {
	max := -1
	for _, e := range entries {
		if e.Index > max {
			max = e.Index
		}
	}
	return max + 1
}
