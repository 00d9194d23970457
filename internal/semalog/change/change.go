// Package change implements the typed change algebra (component C): six
// closed variants, each with apply/transform/serialize, plus the fixed
// precedence order the Detection Driver consults.
package change

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/smartgit-oss/semalog/internal/semalog/reposstate"
)

// Names are the stable JSON discriminator strings, matching the wire format
// every ledger line encodes changes with.
const (
	NameFileAdded        = "file-added"
	NameFileDeleted      = "file-deleted"
	NameFileRenamed      = "file-renamed"
	NameVariableRenamed  = "variable-renamed"
	NameSubASTInserted   = "insert-sub-ast"
	NameTextualChange    = "text"
)

// Precedence is the fixed detector/shadowing order: earlier, more specific
// kinds claim a diff before coarser ones get a chance.
var Precedence = []string{
	NameFileAdded,
	NameFileDeleted,
	NameFileRenamed,
	NameVariableRenamed,
	NameSubASTInserted,
	NameTextualChange,
}

// Change is a single semantic edit. Every variant is a struct used through a
// pointer; Transform returns the receiver itself when the change is
// unaffected by other.
type Change interface {
	// Name returns the stable JSON discriminator for this variant.
	Name() string
	// Apply mutates state to reflect this change.
	Apply(ctx context.Context, state reposstate.State) error
	// Transform rebases this change past an already-applied other change,
	// returning the equivalent post-other change, nil if it becomes a
	// no-op, or a *core.Conflict-wrapped error if rebase is impossible.
	Transform(ctx context.Context, state reposstate.State, other Change) (Change, error)
}

// jsonEnvelope is the on-wire shape every change marshals through: a type
// discriminator plus variant-specific fields, flattened into one object.
type jsonEnvelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// Encode serializes c to its canonical JSON object, embedding its Name() as
// the "type" field alongside its own fields.
func Encode(c Change) ([]byte, error) {
	fields, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("change: encode %s: %w", c.Name(), err)
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(fields, &merged); err != nil {
		return nil, fmt.Errorf("change: encode %s: %w", c.Name(), err)
	}
	typeJSON, _ := json.Marshal(c.Name())
	merged["type"] = typeJSON
	return json.Marshal(merged)
}

// Decode parses one change object, dispatching on its "type" field.
func Decode(data []byte) (Change, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("change: decode: %w", err)
	}
	switch head.Type {
	case NameFileAdded:
		var c FileAdded
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return &c, nil
	case NameFileDeleted:
		var c FileDeleted
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return &c, nil
	case NameFileRenamed:
		var c FileRenamed
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return &c, nil
	case NameVariableRenamed:
		var c VariableRenamed
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return &c, nil
	case NameSubASTInserted:
		var c SubASTInserted
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return &c, nil
	case NameTextualChange:
		var c TextualChange
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return &c, nil
	default:
		return nil, fmt.Errorf("change: unknown type %q", head.Type)
	}
}

// EncodeBatch serializes an ordered list of changes to a JSON array, the
// payload of one ledger line.
func EncodeBatch(changes []Change) ([]byte, error) {
	raws := make([]json.RawMessage, 0, len(changes))
	for _, c := range changes {
		data, err := Encode(c)
		if err != nil {
			return nil, err
		}
		raws = append(raws, data)
	}
	return json.Marshal(raws)
}

// DecodeBatch parses a ledger line's JSON array payload back into changes.
func DecodeBatch(data []byte) ([]Change, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("change: decode batch: %w", err)
	}
	out := make([]Change, 0, len(raws))
	for _, raw := range raws {
		c, err := Decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
