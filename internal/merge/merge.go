// Package merge implements the three-way JSON merge used to reconcile
// divergent copies of an entity document: a recursive structural merge
// of "ours" and "theirs" against a common "original", producing either a
// merged document or one embedding conflict marker nodes.
package merge

import "github.com/dfki-ric/xdbi/internal/xtype"

// ConflictKey is the marker key written into a conflict node.
const ConflictKey = "conflict"

// ConflictMarker is the literal value used in a conflict node's
// "conflict" field.
const ConflictMarker = "FIXME"

// ThreeWay recursively merges ours and theirs against original. It
// returns the merged document and whether any conflict was recorded.
//
// At each object level, for every key present in ours or theirs:
//   - if ours == theirs, adopt that value
//   - else if theirs == original, ours changed alone: adopt ours
//   - else if ours == original, theirs changed alone: adopt theirs
//   - else if both values are objects, recurse (conflict is the OR of
//     child conflicts)
//   - else record a conflict node {conflict:"FIXME", original, ours, theirs}
func ThreeWay(original, ours, theirs map[string]any) (map[string]any, bool) {
	conflict := false
	result := make(map[string]any)

	keys := make(map[string]struct{})
	for k := range ours {
		keys[k] = struct{}{}
	}
	for k := range theirs {
		keys[k] = struct{}{}
	}

	for k := range keys {
		originalHas, ourHas, theirHas := hasKey(original, k), hasKey(ours, k), hasKey(theirs, k)
		originalValue, ourValue, theirValue := valueOf(original, k), valueOf(ours, k), valueOf(theirs, k)

		if xtype.Equal(ourValue, theirValue) {
			result[k] = ourValue
			continue
		}

		switch {
		case xtype.Equal(theirValue, originalValue):
			if ourHas {
				result[k] = ourValue
			}
		case xtype.Equal(ourValue, originalValue):
			if theirHas {
				result[k] = theirValue
			}
		default:
			ourObj, ourIsObj := ourValue.(map[string]any)
			theirObj, theirIsObj := theirValue.(map[string]any)
			if ourIsObj && theirIsObj {
				originalObj, _ := originalValue.(map[string]any)
				sub, subConflict := ThreeWay(originalObj, ourObj, theirObj)
				conflict = conflict || subConflict
				result[k] = sub
			} else {
				conflict = true
				result[k] = map[string]any{
					ConflictKey: ConflictMarker,
					"original":  originalValue,
					"ours":      ourValue,
					"theirs":    theirValue,
				}
			}
		}
		_ = originalHas
	}

	return result, conflict
}

func hasKey(m map[string]any, k string) bool {
	if m == nil {
		return false
	}
	_, ok := m[k]
	return ok
}

func valueOf(m map[string]any, k string) any {
	if m == nil {
		return nil
	}
	return m[k]
}
