package transform

import (
	"github.com/mcncl/treekit/internal/formatter"
	"github.com/mcncl/treekit/internal/models"
)

// Deduplicate keeps the first element of arr for each distinct identity and
// reports how many were dropped. With a keyField, an object holding that
// field is identified by the field's value; every other element is
// identified by its canonical serialization. Field values compare by kind as
// well as text, so {"id":1} and {"id":"1"} are both kept.
func Deduplicate(arr models.Value, keyField string) (models.Value, int) {
	if !arr.IsArray() {
		return arr.Clone(), 0
	}

	seen := make(map[string]struct{}, arr.Len())
	kept := make([]models.Value, 0, arr.Len())
	for _, item := range arr.AsArray() {
		id := identity(item, keyField)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		kept = append(kept, item.Clone())
	}
	return models.Array(kept...), arr.Len() - len(kept)
}

func identity(item models.Value, keyField string) string {
	if keyField != "" && item.IsObject() {
		if field, ok := item.AsObject().Get(keyField); ok {
			return "k:" + formatter.Canonical(field)
		}
	}
	return "v:" + formatter.Canonical(item)
}
