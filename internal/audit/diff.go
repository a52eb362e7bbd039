package audit

import (
	"encoding/json"
	"reflect"
	"sort"
)

// diffValues compares two JSON objects key by key.
func diffValues(oldRaw, newRaw json.RawMessage) (map[string]FieldChange, []string, []string, []string, error) {
	var oldValues, newValues map[string]any
	if err := json.Unmarshal(oldRaw, &oldValues); err != nil {
		return nil, nil, nil, nil, err
	}
	if err := json.Unmarshal(newRaw, &newValues); err != nil {
		return nil, nil, nil, nil, err
	}

	changes := map[string]FieldChange{}
	added, removed, changed := []string{}, []string{}, []string{}
	for key, newValue := range newValues {
		oldValue, ok := oldValues[key]
		switch {
		case !ok:
			added = append(added, key)
			changes[key] = FieldChange{Old: nil, New: newValue}
		case !reflect.DeepEqual(oldValue, newValue):
			changed = append(changed, key)
			changes[key] = FieldChange{Old: oldValue, New: newValue}
		}
	}
	for key, oldValue := range oldValues {
		if _, ok := newValues[key]; !ok {
			removed = append(removed, key)
			changes[key] = FieldChange{Old: oldValue, New: nil}
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	sort.Strings(changed)
	return changes, added, removed, changed, nil
}
