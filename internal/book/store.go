package book

import "sort"

// sideStore maps composite (venue, depth-index) keys to levels. Insertion
// order is irrelevant: display order is produced fresh by the comparator on
// every pass.
type sideStore map[string]Level

// upsert stores a level, or removes the slot when quantity is zero. Price is
// never a removal trigger: a zero-price market order during an auction keeps
// its slot for as long as it has quantity.
func (s sideStore) upsert(key string, lvl Level) {
	if lvl.Quantity == 0 {
		delete(s, key)
		return
	}
	s[key] = lvl
}

// levels copies the stored levels into a slice, in sorted key order so that
// callers iterating the store behave deterministically.
func (s sideStore) levels() []Level {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Level, 0, len(s))
	for _, k := range keys {
		out = append(out, s[k])
	}
	return out
}
