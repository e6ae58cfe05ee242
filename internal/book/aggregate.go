package book

// aggregate collapses per-venue levels into one consolidated level per
// 4-decimal price. Rounding happens before grouping. A consolidated level
// carries an empty venue tag; when a level that is itself already
// consolidated joins a group, its key becomes the representative, so
// aggregating an already-aggregated side keeps every key stable.
func aggregate(s sideStore) sideStore {
	groups := make(map[string]*Level, len(s))
	for _, lvl := range s.levels() {
		pk := priceKey(lvl.Price)
		g, ok := groups[pk]
		if !ok {
			groups[pk] = &Level{
				Key:      lvl.Key,
				Venue:    "",
				Price:    lvl.Price.Round(4),
				Quantity: lvl.Quantity,
			}
			continue
		}
		g.Quantity += lvl.Quantity
		if lvl.Venue == "" {
			g.Key = lvl.Key
		}
	}

	// Output is keyed by the representative key, not by price, so downstream
	// code treats consolidated and raw sides uniformly.
	out := make(sideStore, len(groups))
	for _, g := range groups {
		out[g.Key] = *g
	}
	return out
}
