package clone

import (
	"sort"

	"github.com/arthur-debert/mothball/pkg/schema"
)

// pair is one resolved attribute copy: read src from the source, write
// dst on the receiver
type pair struct {
	src string
	dst string
}

// resolveAttributes computes the effective attribute pairs for one
// clone operation.
//
// The base set is the configured map's source attributes when the map
// is non-empty, otherwise the full natural attribute set of the source
// type. Include entries are added, exclude entries subtracted last, so
// exclusion always wins. Duplicates keep their first position. The
// destination name is the mapped name when present, the source name
// unchanged otherwise. An empty map never falls back per attribute;
// only a wholly absent map switches the base to the natural set.
func resolveAttributes(cfg *Config, src *schema.Schema) []pair {
	var base []string
	if len(cfg.Map) > 0 {
		base = make([]string, 0, len(cfg.Map))
		for name := range cfg.Map {
			base = append(base, name)
		}
		sort.Strings(base)
	} else {
		base = src.AttributeNames()
	}

	excluded := make(map[string]bool, len(cfg.Exclude))
	for _, name := range cfg.Exclude {
		excluded[name] = true
	}

	seen := make(map[string]bool, len(base)+len(cfg.Include))
	pairs := make([]pair, 0, len(base)+len(cfg.Include))

	add := func(name string) {
		if excluded[name] || seen[name] {
			return
		}
		seen[name] = true
		dst := name
		if mapped, ok := cfg.Map[name]; ok {
			dst = mapped
		}
		pairs = append(pairs, pair{src: name, dst: dst})
	}

	for _, name := range base {
		add(name)
	}
	for _, name := range cfg.Include {
		add(name)
	}

	return pairs
}
