package genre

import (
	"cmp"
	"slices"
)

// Cluster is a set of distinct raw tags that share a canonical genre.
type Cluster struct {
	Canonical string   `json:"canonical"`
	Variants  []string `json:"variants"`
}

// BuildNormalizationMap maps each raw tag to its canonical genre.
// Tags that normalize to "" are omitted. Duplicate tags collapse to one entry.
func (n *Normalizer) BuildNormalizationMap(raws []string) map[string]string {
	out := make(map[string]string, len(raws))
	for _, raw := range raws {
		if _, seen := out[raw]; seen {
			continue
		}
		if canonical := n.Normalize(raw); canonical != "" {
			out[raw] = canonical
		}
	}
	return out
}

// FindDuplicateClusters groups raw tags by canonical genre and keeps only
// groups with two or more entries. Repeated identical inputs count separately.
// Clusters are sorted by canonical name; variants keep input order.
func (n *Normalizer) FindDuplicateClusters(raws []string) []Cluster {
	groups := make(map[string][]string)
	for _, raw := range raws {
		canonical := n.Normalize(raw)
		if canonical == "" {
			continue
		}
		groups[canonical] = append(groups[canonical], raw)
	}

	clusters := make([]Cluster, 0, len(groups))
	for canonical, variants := range groups {
		if len(variants) < 2 {
			continue
		}
		clusters = append(clusters, Cluster{Canonical: canonical, Variants: variants})
	}

	slices.SortFunc(clusters, func(a, b Cluster) int {
		return cmp.Compare(a.Canonical, b.Canonical)
	})
	return clusters
}

// BuildNormalizationMap uses the default tables.
func BuildNormalizationMap(raws []string) map[string]string {
	return Default().BuildNormalizationMap(raws)
}

// FindDuplicateClusters uses the default tables.
func FindDuplicateClusters(raws []string) []Cluster {
	return Default().FindDuplicateClusters(raws)
}
