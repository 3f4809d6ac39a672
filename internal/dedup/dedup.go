// Package dedup collapses near-duplicate quotes before ranking. Transcripts
// often repeat the same answer fragment across adjacent segments; sending both
// copies to the model wastes budget and skews rankings toward repeated text.
package dedup

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/veridian-research/quotient/internal/quote"
)

// DefaultThreshold is the Jaccard token-overlap ratio above which two quotes
// are treated as duplicates.
const DefaultThreshold = 0.85

// Result summarizes one collapse pass.
type Result struct {
	Threshold  float64         `json:"threshold"`
	Clusters   int             `json:"clusters"`
	TotalItems int             `json:"total_items"`
	Collapsed  int             `json:"collapsed"`
	Survivors  int             `json:"survivors"`
	Details    []ClusterDetail `json:"details,omitempty"`
}

// ClusterDetail records one duplicate cluster and which quote survived it.
type ClusterDetail struct {
	SurvivorID  uuid.UUID   `json:"survivor_id"`
	CollapsedID []uuid.UUID `json:"collapsed_ids"`
	Size        int         `json:"size"`
}

// Collapser finds and removes near-duplicate quotes in a batch.
type Collapser struct {
	threshold float64
	logger    *slog.Logger
}

func New(threshold float64, logger *slog.Logger) *Collapser {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Collapser{threshold: threshold, logger: logger}
}

type pair struct {
	a, b int
}

// Collapse returns the batch with near-duplicates removed, keeping input
// order. Within a cluster the longest quote survives; ties break toward the
// earlier quote, so repeated runs over the same batch pick the same survivor.
func (c *Collapser) Collapse(quotes []quote.Quote) ([]quote.Quote, Result) {
	result := Result{Threshold: c.threshold, TotalItems: len(quotes)}
	if len(quotes) < 2 {
		result.Survivors = len(quotes)
		return quotes, result
	}

	tokens := make([]map[string]struct{}, len(quotes))
	for i, q := range quotes {
		tokens[i] = tokenize(q.Text)
	}

	var pairs []pair
	for i := 0; i < len(quotes); i++ {
		for j := i + 1; j < len(quotes); j++ {
			if jaccard(tokens[i], tokens[j]) >= c.threshold {
				pairs = append(pairs, pair{i, j})
			}
		}
	}
	if len(pairs) == 0 {
		result.Survivors = len(quotes)
		return quotes, result
	}

	clusters := clusterPairs(pairs)
	result.Clusters = len(clusters)

	drop := make(map[int]bool)
	for _, cluster := range clusters {
		survivor := pickSurvivor(quotes, cluster)
		detail := ClusterDetail{SurvivorID: quotes[survivor].ID, Size: len(cluster)}
		for _, idx := range cluster {
			if idx == survivor {
				continue
			}
			drop[idx] = true
			detail.CollapsedID = append(detail.CollapsedID, quotes[idx].ID)
		}
		result.Details = append(result.Details, detail)
	}

	kept := make([]quote.Quote, 0, len(quotes)-len(drop))
	for i, q := range quotes {
		if !drop[i] {
			kept = append(kept, q)
		}
	}
	result.Collapsed = len(drop)
	result.Survivors = len(kept)

	if c.logger != nil && result.Collapsed > 0 {
		c.logger.Info("collapsed near-duplicate quotes",
			"clusters", result.Clusters,
			"collapsed", result.Collapsed,
			"survivors", result.Survivors)
	}
	return kept, result
}

// clusterPairs groups duplicate pairs into connected components using
// union-find with path compression.
func clusterPairs(pairs []pair) [][]int {
	parent := make(map[int]int)
	for _, p := range pairs {
		if _, ok := parent[p.a]; !ok {
			parent[p.a] = p.a
		}
		if _, ok := parent[p.b]; !ok {
			parent[p.b] = p.b
		}
	}

	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}
	for _, p := range pairs {
		union(p.a, p.b)
	}

	groups := make(map[int][]int)
	for i := range parent {
		root := find(i)
		groups[root] = append(groups[root], i)
	}

	var clusters [][]int
	for _, cluster := range groups {
		if len(cluster) > 1 {
			sort.Ints(cluster)
			clusters = append(clusters, cluster)
		}
	}
	sort.Slice(clusters, func(i, j int) bool { return clusters[i][0] < clusters[j][0] })
	return clusters
}

// pickSurvivor keeps the longest quote in the cluster; the earliest index
// wins ties.
func pickSurvivor(quotes []quote.Quote, cluster []int) int {
	best := cluster[0]
	for _, idx := range cluster[1:] {
		if len(quotes[idx].Text) > len(quotes[best].Text) {
			best = idx
		}
	}
	return best
}

func tokenize(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,!?;:\"'()[]")
		if tok != "" {
			set[tok] = struct{}{}
		}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	shared := 0
	for tok := range small {
		if _, ok := large[tok]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(a)+len(b)-shared)
}
