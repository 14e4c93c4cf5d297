package pattern

import "github.com/cespare/xxhash/v2"

// LocationKeySet returns the set of "file:line" keys for a pattern,
// used as the universe for Jaccard similarity (spec §4.4 phase 3).
func LocationKeySet(p *AggregatedPattern) map[string]bool {
	return p.locationKeySet()
}

// Jaccard computes exact Jaccard similarity between two location-key
// sets: |intersection| / |union|.
func Jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	inter := 0
	for k := range a {
		if b[k] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// FindDuplicatesExact computes pairwise Jaccard similarity across all
// patterns in the slice (must already be restricted to one category
// group) and classifies pairs at or above flagThreshold.
func FindDuplicatesExact(patterns []*AggregatedPattern, flagThreshold float64) []MergeCandidate {
	sets := make([]map[string]bool, len(patterns))
	for i, p := range patterns {
		sets[i] = LocationKeySet(p)
	}

	var out []MergeCandidate
	for i := 0; i < len(patterns); i++ {
		for j := i + 1; j < len(patterns); j++ {
			sim := Jaccard(sets[i], sets[j])
			if sim >= flagThreshold {
				out = append(out, MergeCandidate{
					PatternA:   patterns[i].ID,
					PatternB:   patterns[j].ID,
					Similarity: sim,
					Decision:   DecisionFromSimilarity(sim),
				})
			}
		}
	}
	return out
}

// MinHashIndex approximates Jaccard similarity via banded
// locality-sensitive hashing, avoiding the O(n^2) exact comparison for
// large pattern sets (spec "MinHash-LSH" glossary entry).
type MinHashIndex struct {
	numPerm  int
	numBands int
	rows     int // numPerm / numBands

	signatures map[string][]uint64
	keySets    map[string]map[string]bool
	// buckets[band][bucketKey] -> pattern IDs sharing that band's hash
	buckets []map[uint64][]string
}

// NewMinHashIndex builds an index with numPerm hash permutations split
// into numBands bands. numPerm must be evenly divisible by numBands;
// if not, rows are computed by integer division and the remainder is
// dropped from banding (still used in the signature itself).
func NewMinHashIndex(numPerm, numBands int) *MinHashIndex {
	if numBands < 1 {
		numBands = 1
	}
	rows := numPerm / numBands
	if rows < 1 {
		rows = 1
	}
	idx := &MinHashIndex{
		numPerm:    numPerm,
		numBands:   numBands,
		rows:       rows,
		signatures: make(map[string][]uint64),
		keySets:    make(map[string]map[string]bool),
		buckets:    make([]map[uint64][]string, numBands),
	}
	for i := range idx.buckets {
		idx.buckets[i] = make(map[uint64][]string)
	}
	return idx
}

// Insert computes the MinHash signature of keySet and indexes it into
// every band's bucket table under id.
func (idx *MinHashIndex) Insert(id string, keySet map[string]bool) {
	sig := idx.signature(keySet)
	idx.signatures[id] = sig
	idx.keySets[id] = keySet

	for band := 0; band < idx.numBands; band++ {
		key := idx.bandKey(sig, band)
		idx.buckets[band][key] = append(idx.buckets[band][key], id)
	}
}

func (idx *MinHashIndex) signature(keySet map[string]bool) []uint64 {
	sig := make([]uint64, idx.numPerm)
	for p := 0; p < idx.numPerm; p++ {
		min := maxUint64
		seed := uint64(p)*0x9E3779B97F4A7C15 + 1
		for k := range keySet {
			h := hashWithSeed(k, seed)
			if h < min {
				min = h
			}
		}
		sig[p] = min
	}
	return sig
}

func (idx *MinHashIndex) bandKey(sig []uint64, band int) uint64 {
	start := band * idx.rows
	end := start + idx.rows
	if end > len(sig) {
		end = len(sig)
	}
	var h uint64 = 1469598103934665603 // FNV offset basis, reused as a simple combiner
	for _, v := range sig[start:end] {
		h ^= v
		h *= 1099511628211
	}
	return h
}

// FindCandidates returns every pair of pattern IDs that share a bucket
// in at least one band.
func (idx *MinHashIndex) FindCandidates() [][2]string {
	seen := make(map[[2]string]bool)
	var out [][2]string
	for _, band := range idx.buckets {
		for _, ids := range band {
			if len(ids) < 2 {
				continue
			}
			for i := 0; i < len(ids); i++ {
				for j := i + 1; j < len(ids); j++ {
					a, b := ids[i], ids[j]
					if a > b {
						a, b = b, a
					}
					pair := [2]string{a, b}
					if seen[pair] {
						continue
					}
					seen[pair] = true
					out = append(out, pair)
				}
			}
		}
	}
	return out
}

// EstimateSimilarity returns the fraction of matching signature rows
// between two indexed patterns, an unbiased estimator of Jaccard
// similarity. The boolean is false when either ID was never inserted.
func (idx *MinHashIndex) EstimateSimilarity(a, b string) (float64, bool) {
	sigA, okA := idx.signatures[a]
	sigB, okB := idx.signatures[b]
	if !okA || !okB || len(sigA) != len(sigB) || len(sigA) == 0 {
		return 0, false
	}
	matches := 0
	for i := range sigA {
		if sigA[i] == sigB[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(sigA)), true
}

const maxUint64 = ^uint64(0)

func hashWithSeed(s string, seed uint64) uint64 {
	d := xxhash.New()
	var seedBytes [8]byte
	for i := 0; i < 8; i++ {
		seedBytes[i] = byte(seed >> (8 * i))
	}
	d.Write(seedBytes[:])
	d.Write([]byte(s))
	return d.Sum64()
}
