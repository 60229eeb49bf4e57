// Package fingerprint computes structural fingerprints of HTML pages.
//
// The fingerprint is a 64-bit simhash over the page's tag skeleton: only the
// sequence of element names contributes, attributes/text/comments are ignored.
// Two pages whose DOM skeletons match closely produce hashes within a small
// Hamming distance, which lets a crawl pass skip link extraction for a site
// whose layout has not changed. Unchanged skeleton does not guarantee
// unchanged content; this is a documented bandwidth optimization, not proof.
package fingerprint

import (
	"bytes"
	"math/bits"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/net/html"
)

const hashBits = 64

// DefaultSimilarityThreshold is the bit-distance at or under which two
// fingerprints are considered the same layout.
const DefaultSimilarityThreshold = 3

// Compute returns the structural fingerprint of markup. Empty or tag-free
// input yields 0.
func Compute(markup []byte) uint64 {
	var acc [hashBits]int

	tokenizer := html.NewTokenizer(bytes.NewReader(markup))
	seen := false
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		name, _ := tokenizer.TagName()
		if len(name) == 0 {
			continue
		}
		seen = true

		h := xxhash.Sum64(name)
		for i := 0; i < hashBits; i++ {
			if h&(1<<uint(i)) != 0 {
				acc[i]++
			} else {
				acc[i]--
			}
		}
	}

	if !seen {
		return 0
	}

	var fp uint64
	for i := 0; i < hashBits; i++ {
		if acc[i] > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Similar reports whether two fingerprints are within threshold bits of
// each other.
func Similar(a, b uint64, threshold int) bool {
	return Distance(a, b) <= threshold
}

// ShouldTraverse decides whether a crawl pass should extract links from a
// site given its stored fingerprint and the freshly fetched homepage markup.
// A nil stored fingerprint always traverses. Returns the fresh fingerprint
// so the caller can persist it when it does traverse.
func ShouldTraverse(stored *uint64, markup []byte, threshold int) (traverse bool, fresh uint64) {
	fresh = Compute(markup)
	if stored == nil {
		return true, fresh
	}
	return !Similar(*stored, fresh, threshold), fresh
}
