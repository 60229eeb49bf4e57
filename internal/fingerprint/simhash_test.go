package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<html><head><title>News</title></head><body>
<div class="wrap"><h1>Headline</h1><p>Intro text.</p>
<ul><li><a href="/a">A</a></li><li><a href="/b">B</a></li></ul>
</div></body></html>`

func TestComputeDeterministic(t *testing.T) {
	a := Compute([]byte(samplePage))
	b := Compute([]byte(samplePage))
	require.NotZero(t, a)
	assert.Equal(t, a, b)
	assert.Zero(t, Distance(a, b))
}

func TestComputeIgnoresAttributesAndText(t *testing.T) {
	original := `<div class="old"><h1>One headline</h1><p>body</p></div>`
	restyled := `<div class="new" id="x"><h1>Another headline entirely</h1><p>different body</p></div>`

	a := Compute([]byte(original))
	b := Compute([]byte(restyled))
	assert.Equal(t, a, b, "attribute and text changes must not alter the tag skeleton hash")
}

func TestSimilarNearIdenticalMarkup(t *testing.T) {
	base := Compute([]byte(samplePage))

	// One extra list item: same tag vocabulary, slightly different counts.
	tweaked := `<html><head><title>News</title></head><body>
<div class="wrap"><h1>Headline</h1><p>Intro text.</p>
<ul><li><a href="/a">A</a></li><li><a href="/b">B</a></li><li><a href="/c">C</a></li></ul>
</div></body></html>`

	assert.True(t, Similar(base, Compute([]byte(tweaked)), DefaultSimilarityThreshold))
}

func TestDissimilarMarkup(t *testing.T) {
	a := Compute([]byte(samplePage))
	b := Compute([]byte(`<table><tr><td><form><input/><select><option>1</option></select></form></td></tr></table>`))
	assert.False(t, Similar(a, b, DefaultSimilarityThreshold))
}

func TestComputeEmpty(t *testing.T) {
	assert.Zero(t, Compute(nil))
	assert.Zero(t, Compute([]byte("plain text, no tags")))
}

func TestShouldTraverse(t *testing.T) {
	markup := []byte(samplePage)

	traverse, fresh := ShouldTraverse(nil, markup, DefaultSimilarityThreshold)
	assert.True(t, traverse, "no stored fingerprint must always traverse")
	require.NotZero(t, fresh)

	traverse, again := ShouldTraverse(&fresh, markup, DefaultSimilarityThreshold)
	assert.False(t, traverse, "unchanged skeleton must skip traversal")
	assert.Equal(t, fresh, again)

	other := Compute([]byte(`<table><tr><td>x</td></tr></table>`))
	traverse, _ = ShouldTraverse(&other, markup, DefaultSimilarityThreshold)
	assert.True(t, traverse, "changed skeleton must traverse")
}
