package contract

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, input string) Precondition {
	t.Helper()
	p, err := Parse(input)
	require.NoError(t, err)
	return p
}

func TestCompareTotalOrder(t *testing.T) {
	// Listed in canonical order.
	ordered := []Precondition{
		mustParse(t, "valid_ptr(a, r)"),
		mustParse(t, "valid_ptr(a, w)"),
		mustParse(t, "valid_ptr(b, r)"),
		mustParse(t, "proper_align(a)"),
		mustParse(t, "proper_align(b)"),
		mustParse(t, "x > 0"),
		mustParse(t, "y > 0"),
		mustParse(t, `"is bar"`),
		mustParse(t, `"is baz"`),
	}

	for i, a := range ordered {
		for j, b := range ordered {
			got := Compare(a, b)
			switch {
			case i < j:
				assert.Negative(t, got, "%s < %s", Display(a), Display(b))
			case i > j:
				assert.Positive(t, got, "%s > %s", Display(a), Display(b))
			default:
				assert.Zero(t, got)
			}
		}
	}
}

func TestSortCanonicalPermutationInvariance(t *testing.T) {
	base := []Precondition{
		mustParse(t, `"is bar"`),
		mustParse(t, "valid_ptr(src, r)"),
		mustParse(t, "len(xs) >= 2"),
		mustParse(t, "proper_align(src)"),
		mustParse(t, `"is baz"`),
	}

	sorted := append([]Precondition(nil), base...)
	SortCanonical(sorted)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		perm := append([]Precondition(nil), base...)
		rng.Shuffle(len(perm), func(a, b int) { perm[a], perm[b] = perm[b], perm[a] })
		SortCanonical(perm)
		assert.Equal(t, sorted, perm)
	}
}

func TestEqual(t *testing.T) {
	s := []Precondition{mustParse(t, `"is bar"`), mustParse(t, `"is baz"`)}
	reversed := []Precondition{s[1], s[0]}
	assert.True(t, Equal(s, reversed))

	subset := s[:1]
	assert.False(t, Equal(s, subset))

	differing := []Precondition{s[0], mustParse(t, `"is qux"`)}
	assert.False(t, Equal(s, differing))
}

func TestDedupCanonical(t *testing.T) {
	ps := []Precondition{
		mustParse(t, `"is bar"`),
		mustParse(t, "valid_ptr(p, r)"),
		mustParse(t, `"is bar"`),
	}
	got := DedupCanonical(ps)
	require.Len(t, got, 2)
	assert.Equal(t, KindValidPtr, got[0].Kind)
	assert.Equal(t, KindCustom, got[1].Kind)
}

func TestCheckPredicates(t *testing.T) {
	same := []CfgPrecondition{
		{Precondition: mustParse(t, `"a"`), When: "debug"},
		{Precondition: mustParse(t, `"b"`), When: "debug"},
	}
	assert.NoError(t, CheckPredicates(same))

	mixed := []CfgPrecondition{
		{Precondition: mustParse(t, `"a"`), When: "debug"},
		{Precondition: mustParse(t, `"b"`)},
	}
	assert.Error(t, CheckPredicates(mixed))
}

func TestActiveClauses(t *testing.T) {
	ps := []CfgPrecondition{
		{Precondition: mustParse(t, `"always"`)},
		{Precondition: mustParse(t, `"debug only"`), When: "debug"},
		{Precondition: mustParse(t, `"not windows"`), When: "!windows"},
	}

	got := ActiveClauses(ps, map[string]bool{"debug": true})
	require.Len(t, got, 3)

	got = ActiveClauses(ps, map[string]bool{"windows": true})
	require.Len(t, got, 1)
	assert.Equal(t, "always", got[0].Text)
}

func TestCanonicalNFCNormalization(t *testing.T) {
	// U+00E9 vs e + U+0301 must encode identically.
	composed := Precondition{Kind: KindCustom, Text: "café"}
	decomposed := Precondition{Kind: KindCustom, Text: "café"}
	assert.Equal(t, Canonical(composed), Canonical(decomposed))
}
