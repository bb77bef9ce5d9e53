package contract

import (
	"fmt"
	"sort"
	"strings"
)

// Compare defines the canonical total order over preconditions.
//
// Primary key is the kind discriminant (valid_ptr < proper_align < boolean <
// custom), secondary key the clause content. The exact order does not matter;
// what matters is that every declaration and every call site sorts with the
// same one, so that set equality reduces to sequence equality after sorting.
func Compare(a, b Precondition) int {
	if a.Kind != b.Kind {
		if a.Kind < b.Kind {
			return -1
		}
		return 1
	}
	switch a.Kind {
	case KindValidPtr:
		if c := strings.Compare(a.Ident, b.Ident); c != 0 {
			return c
		}
		switch {
		case a.Access < b.Access:
			return -1
		case a.Access > b.Access:
			return 1
		}
		return 0
	case KindProperAlign:
		return strings.Compare(a.Ident, b.Ident)
	default:
		// Compare the canonical encodings so ordering can never disagree
		// with what the encoders consider equal.
		return strings.Compare(Canonical(a), Canonical(b))
	}
}

// SortCanonical sorts clauses in place into canonical order.
func SortCanonical(ps []Precondition) {
	sort.SliceStable(ps, func(i, j int) bool {
		return Compare(ps[i], ps[j]) < 0
	})
}

// SortAssurances sorts assurances in place by the canonical order of their
// clauses. Reasons do not participate in ordering.
func SortAssurances(as []Assurance) {
	sort.SliceStable(as, func(i, j int) bool {
		return Compare(as[i].Precondition, as[j].Precondition) < 0
	})
}

// Equal reports whether two clause lists describe the same precondition set.
func Equal(a, b []Precondition) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]Precondition(nil), a...)
	bs := append([]Precondition(nil), b...)
	SortCanonical(as)
	SortCanonical(bs)
	for i := range as {
		if Compare(as[i], bs[i]) != 0 {
			return false
		}
	}
	return true
}

// DedupCanonical returns the list sorted with canonically-equal duplicates
// removed. Used when handing clause lists to the documentation renderer.
func DedupCanonical(ps []Precondition) []Precondition {
	out := append([]Precondition(nil), ps...)
	SortCanonical(out)
	n := 0
	for i, p := range out {
		if i == 0 || Compare(out[n-1], p) != 0 {
			out[n] = p
			n++
		}
	}
	return out[:n]
}

// CheckPredicates verifies that every clause in one declaration's list
// carries the same conditional-compilation predicate (or none at all).
func CheckPredicates(ps []CfgPrecondition) error {
	if len(ps) == 0 {
		return nil
	}
	want := ps[0].When
	for _, p := range ps[1:] {
		if p.When != want {
			return fmt.Errorf("mismatched when(...) predicates on one declaration: %q vs %q", want, p.When)
		}
	}
	return nil
}

// EvalPredicate evaluates a when(...) predicate against the set of enabled
// build tags. An empty predicate is always true; a leading '!' negates.
func EvalPredicate(when string, tags map[string]bool) bool {
	when = strings.TrimSpace(when)
	if when == "" {
		return true
	}
	if strings.HasPrefix(when, "!") {
		return !tags[strings.TrimSpace(when[1:])]
	}
	return tags[when]
}

// ActiveClauses filters the clause list down to those whose predicates hold
// under the given tag set, stripping the predicates.
func ActiveClauses(ps []CfgPrecondition, tags map[string]bool) []Precondition {
	var out []Precondition
	for _, p := range ps {
		if EvalPredicate(p.When, tags) {
			out = append(out, p.Precondition)
		}
	}
	return out
}
