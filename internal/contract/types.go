package contract

// Kind discriminates the clause forms a precondition can take.
type Kind int

const (
	// KindValidPtr requires a named pointer argument to be valid for the
	// stated access mode.
	KindValidPtr Kind = iota
	// KindProperAlign requires a named pointer argument to be aligned for
	// its pointee type.
	KindProperAlign
	// KindBoolean requires an expression to evaluate to true.
	KindBoolean
	// KindCustom is an arbitrary descriptive requirement.
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindValidPtr:
		return "valid_ptr"
	case KindProperAlign:
		return "proper_align"
	case KindBoolean:
		return "boolean"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// AccessMode states which accesses of a pointer must be valid.
type AccessMode int

const (
	// Read means the pointer is only read through.
	Read AccessMode = iota
	// Write means the pointer is only written through.
	Write
	// ReadWrite means both accesses must be valid.
	ReadWrite
)

func (m AccessMode) String() string {
	switch m {
	case Read:
		return "r"
	case Write:
		return "w"
	case ReadWrite:
		return "r+w"
	default:
		return "unknown"
	}
}

// Precondition is a single contract clause attached to a declaration.
//
// Identity is structural: two clauses are the same iff they have the same
// kind and the same canonicalized content. Duplicates inside one list are
// kept as distinct positions until sorted.
type Precondition struct {
	Kind   Kind
	Ident  string     // pointer argument name for valid_ptr / proper_align
	Access AccessMode // access mode for valid_ptr
	Text   string     // custom text or boolean expression source
}

// CfgPrecondition pairs a clause with an optional conditional-compilation
// predicate (a build tag name, optionally negated with a leading '!').
//
// All clauses feeding one contract encoding must carry syntactically
// identical predicates, or none; CheckPredicates enforces this before
// encoding.
type CfgPrecondition struct {
	Precondition
	When string
}

// Assurance is a caller's restatement of a precondition plus the reason it
// holds. Assurances are created while parsing call annotations and consumed
// immediately during rewriting; they are never persisted.
type Assurance struct {
	Precondition Precondition
	Reason       string
}
