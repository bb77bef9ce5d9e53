package directive

import (
	"fmt"
	"go/token"
	"strings"
)

// ForwardKind discriminates the redirection shapes.
type ForwardKind int

const (
	// ForwardDirect prepends a path to the call target.
	ForwardDirect ForwardKind = iota
	// ForwardReplace rewrites a prefix of the call target's path.
	ForwardReplace
	// ForwardImpl redirects the contract lookup to a zero-argument stub
	// generated for an impl block in an external mirror.
	ForwardImpl
)

func (k ForwardKind) String() string {
	switch k {
	case ForwardDirect:
		return "direct"
	case ForwardReplace:
		return "replace"
	case ForwardImpl:
		return "impl"
	default:
		return "unknown"
	}
}

// Forward describes where a call's contract is looked up instead of the
// written callee.
type Forward struct {
	Kind ForwardKind
	// Path is the target for direct and impl forms. For impl the last
	// segment names the owning type.
	Path []string
	// From and To are the prefix pair for the replace form.
	From []string
	To   []string
	// IsDef marks a //def: directive; the redirection semantics are shared
	// with //forward:, but def has no impl form.
	IsDef bool
	// Pos is where the directive was written.
	Pos token.Position
}

func (f *Forward) String() string {
	name := "forward"
	if f.IsDef {
		name = "def"
	}
	switch f.Kind {
	case ForwardReplace:
		return fmt.Sprintf("%s: %s -> %s", name, JoinPath(f.From), JoinPath(f.To))
	case ForwardImpl:
		return fmt.Sprintf("%s: impl %s", name, JoinPath(f.Path))
	default:
		return fmt.Sprintf("%s: %s", name, JoinPath(f.Path))
	}
}

func parseForward(payload string, isDef bool) (*Forward, error) {
	if rest, ok := strings.CutPrefix(payload, "impl "); ok {
		if isDef {
			return nil, fmt.Errorf("def has no impl form, use forward: impl %s", strings.TrimSpace(rest))
		}
		path, err := SplitPath(strings.TrimSpace(rest))
		if err != nil {
			return nil, err
		}
		return &Forward{Kind: ForwardImpl, Path: path}, nil
	}

	if from, to, ok := strings.Cut(payload, "->"); ok {
		fromPath, err := SplitPath(strings.TrimSpace(from))
		if err != nil {
			return nil, err
		}
		toPath, err := SplitPath(strings.TrimSpace(to))
		if err != nil {
			return nil, err
		}
		return &Forward{Kind: ForwardReplace, From: fromPath, To: toPath, IsDef: isDef}, nil
	}

	path, err := SplitPath(payload)
	if err != nil {
		return nil, err
	}
	return &Forward{Kind: ForwardDirect, Path: path, IsDef: isDef}, nil
}

// SplitPath splits a dotted selector path into its segments.
func SplitPath(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("empty path")
	}
	segments := strings.Split(path, ".")
	for i, seg := range segments {
		segments[i] = strings.TrimSpace(seg)
		if segments[i] == "" {
			return nil, fmt.Errorf("path %q has an empty segment", path)
		}
	}
	return segments, nil
}

// JoinPath is the inverse of SplitPath.
func JoinPath(segments []string) string {
	return strings.Join(segments, ".")
}
