package grammar

import "strings"

// Qualifier is the context-sensitive root of a Reference:
// root, module, args, or self, followed by a dotted name path.
type Qualifier int

const (
	// QualNone means the reference starts directly with a dotted name,
	// resolved against the current traversal context's nearest scope.
	QualNone Qualifier = iota
	QualRoot
	QualModule
	QualArgs
	QualSelf
)

func (q Qualifier) String() string {
	switch q {
	case QualRoot:
		return "root"
	case QualModule:
		return "module"
	case QualArgs:
		return "args"
	case QualSelf:
		return "self"
	default:
		return ""
	}
}

// Reference is a qualified dotted path, e.g. "root.mod.prod" or
// "self.base.start" or a bare "name.sub".
type Reference struct {
	Qualifier Qualifier
	Path      []string
}

// ParseReference parses a dotted-path string into a Reference. The leading
// segment is treated as a Qualifier if it matches one of
// root/module/args/self; otherwise the whole string is the Path with
// QualNone.
func ParseReference(s string) Reference {
	parts := strings.Split(s, ".")
	if len(parts) == 0 {
		return Reference{}
	}
	switch parts[0] {
	case "root":
		return Reference{Qualifier: QualRoot, Path: parts[1:]}
	case "module":
		return Reference{Qualifier: QualModule, Path: parts[1:]}
	case "args":
		return Reference{Qualifier: QualArgs, Path: parts[1:]}
	case "self":
		return Reference{Qualifier: QualSelf, Path: parts[1:]}
	default:
		return Reference{Qualifier: QualNone, Path: parts}
	}
}

// String reconstructs the dotted-path textual form of the Reference.
func (r Reference) String() string {
	var sb strings.Builder
	if r.Qualifier != QualNone {
		sb.WriteString(r.Qualifier.String())
		if len(r.Path) > 0 {
			sb.WriteRune('.')
		}
	}
	sb.WriteString(strings.Join(r.Path, "."))
	return sb.String()
}

// ParsingDimension is a side grammar entered on a sentinel token, used for
// the leading/trailing modifier grammars. A Trailing dimension's result
// attaches to the most recently produced node instead of the next one.
type ParsingDimension struct {
	EntryTokenText string
	Start          Reference
	Trailing       bool
}
