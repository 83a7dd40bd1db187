package parser

import (
	"fmt"
	"io"

	"github.com/dekarrin/rosed"

	"github.com/dekarrin/suhuf/ast"
	"github.com/dekarrin/suhuf/grammar"
	"github.com/dekarrin/suhuf/ids"
	"github.com/dekarrin/suhuf/notice"
)

// Handler is a polymorphic parsing-handler object. A production names the handler that should run when its
// level is popped; the zero value of the handler name resolves to
// GenericParsingHandler.
type Handler interface {
	// OnProdStart is called when a production level is pushed, before its
	// term is expanded.
	OnProdStart(p *Parser, s *ParserState, lvl *Level)

	// OnTermStart is called when the production's own top-level term
	// level is pushed, right after OnProdStart; term levels nested below
	// it do not trigger it.
	OnTermStart(p *Parser, s *ParserState, lvl *Level)

	// OnLevelExit is called for a production level only, once it has been
	// popped and just before OnProdEnd; term levels do not trigger it.
	OnLevelExit(p *Parser, s *ParserState, lvl *Level)

	// OnProdEnd assembles lvl's accumulated Children into the AST node
	// this production contributes to its parent, after the level has been
	// popped.
	OnProdEnd(p *Parser, s *ParserState, lvl *Level) ast.Node
}

// genericParsingHandler is the default Handler: it builds a
// container node from the accumulated children without interpreting them —
// a Route for an Alternate-shaped production, a List for Multiply-repeated
// children, and flattened children for a plain Concat.
type genericParsingHandler struct{}

// GenericParsingHandler is the zero-configuration Handler every production
// gets unless it names a specialized one.
var GenericParsingHandler Handler = genericParsingHandler{}

func (genericParsingHandler) OnProdStart(p *Parser, s *ParserState, lvl *Level) {}
func (genericParsingHandler) OnTermStart(p *Parser, s *ParserState, lvl *Level) {}
func (genericParsingHandler) OnLevelExit(p *Parser, s *ParserState, lvl *Level) {}

// OnProdEnd assembles the production's bubbled-up children. By the time a
// production level reaches OnProdEnd, its single top-level term has already
// popped and contributed exactly what its own kind dictates: a single
// ast.RouteNode for an Alternate body, a single ast.ListNode for a Multiply
// body, or N flattened items for a Concat body (see (*Parser).deliver) — so
// this default handler only needs to decide what a *production* does with
// that result: pass through a lone child untouched, or wrap multiple
// flattened children in a generic list for a specialized handler (or the
// Seeker) to interpret.
func (genericParsingHandler) OnProdEnd(p *Parser, s *ParserState, lvl *Level) ast.Node {
	if len(lvl.Children) == 0 {
		return nil
	}
	if len(lvl.Children) == 1 {
		return lvl.Children[0]
	}
	list := &ast.ListNode{Base: ast.Base{Prod: defID(lvl.Def)}}
	for _, c := range lvl.Children {
		list.Append(c)
	}
	return list
}

func defID(def *grammar.SymbolDefinition) ids.ID {
	if def == nil {
		return ids.None
	}
	return ids.Global.Lookup(def.Name)
}

// flattenParts unwraps the structural containers the engine introduces
// while bubbling children upward — prod-less ListNodes from Multiply
// repetition and RouteNodes from Alternate choices — leaving the semantic
// children for a specialized handler to assemble. Modifiers attached to an
// unwrapped Route carry over to its payload.
func flattenParts(children []ast.Node) []ast.Node {
	var out []ast.Node
	for _, c := range children {
		switch t := c.(type) {
		case *ast.ListNode:
			if t.ProdID() == ids.None {
				out = append(out, flattenParts(t.Items)...)
				continue
			}
			out = append(out, t)
		case *ast.RouteNode:
			if t.Data == nil {
				continue
			}
			for _, m := range t.Modifiers() {
				t.Data.AddModifier(m)
			}
			out = append(out, flattenParts([]ast.Node{t.Data})...)
		default:
			out = append(out, c)
		}
	}
	return out
}

// InfixKind selects which infix ast.Node family NewInfixHandler folds into.
type InfixKind int

const (
	InfixAssignment InfixKind = iota
	InfixComparison
	InfixAddition
	InfixMultiplication
	InfixBitwise
	InfixLog
	InfixLink
	InfixConditional
)

// infixHandler folds a Concat-of-(operand (op operand)*) production shape
// into a left-associative chain of infix operator nodes.
type infixHandler struct {
	kind InfixKind
}

// NewInfixHandler returns a Handler that assembles lvl.Children (expected
// to alternate operand, operator-text, operand, operator-text, ..., each
// operator text carried by an ast.IdentifierNode synthesized by the
// grammar's token handling) into a left-associative chain of kind's node
// type.
func NewInfixHandler(kind InfixKind) Handler {
	return infixHandler{kind: kind}
}

func (infixHandler) OnProdStart(p *Parser, s *ParserState, lvl *Level) {}
func (infixHandler) OnTermStart(p *Parser, s *ParserState, lvl *Level) {}
func (infixHandler) OnLevelExit(p *Parser, s *ParserState, lvl *Level) {}

func (h infixHandler) OnProdEnd(p *Parser, s *ParserState, lvl *Level) ast.Node {
	parts := flattenParts(lvl.Children)
	if len(parts) == 0 {
		return nil
	}
	result := parts[0]
	for i := 1; i+1 < len(parts); i += 2 {
		opText := operatorText(parts[i])
		rhs := parts[i+1]
		result = h.build(defID(lvl.Def), opText, result, rhs)
	}
	return result
}

func operatorText(n ast.Node) string {
	if id, ok := n.(*ast.IdentifierNode); ok {
		return id.Name
	}
	return ""
}

func (h infixHandler) build(prod ids.ID, op string, first, second ast.Node) ast.Node {
	base := ast.Base{Prod: prod}
	switch h.kind {
	case InfixAssignment:
		return &ast.AssignmentNode{Base: base, Type: op, First: first, Second: second}
	case InfixComparison:
		return &ast.ComparisonNode{Base: base, Type: op, First: first, Second: second}
	case InfixAddition:
		return &ast.AdditionNode{Base: base, Type: op, First: first, Second: second}
	case InfixMultiplication:
		return &ast.MultiplicationNode{Base: base, Type: op, First: first, Second: second}
	case InfixBitwise:
		return &ast.BitwiseNode{Base: base, Type: op, First: first, Second: second}
	case InfixLog:
		return &ast.LogNode{Base: base, Type: op, First: first, Second: second}
	case InfixLink:
		return &ast.LinkNode{Base: base, Type: op, First: first, Second: second}
	default:
		return &ast.ConditionalNode{Base: base, Type: op, First: first, Second: second}
	}
}

// ImportResolver loads and parses an external module's source on behalf of
// the Import handler, returning its root AST node for splicing into the
// importing parse.
type ImportResolver interface {
	ResolveImport(path string) (ast.Node, error)
}

type importHandler struct {
	resolver ImportResolver
}

// NewImportHandler returns a Handler whose production's sole child is
// expected to be a StringLiteralNode naming the file to import; resolver
// is consulted to load and splice that file's AST in its place.
func NewImportHandler(resolver ImportResolver) Handler {
	return importHandler{resolver: resolver}
}

func (importHandler) OnProdStart(p *Parser, s *ParserState, lvl *Level) {}
func (importHandler) OnTermStart(p *Parser, s *ParserState, lvl *Level) {}
func (importHandler) OnLevelExit(p *Parser, s *ParserState, lvl *Level) {}

func (h importHandler) OnProdEnd(p *Parser, s *ParserState, lvl *Level) ast.Node {
	if len(lvl.Children) == 0 {
		return nil
	}
	pathNode, ok := lvl.Children[0].(*ast.StringLiteralNode)
	if !ok {
		p.store.Add(notice.Notice{Code: "ImportTargetNotString", Severity: notice.Error, Message: "import target is not a string literal"})
		return lvl.Children[0]
	}
	if h.resolver == nil {
		p.store.Add(notice.Notice{Code: "ImportUnresolved", Severity: notice.Error, Message: fmt.Sprintf("no import resolver configured for %q", pathNode.Value)})
		return pathNode
	}
	imported, err := h.resolver.ResolveImport(pathNode.Value)
	if err != nil {
		p.store.Add(notice.Notice{Code: "ImportFailed", Severity: notice.Error, Message: fmt.Sprintf("import %q: %v", pathNode.Value, err)})
		return pathNode
	}
	return imported
}

// dumpAstHandler implements the "dump_ast" debug command: it prints one
// line naming the kind of its first child and passes that child through.
// The child's descendants are not printed.
type dumpAstHandler struct {
	w io.Writer
}

// NewDumpAstHandler returns a Handler that prints its single child's node
// kind (one line, no descendants) to w (used for the grammar's debug
// "dump_ast" command) and passes that child through unchanged.
func NewDumpAstHandler(w io.Writer) Handler {
	return dumpAstHandler{w: w}
}

func (dumpAstHandler) OnProdStart(p *Parser, s *ParserState, lvl *Level) {}
func (dumpAstHandler) OnTermStart(p *Parser, s *ParserState, lvl *Level) {}
func (dumpAstHandler) OnLevelExit(p *Parser, s *ParserState, lvl *Level) {}

func (h dumpAstHandler) OnProdEnd(p *Parser, s *ParserState, lvl *Level) ast.Node {
	var target ast.Node
	if len(lvl.Children) > 0 {
		target = lvl.Children[0]
	}
	fmt.Fprint(h.w, rosed.Edit(dumpNode(target, 0)).Wrap(100).String())
	return target
}

func dumpNode(n ast.Node, depth int) string {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	if n == nil {
		return indent + "<nil>\n"
	}
	return fmt.Sprintf("%s%s\n", indent, n.Kind().String())
}

// scopeHandler builds an ast.ScopeNode from its children via Append, which
// wires the owner links later Seeker traversal depends on.
type scopeHandler struct{}

// NewScopeHandler returns the Handler productions that introduce a new
// lexical scope should name.
func NewScopeHandler() Handler { return scopeHandler{} }

func (scopeHandler) OnProdStart(p *Parser, s *ParserState, lvl *Level) {}
func (scopeHandler) OnTermStart(p *Parser, s *ParserState, lvl *Level) {}
func (scopeHandler) OnLevelExit(p *Parser, s *ParserState, lvl *Level) {}

func (scopeHandler) OnProdEnd(p *Parser, s *ParserState, lvl *Level) ast.Node {
	scope := &ast.ScopeNode{Base: ast.Base{Prod: defID(lvl.Def)}}
	for _, c := range flattenParts(lvl.Children) {
		scope.Append(c)
	}
	return scope
}

// selectHandler returns one positional child of the production, dropping
// the rest (keyword and terminator leaves, typically).
type selectHandler struct {
	index int
}

// NewSelectHandler returns a Handler that yields the production's index-th
// flattened child as its node.
func NewSelectHandler(index int) Handler {
	return selectHandler{index: index}
}

func (selectHandler) OnProdStart(p *Parser, s *ParserState, lvl *Level) {}
func (selectHandler) OnTermStart(p *Parser, s *ParserState, lvl *Level) {}
func (selectHandler) OnLevelExit(p *Parser, s *ParserState, lvl *Level) {}

func (h selectHandler) OnProdEnd(p *Parser, s *ParserState, lvl *Level) ast.Node {
	parts := flattenParts(lvl.Children)
	if h.index < 0 || h.index >= len(parts) {
		return nil
	}
	return parts[h.index]
}

// definitionHandler assembles a "def name : target ;"-shaped production
// into an ast.DefinitionNode: the second flattened child names the
// definition, the fourth is its target.
type definitionHandler struct{}

// NewDefinitionHandler returns the Handler for definition-statement
// productions.
func NewDefinitionHandler() Handler { return definitionHandler{} }

func (definitionHandler) OnProdStart(p *Parser, s *ParserState, lvl *Level) {}
func (definitionHandler) OnTermStart(p *Parser, s *ParserState, lvl *Level) {}
func (definitionHandler) OnLevelExit(p *Parser, s *ParserState, lvl *Level) {}

func (definitionHandler) OnProdEnd(p *Parser, s *ParserState, lvl *Level) ast.Node {
	parts := flattenParts(lvl.Children)
	if len(parts) < 4 {
		return nil
	}
	nameNode, ok := parts[1].(*ast.IdentifierNode)
	if !ok {
		p.store.Add(notice.Notice{Code: "InvalidDefinition", Severity: notice.Error, Message: "definition name is not an identifier"})
		return nil
	}
	def := &ast.DefinitionNode{
		Base: ast.Base{Prod: defID(lvl.Def), Loc: nameNode.Location()},
		Name: nameNode.Name,
	}
	def.Target = parts[3]
	ast.SetOwner(parts[3], def)
	return def
}

// bridgeHandler assembles a "use target ;"-shaped production into an
// ast.BridgeNode making the target scope's names visible at this point.
type bridgeHandler struct{}

// NewBridgeHandler returns the Handler for use-statement productions.
func NewBridgeHandler() Handler { return bridgeHandler{} }

func (bridgeHandler) OnProdStart(p *Parser, s *ParserState, lvl *Level) {}
func (bridgeHandler) OnTermStart(p *Parser, s *ParserState, lvl *Level) {}
func (bridgeHandler) OnLevelExit(p *Parser, s *ParserState, lvl *Level) {}

func (bridgeHandler) OnProdEnd(p *Parser, s *ParserState, lvl *Level) ast.Node {
	parts := flattenParts(lvl.Children)
	if len(parts) < 2 {
		p.store.Add(notice.Notice{Code: "InvalidUseStatement", Severity: notice.Error, Message: "use statement names no target"})
		return nil
	}
	br := &ast.BridgeNode{Base: ast.Base{Prod: defID(lvl.Def)}}
	br.Target = parts[1]
	ast.SetOwner(parts[1], br)
	return br
}
