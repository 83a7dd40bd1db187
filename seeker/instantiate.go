package seeker

import (
	"fmt"
	"strings"

	"github.com/dekarrin/suhuf/ast"
)

// TemplateModifier is the definition modifier word that marks a definition
// as a template, instantiable via a round-bracket param pass.
const TemplateModifier = "template"

func isTemplate(def *ast.DefinitionNode) bool {
	for _, m := range def.Mods {
		if m == TemplateModifier {
			return true
		}
	}
	return false
}

// instanceKey identifies a template instance by its definition and the
// canonical structural form of its argument list, so structurally equal
// argument lists always reuse the one cached instance.
type instanceKey struct {
	template *ast.DefinitionNode
	args     string
}

// instantiate returns the instance of def for the given argument node,
// creating and caching it on first use. The instance shares def's body (it
// does not take ownership of it) and carries the bound argument nodes as
// its modifiers, in argument order.
func (s *Seeker) instantiate(def *ast.DefinitionNode, param ast.Node) *ast.DefinitionNode {
	args := argList(param)
	key := instanceKey{template: def, args: canonArgs(args)}
	if inst, ok := s.instances[key]; ok {
		return inst
	}

	inst := &ast.DefinitionNode{
		Name:   def.Name,
		Target: def.Target,
		Mods:   append(append([]string(nil), def.Mods...), "instance"),
		Flags:  def.Flags,
	}
	for _, a := range args {
		inst.AddModifier(a)
	}
	s.instances[key] = inst
	return inst
}

// argList flattens a param-pass payload into its ordered argument nodes: a
// ListNode contributes each item, anything else is a single argument, and
// nil is an empty list.
func argList(param ast.Node) []ast.Node {
	switch t := param.(type) {
	case nil:
		return nil
	case *ast.ListNode:
		return t.Items
	default:
		return []ast.Node{param}
	}
}

func canonArgs(args []ast.Node) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = canon(a)
	}
	return strings.Join(parts, ",")
}

// canon renders the canonical structural form of a reference-expression
// node, the equality the instance cache is keyed on.
func canon(n ast.Node) string {
	switch t := n.(type) {
	case nil:
		return "_"
	case *ast.IdentifierNode:
		return fmt.Sprintf("id(%s)", t.Name)
	case *ast.IntegerLiteralNode:
		return fmt.Sprintf("int(%s)", t.Text)
	case *ast.FloatLiteralNode:
		return fmt.Sprintf("float(%s)", t.Text)
	case *ast.CharLiteralNode:
		return fmt.Sprintf("char(%s)", t.Text)
	case *ast.StringLiteralNode:
		return fmt.Sprintf("str(%s)", t.Value)
	case *ast.LinkNode:
		return fmt.Sprintf("link(%s,%s,%s)", t.Type, canon(t.First), canon(t.Second))
	case *ast.ParamPassNode:
		return fmt.Sprintf("pass(%s,%s,%s)", t.Bracket, canon(t.Operand), canon(t.Param))
	case *ast.TypeOpNode:
		return fmt.Sprintf("typeop(%s,%s)", t.Op, canon(t.Operand))
	case *ast.ThisTypeRefNode:
		return "this"
	case *ast.BracketNode:
		return canon(t.Inner)
	case *ast.ListNode:
		parts := make([]string, len(t.Items))
		for i, item := range t.Items {
			parts[i] = canon(item)
		}
		return "list(" + strings.Join(parts, ",") + ")"
	default:
		if first, second, ok := ast.InfixOperands(n); ok {
			return fmt.Sprintf("%s(%s,%s)", n.Kind(), canon(first), canon(second))
		}
		return n.Kind().String()
	}
}
