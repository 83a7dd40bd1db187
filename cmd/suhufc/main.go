/*
Suhufc parses source text with a small built-in demo grammar and prints the
resulting AST and any notices.

The demo grammar accepts definition statements ("def x : expr ;", or the
Arabic keyword "عرف" in place of "def"), use statements ("use m ;"), and
expression statements with "+"/"*" precedence. It exists to exercise the
library end to end; real callers construct their own grammar and keyword
dictionary through a grammar.Factory.

Usage:

	suhufc [flags] [file]

The flags are:

	-v, --version
		Give the current version of suhuf and then exit.

	-i, --interactive
		Start a read-eval-print loop instead of reading a file. This is
		also the default when no file argument is given.

	-a, --ast
		Print the AST of the parsed input (on by default).
*/
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/pflag"

	"github.com/dekarrin/suhuf"
	"github.com/dekarrin/suhuf/ast"
	"github.com/dekarrin/suhuf/grammar"
	"github.com/dekarrin/suhuf/lex"
	"github.com/dekarrin/suhuf/parser"
)

const version = "0.1.0"

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitParseError indicates the input produced at least one blocker.
	ExitParseError

	// ExitInitError indicates a problem building the frontend.
	ExitInitError
)

var (
	returnCode      int   = ExitSuccess
	flagVersion     *bool = pflag.BoolP("version", "v", false, "Gives the version info")
	flagInteractive *bool = pflag.BoolP("interactive", "i", false, "Start a REPL instead of reading a file")
	flagAst         *bool = pflag.BoolP("ast", "a", true, "Print the AST of the parsed input")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occured: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version)
		return
	}

	fe, err := buildFrontend()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	if *flagInteractive || pflag.NArg() == 0 {
		runRepl(fe)
		return
	}

	file := pflag.Arg(0)
	f, err := os.Open(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	defer f.Close()

	node, err := fe.Analyze(f, file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitParseError
		return
	}
	report(fe, node, os.Stdout)
}

func runRepl(fe *suhuf.Frontend) {
	rl, err := readline.New("suhuf> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or interrupt
			return
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		node, err := fe.AnalyzeString(line, "<repl>")
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			continue
		}
		report(fe, node, os.Stdout)
	}
}

func report(fe *suhuf.Frontend, node ast.Node, w io.Writer) {
	if *flagAst && node != nil {
		dump(w, node, 0)
	}
	fe.Store.Print(os.Stderr)
	if fe.Store.HasBlocker() {
		returnCode = ExitParseError
	}
}

// dump prints an indented structural view of the AST rooted at n.
func dump(w io.Writer, n ast.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	if n == nil {
		fmt.Fprintf(w, "%s<nil>\n", indent)
		return
	}
	switch t := n.(type) {
	case *ast.IdentifierNode:
		fmt.Fprintf(w, "%sIdentifier(%s)\n", indent, t.Name)
	case *ast.IntegerLiteralNode:
		fmt.Fprintf(w, "%sIntegerLiteral(%s)\n", indent, t.Text)
	case *ast.FloatLiteralNode:
		fmt.Fprintf(w, "%sFloatLiteral(%s)\n", indent, t.Text)
	case *ast.StringLiteralNode:
		fmt.Fprintf(w, "%sStringLiteral(%s)\n", indent, t.Text)
	case *ast.DefinitionNode:
		fmt.Fprintf(w, "%sDefinition(%s)\n", indent, t.Name)
		dump(w, t.Target, depth+1)
	case *ast.BridgeNode:
		fmt.Fprintf(w, "%sBridge\n", indent)
		dump(w, t.Target, depth+1)
	case *ast.ScopeNode:
		fmt.Fprintf(w, "%sScope\n", indent)
		for _, item := range t.Items {
			dump(w, item, depth+1)
		}
	case *ast.ListNode:
		fmt.Fprintf(w, "%sList\n", indent)
		for _, item := range t.Items {
			dump(w, item, depth+1)
		}
	case *ast.RouteNode:
		fmt.Fprintf(w, "%sRoute(%d)\n", indent, t.RouteIndex)
		dump(w, t.Data, depth+1)
	default:
		if first, second, ok := ast.InfixOperands(n); ok {
			fmt.Fprintf(w, "%s%s(%s)\n", indent, n.Kind(), infixType(n))
			dump(w, first, depth+1)
			dump(w, second, depth+1)
			return
		}
		fmt.Fprintf(w, "%s%s\n", indent, n.Kind())
	}
}

func infixType(n ast.Node) string {
	switch t := n.(type) {
	case *ast.AssignmentNode:
		return t.Type
	case *ast.ComparisonNode:
		return t.Type
	case *ast.AdditionNode:
		return t.Type
	case *ast.MultiplicationNode:
		return t.Type
	case *ast.BitwiseNode:
		return t.Type
	case *ast.LogNode:
		return t.Type
	case *ast.LinkNode:
		return t.Type
	case *ast.ConditionalNode:
		return t.Type
	default:
		return ""
	}
}

// buildFrontend constructs the demo grammar: Latin and Arabic identifier
// characters, "def"/"عرف" definitions, "use"/"استعمل" bridges, and
// "+"/"*" expressions.
func buildFrontend() (*suhuf.Frontend, error) {
	f := grammar.NewFactory("root", "%const")

	steps := []error{
		f.CharGroup("letter", grammar.Union(
			grammar.Sequence('a', 'z'),
			grammar.Sequence('A', 'Z'),
			grammar.Sequence('ء', 'ي'), // Arabic letters
			grammar.Random('_'),
		)),
		f.CharGroup("digit", grammar.Sequence('0', '9')),
		f.CharGroup("ws", grammar.Random(' ', '\t', '\r', '\n')),

		f.Token("IDENT", grammar.Multiply(
			grammar.CharGroupTerm(grammar.ParseReference("letter")), 1, grammar.Endless, 0,
		), 0),
		f.Token("NUMBER", grammar.Multiply(
			grammar.CharGroupTerm(grammar.ParseReference("digit")), 1, grammar.Endless, 0,
		), 0),
		f.Token("WS", grammar.Multiply(
			grammar.CharGroupTerm(grammar.ParseReference("ws")), 1, grammar.Endless, 0,
		), grammar.IgnoredToken),

		f.Production("primary", grammar.Alternate(
			grammar.TokenTerm("IDENT", ""),
			grammar.TokenTerm("NUMBER", ""),
		)),
		f.Production("mulexpr", grammar.Concat(
			grammar.RefTerm(grammar.ParseReference("primary")),
			grammar.Multiply(grammar.Concat(
				grammar.ConstTerm("*"),
				grammar.RefTerm(grammar.ParseReference("primary")),
			), 0, grammar.Endless, grammar.MultiplyGreedy),
		), grammar.WithHandler("mul")),
		f.Production("addexpr", grammar.Concat(
			grammar.RefTerm(grammar.ParseReference("mulexpr")),
			grammar.Multiply(grammar.Concat(
				grammar.ConstTerm("+"),
				grammar.RefTerm(grammar.ParseReference("mulexpr")),
			), 0, grammar.Endless, grammar.MultiplyGreedy),
		), grammar.WithHandler("add")),
		f.Production("defkw", grammar.Alternate(
			grammar.ConstTerm("def"),
			grammar.ConstTerm("عرف"),
		)),
		f.Production("usekw", grammar.Alternate(
			grammar.ConstTerm("use"),
			grammar.ConstTerm("استعمل"),
		)),
		f.Production("defstmt", grammar.Concat(
			grammar.RefTerm(grammar.ParseReference("defkw")),
			grammar.TokenTerm("IDENT", ""),
			grammar.ConstTerm(":"),
			grammar.RefTerm(grammar.ParseReference("addexpr")),
			grammar.ConstTerm(";"),
		), grammar.WithHandler("definition"), grammar.WithErrorSync(4)),
		f.Production("usestmt", grammar.Concat(
			grammar.RefTerm(grammar.ParseReference("usekw")),
			grammar.TokenTerm("IDENT", ""),
			grammar.ConstTerm(";"),
		), grammar.WithHandler("use"), grammar.WithErrorSync(2)),
		f.Production("exprstmt", grammar.Concat(
			grammar.RefTerm(grammar.ParseReference("addexpr")),
			grammar.ConstTerm(";"),
		), grammar.WithHandler("first"), grammar.WithErrorSync(1)),
		f.Production("stmt", grammar.Alternate(
			grammar.RefTerm(grammar.ParseReference("defstmt")),
			grammar.RefTerm(grammar.ParseReference("usestmt")),
			grammar.RefTerm(grammar.ParseReference("exprstmt")),
		)),
		f.Production("program", grammar.Multiply(
			grammar.RefTerm(grammar.ParseReference("stmt")), 0, grammar.Endless, grammar.MultiplyGreedy,
		), grammar.WithHandler("scope")),

		f.ErrorSyncPair("(", ")"),
		f.ErrorSyncPair("[", "]"),
		f.ErrorSyncPair("{", "}"),
		f.Start(grammar.ParseReference("program")),
	}
	for _, err := range steps {
		if err != nil {
			return nil, err
		}
	}

	mod, err := f.Build()
	if err != nil {
		return nil, err
	}

	fe, err := suhuf.New(mod)
	if err != nil {
		return nil, err
	}
	fe.Parser.RegisterHandler("mul", parser.NewInfixHandler(parser.InfixMultiplication))
	fe.Parser.RegisterHandler("add", parser.NewInfixHandler(parser.InfixAddition))
	fe.Parser.RegisterHandler("definition", parser.NewDefinitionHandler())
	fe.Parser.RegisterHandler("use", parser.NewBridgeHandler())
	fe.Parser.RegisterHandler("first", parser.NewSelectHandler(0))
	fe.Parser.RegisterHandler("scope", parser.NewScopeHandler())
	fe.Parser.RegisterTokenBuilder("NUMBER", func(tok lex.Token) ast.Node {
		v, _ := strconv.ParseInt(tok.Text, 10, 64)
		return &ast.IntegerLiteralNode{Base: ast.Base{Loc: &tok.Loc}, Text: tok.Text, Value: v}
	})
	return fe, nil
}
