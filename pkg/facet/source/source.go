// Package source loads contract metadata from Go source code. Interfaces
// annotated with //facet::contract are contracts; //facet::marker comments on
// their methods declare markers.
//
//	//facet::contract -name="Key Value Store"
//	type Store interface {
//		//facet::marker write
//		Put(key string, value []byte) error
//	}
package source

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"log/slog"
	"sort"

	"golang.org/x/tools/go/packages"

	"github.com/toyz/facet/internal/annotations"
	"github.com/toyz/facet/pkg/facet"
	"github.com/toyz/facet/pkg/facet/expr"
)

// MethodInfo describes one method of a contract
type MethodInfo struct {
	Name       string                     `json:"name"`
	Params     []string                   `json:"params"`
	Results    []string                   `json:"results,omitempty"`
	Variadic   bool                       `json:"variadic,omitempty"`
	Markers    []string                   `json:"markers,omitempty"`
	HasDefault bool                       `json:"has_default,omitempty"`
	Location   annotations.SourceLocation `json:"-"`

	pos token.Pos
}

// ContractInfo describes an interface found in source
type ContractInfo struct {
	Package     string                     `json:"package"`
	PackageName string                     `json:"package_name"`
	Name        string                     `json:"name"`
	Display     string                     `json:"display"`
	Annotated   bool                       `json:"annotated"`
	Methods     []MethodInfo               `json:"methods"`
	Location    annotations.SourceLocation `json:"-"`
}

// Qualified returns the name the way reflect spells it, e.g. store.Reader
func (c ContractInfo) Qualified() string {
	return c.PackageName + "." + c.Name
}

// Facts converts a method into the facts a matcher expression evaluates
func (c ContractInfo) Facts(m MethodInfo) expr.MethodFacts {
	return expr.MethodFacts{
		Contract: c.Qualified(),
		Name:     m.Name,
		Params:   m.Params,
		Markers:  m.Markers,
	}
}

// Signature renders the method as Name(T1, T2)
func (m MethodInfo) Signature() string {
	return expr.MethodFacts{Name: m.Name, Params: m.Params}.Signature()
}

// Options configures a Loader
type Options struct {
	Dir    string       // directory the patterns are relative to
	All    bool         // include interfaces without //facet::contract
	Tests  bool         // include test files
	Logger *slog.Logger // defaults to a discard logger
}

// Loader loads contracts from packages
type Loader struct {
	opts   Options
	parser *annotations.Parser
}

// NewLoader creates a loader
func NewLoader(opts Options) *Loader {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{opts: opts, parser: annotations.NewParser()}
}

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
	packages.NeedTypes | packages.NeedTypesInfo | packages.NeedImports | packages.NeedDeps

type methodDoc struct {
	markers    []string
	hasDefault bool
}

// Load type-checks the packages matching patterns and returns their
// contracts sorted by package and name
func (l *Loader) Load(ctx context.Context, patterns ...string) ([]ContractInfo, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     l.opts.Dir,
		Tests:   l.opts.Tests,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs facet.MultipleErrors
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			errs.Add(fmt.Errorf("%s: %s", p.PkgPath, e.Msg))
		}
	})
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	docs := make(map[token.Pos]methodDoc)
	var contracts []ContractInfo
	seen := make(map[string]bool)
	for _, p := range pkgs {
		found, err := l.scan(p, docs)
		if err != nil {
			return nil, err
		}
		for _, c := range found {
			key := c.Package + "." + c.Name
			if seen[key] {
				continue
			}
			seen[key] = true
			contracts = append(contracts, c)
		}
	}

	// markers of embedded methods are known only once every package is scanned
	for i := range contracts {
		for j := range contracts[i].Methods {
			m := &contracts[i].Methods[j]
			if doc, ok := docs[m.pos]; ok {
				m.Markers = doc.markers
				m.HasDefault = doc.hasDefault
			}
		}
	}

	sort.Slice(contracts, func(i, j int) bool {
		if contracts[i].Package != contracts[j].Package {
			return contracts[i].Package < contracts[j].Package
		}
		return contracts[i].Name < contracts[j].Name
	})
	l.opts.Logger.Debug("facet: loaded contracts", "patterns", patterns, "count", len(contracts))
	return contracts, nil
}

func (l *Loader) scan(p *packages.Package, docs map[token.Pos]methodDoc) ([]ContractInfo, error) {
	var out []ContractInfo
	for _, file := range p.Syntax {
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, spec := range gen.Specs {
				ts := spec.(*ast.TypeSpec)
				it, ok := ts.Type.(*ast.InterfaceType)
				if !ok {
					continue
				}
				if err := l.scanMethods(p.Fset, it, docs); err != nil {
					return nil, err
				}

				doc := ts.Doc
				if doc == nil && len(gen.Specs) == 1 {
					doc = gen.Doc
				}
				info, err := l.contract(p, ts, doc)
				if err != nil {
					return nil, err
				}
				if info.Annotated || l.opts.All {
					out = append(out, info)
				}
			}
		}
	}
	return out, nil
}

func (l *Loader) scanMethods(fset *token.FileSet, it *ast.InterfaceType, docs map[token.Pos]methodDoc) error {
	for _, field := range it.Methods.List {
		if len(field.Names) == 0 || field.Doc == nil {
			continue
		}
		parsed, err := l.parser.ParseComments(commentLines(field.Doc), location(fset, field.Doc.Pos()))
		if err != nil {
			return err
		}
		var doc methodDoc
		for _, a := range parsed {
			switch a.Type {
			case annotations.MarkerAnnotation:
				doc.markers = append(doc.markers, a.Args...)
			case annotations.DefaultAnnotation:
				doc.hasDefault = true
			}
		}
		for _, name := range field.Names {
			docs[name.Pos()] = doc
		}
	}
	return nil
}

func (l *Loader) contract(p *packages.Package, ts *ast.TypeSpec, doc *ast.CommentGroup) (ContractInfo, error) {
	info := ContractInfo{
		Package:     p.PkgPath,
		PackageName: p.Name,
		Name:        ts.Name.Name,
		Display:     ts.Name.Name,
		Location:    location(p.Fset, ts.Pos()),
	}

	if doc != nil {
		parsed, err := l.parser.ParseComments(commentLines(doc), location(p.Fset, doc.Pos()))
		if err != nil {
			return info, err
		}
		for _, a := range parsed {
			if a.Type == annotations.ContractAnnotation {
				info.Annotated = true
				info.Display = a.GetString("name", info.Display)
			}
		}
	}

	obj := p.Types.Scope().Lookup(ts.Name.Name)
	if obj == nil {
		return info, nil
	}
	iface, ok := obj.Type().Underlying().(*types.Interface)
	if !ok {
		return info, nil
	}
	qualifier := func(pkg *types.Package) string { return pkg.Name() }
	for i := range iface.NumMethods() {
		fn := iface.Method(i)
		sig := fn.Type().(*types.Signature)
		m := MethodInfo{
			Name:     fn.Name(),
			Variadic: sig.Variadic(),
			Location: location(p.Fset, fn.Pos()),
			pos:      fn.Pos(),
		}
		for j := range sig.Params().Len() {
			m.Params = append(m.Params, types.TypeString(sig.Params().At(j).Type(), qualifier))
		}
		for j := range sig.Results().Len() {
			m.Results = append(m.Results, types.TypeString(sig.Results().At(j).Type(), qualifier))
		}
		info.Methods = append(info.Methods, m)
	}
	return info, nil
}

func commentLines(g *ast.CommentGroup) []string {
	lines := make([]string, len(g.List))
	for i, c := range g.List {
		lines[i] = c.Text
	}
	return lines
}

func location(fset *token.FileSet, pos token.Pos) annotations.SourceLocation {
	p := fset.Position(pos)
	return annotations.SourceLocation{File: p.Filename, Line: p.Line, Column: p.Column}
}
