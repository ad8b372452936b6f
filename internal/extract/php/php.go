// Package php extracts the public API of PHP source files with tree-sitter.
package php

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/php"

	"github.com/everstacklabs/apidiff/internal/extract"
	"github.com/everstacklabs/apidiff/internal/model"
)

// ErrSyntax is returned for files tree-sitter could not parse cleanly.
var ErrSyntax = errors.New("php syntax error")

func init() {
	extract.Register(&Extractor{})
}

// Extractor collects classes, interfaces, functions and constants. Only
// public methods and constants of classes and interfaces are kept. Traits and
// enums are not part of the model and are skipped with their members.
type Extractor struct{}

func (e *Extractor) Name() string         { return "php" }
func (e *Extractor) Extensions() []string { return []string{".php"} }

// Extract parses one file. A new parser is created per call; parsers are not
// safe for concurrent use.
func (e *Extractor) Extract(ctx context.Context, path string, content []byte) (*model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(php.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	defer tree.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("%w in %s", ErrSyntax, path)
	}

	w := &walker{ctx: ctx, src: content, path: path, snap: model.NewSnapshot()}
	if err := w.visitChildren(root); err != nil {
		return nil, err
	}
	return w.snap, nil
}

type walker struct {
	ctx  context.Context
	src  []byte
	path string
	ns   string
	snap *model.Snapshot
}

func (w *walker) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(w.src[n.StartByte():n.EndByte()])
}

func (w *walker) visitChildren(n *sitter.Node) error {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if err := w.visit(n.NamedChild(i)); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) visit(n *sitter.Node) error {
	switch n.Type() {
	case "namespace_definition":
		return w.namespace(n)
	case "class_declaration":
		if err := w.ctx.Err(); err != nil {
			return err
		}
		w.class(n)
		return nil
	case "interface_declaration":
		if err := w.ctx.Err(); err != nil {
			return err
		}
		w.iface(n)
		return nil
	case "function_definition":
		w.function(n)
		// Functions declared inside a function body are global once called.
		if body := n.ChildByFieldName("body"); body != nil {
			return w.visitChildren(body)
		}
		return nil
	case "const_declaration":
		for _, c := range w.constants(n, nil) {
			w.snap.AddConstant(c)
		}
		return nil
	case "trait_declaration", "enum_declaration", "comment", "text", "php_tag":
		return nil
	}
	return w.visitChildren(n)
}

func (w *walker) namespace(n *sitter.Node) error {
	name := trimLeadingSlash(w.text(n.ChildByFieldName("name")))
	body := n.ChildByFieldName("body")
	if body == nil {
		// "namespace Foo;" applies to the rest of the file.
		w.ns = name
		return nil
	}
	prev := w.ns
	w.ns = name
	err := w.visitChildren(body)
	w.ns = prev
	return err
}

func (w *walker) decl(n *sitter.Node) model.Decl {
	return model.Decl{
		Name:       w.text(n.ChildByFieldName("name")),
		Namespace:  w.ns,
		DocComment: w.docComment(n),
		File:       w.path,
	}
}

// docComment returns the "/** */" comment directly preceding n.
func (w *walker) docComment(n *sitter.Node) string {
	prev := n.PrevSibling()
	if prev == nil || prev.Type() != "comment" {
		return ""
	}
	if text := w.text(prev); strings.HasPrefix(text, "/**") {
		return text
	}
	return ""
}

func (w *walker) class(n *sitter.Node) {
	c := model.NewClass(w.decl(n))
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "abstract_modifier":
			c.Abstract = true
		case "final_modifier":
			c.Final = true
		case "base_clause":
			if parents := w.names(child); len(parents) > 0 {
				c.Extends = parents[0]
			}
		case "class_interface_clause":
			c.Implements = w.names(child)
		}
	}
	w.members(n, c)
	w.snap.AddClass(c)
}

func (w *walker) iface(n *sitter.Node) {
	i := model.NewInterface(w.decl(n))
	for k := 0; k < int(n.ChildCount()); k++ {
		if child := n.Child(k); child.Type() == "base_clause" {
			i.Extends = w.names(child)
		}
	}
	w.members(n, i)
	w.snap.AddInterface(i)
}

// owner is implemented by *model.Class and *model.Interface.
type owner interface {
	model.Container
	Member(name, doc string) model.Decl
}

func (w *walker) members(n *sitter.Node, o owner) {
	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	set := o.MemberSet()
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		switch child.Type() {
		case "method_declaration":
			if m := w.method(child, o); m != nil {
				set.AddMethod(m)
			}
		case "const_declaration":
			for _, c := range w.constants(child, o) {
				set.AddConstant(c)
			}
		}
	}
}

// names returns the class names listed in an extends or implements clause.
func (w *walker) names(n *sitter.Node) []string {
	var out []string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "name", "qualified_name":
			out = append(out, trimLeadingSlash(w.text(child)))
		}
	}
	return out
}

func (w *walker) method(n *sitter.Node, o owner) *model.Method {
	m := &model.Method{Visibility: model.Public}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "visibility_modifier":
			m.Visibility = model.Visibility(strings.ToLower(w.text(child)))
		case "static_modifier":
			m.Static = true
		case "abstract_modifier":
			m.Abstract = true
		case "final_modifier":
			m.Final = true
		}
	}
	if m.Visibility != model.Public {
		return nil
	}

	name := w.text(n.ChildByFieldName("name"))
	m.Decl = o.Member(name, w.docComment(n))
	m.Signature = w.signature(n, m.DocComment)
	return m
}

func (w *walker) function(n *sitter.Node) {
	d := w.decl(n)
	w.snap.AddFunction(&model.Function{Decl: d, Signature: w.signature(n, d.DocComment)})
}

// signature reads parameters and return type, falling back to @param and
// @return doc tags for undeclared types.
func (w *walker) signature(n *sitter.Node, doc string) model.Signature {
	tags := parseDocTags(doc)
	var sig model.Signature

	if params := n.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			child := params.NamedChild(i)
			switch child.Type() {
			case "simple_parameter", "variadic_parameter", "property_promotion_parameter":
				sig.Parameters = append(sig.Parameters, w.parameter(child, tags))
			}
		}
	}

	if rt := n.ChildByFieldName("return_type"); rt != nil {
		sig.ReturnType = normalizeType(w.text(rt))
	} else {
		sig.ReturnType = tags.returns
	}
	return sig
}

func (w *walker) parameter(n *sitter.Node, tags docTags) model.Parameter {
	p := model.Parameter{
		Name:       strings.TrimPrefix(w.text(n.ChildByFieldName("name")), "$"),
		HasDefault: n.ChildByFieldName("default_value") != nil,
		Variadic:   n.Type() == "variadic_parameter",
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		switch n.Child(i).Type() {
		case "reference_modifier", "&":
			p.ByRef = true
		}
	}
	if t := n.ChildByFieldName("type"); t != nil {
		p.Type = normalizeType(w.text(t))
	} else {
		p.Type = tags.params[p.Name]
	}
	return p
}

// constants returns the public constants of a const declaration. With a nil
// owner they are global constants.
func (w *walker) constants(n *sitter.Node, o owner) []*model.Constant {
	var valueType string
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() == "visibility_modifier" && !strings.EqualFold(w.text(child), "public") {
			return nil
		}
	}
	if t := n.ChildByFieldName("type"); t != nil {
		valueType = normalizeType(w.text(t))
	}

	doc := w.docComment(n)
	var out []*model.Constant
	for i := 0; i < int(n.NamedChildCount()); i++ {
		el := n.NamedChild(i)
		if el.Type() != "const_element" || el.NamedChildCount() < 2 {
			continue
		}
		name := w.text(el.NamedChild(0))
		value := el.NamedChild(int(el.NamedChildCount()) - 1)

		d := model.Decl{Name: name, Namespace: w.ns, DocComment: doc, File: w.path}
		if o != nil {
			d = o.Member(name, doc)
		}
		out = append(out, &model.Constant{Decl: d, Value: w.constantValue(value), ValueType: valueType})
	}
	return out
}

func trimLeadingSlash(s string) string {
	return strings.TrimPrefix(s, `\`)
}

// normalizeType drops whitespace and leading namespace separators so that
// "? \Foo\Bar" and "?Foo\Bar" compare equal.
func normalizeType(t string) string {
	t = strings.Join(strings.Fields(t), "")
	var b strings.Builder
	prev := byte(0)
	for i := 0; i < len(t); i++ {
		c := t[i]
		if c == '\\' && (prev == 0 || strings.IndexByte("?|&(", prev) >= 0) {
			continue
		}
		b.WriteByte(c)
		prev = c
	}
	return b.String()
}
