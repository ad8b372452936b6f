package model

import (
	"regexp"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind identifies the declaration type of an element.
type Kind string

const (
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindMethod    Kind = "method"
	KindFunction  Kind = "function"
	KindConstant  Kind = "constant"
)

// Visibility of a method. The empty value is treated as public.
type Visibility string

const (
	Public    Visibility = "public"
	Protected Visibility = "protected"
	Private   Visibility = "private"
)

// Normalize maps the empty visibility to Public.
func (v Visibility) Normalize() Visibility {
	if v == "" {
		return Public
	}
	return v
}

// Element is one exported declaration. The set of implementations is closed:
// *Class, *Interface, *Method, *Function and *Constant.
type Element interface {
	Kind() Kind
	Declaration() Decl
	FullyQualifiedName() string
	IsInternal() bool
	SourceFile() string
	isElement()
}

// Decl holds the attributes shared by every element.
type Decl struct {
	Name       string
	Namespace  string
	DocComment string
	// File is the slash-separated path of the declaring file, relative to the source root.
	File string
	// Owner is the short name of the owning class or interface. Empty for top-level elements.
	Owner string
}

// Declaration returns the shared attributes.
func (d Decl) Declaration() Decl { return d }

// FullyQualifiedName joins namespace, owner and name.
func (d Decl) FullyQualifiedName() string {
	name := d.Name
	if d.Owner != "" {
		name = d.Owner + "::" + d.Name
	}
	if d.Namespace == "" {
		return name
	}
	return d.Namespace + `\` + name
}

// IsInternal reports whether the doc comment carries a standalone @internal tag.
func (d Decl) IsInternal() bool {
	return HasInternalTag(d.DocComment)
}

// SourceFile returns the declaring file.
func (d Decl) SourceFile() string { return d.File }

// The tag must open a doc line (after optional "*") or directly follow "/**".
var internalTag = regexp.MustCompile(`(?m)(?:^|/\*\*)[ \t]*\*?[ \t]*@internal(?:\s|\*/|$)`)

// HasInternalTag reports whether doc contains an @internal tag in tag position.
// Mentions of the word in prose, or after other text on the same line, do not count.
func HasInternalTag(doc string) bool {
	if doc == "" {
		return false
	}
	return internalTag.MatchString(doc)
}

// Parameter of a callable. Name never takes part in comparisons.
type Parameter struct {
	Name       string
	Type       string
	HasDefault bool
	Variadic   bool
	ByRef      bool
}

// Signature is the callable part shared by methods and functions.
type Signature struct {
	Parameters []Parameter
	ReturnType string
}

// RequiredCount returns the number of parameters without a default value.
func (s Signature) RequiredCount() int {
	n := 0
	for _, p := range s.Parameters {
		if !p.HasDefault {
			n++
		}
	}
	return n
}

// Function is a top-level callable.
type Function struct {
	Decl
	Signature
}

func (*Function) Kind() Kind { return KindFunction }
func (*Function) isElement() {}

// Method is a callable member of a class or interface.
type Method struct {
	Decl
	Signature
	Static     bool
	Abstract   bool
	Final      bool
	Visibility Visibility
}

func (*Method) Kind() Kind { return KindMethod }
func (*Method) isElement() {}

// Constant is a global, class or interface constant.
type Constant struct {
	Decl
	Value     any
	ValueType string
}

func (*Constant) Kind() Kind { return KindConstant }
func (*Constant) isElement() {}

// Members are the methods and constants of a container, keyed by simple name
// in declaration order.
type Members struct {
	Methods   *orderedmap.OrderedMap[string, *Method]
	Constants *orderedmap.OrderedMap[string, *Constant]
}

func newMembers() Members {
	return Members{
		Methods:   orderedmap.New[string, *Method](),
		Constants: orderedmap.New[string, *Constant](),
	}
}

// AddMethod stores m under its simple name, replacing an earlier declaration in place.
func (ms *Members) AddMethod(m *Method) {
	ms.Methods.Set(m.Name, m)
}

// AddConstant stores c under its simple name, replacing an earlier declaration in place.
func (ms *Members) AddConstant(c *Constant) {
	ms.Constants.Set(c.Name, c)
}

// Container is an element that owns methods and constants.
type Container interface {
	Element
	MemberSet() *Members
}

// Class declaration.
type Class struct {
	Decl
	Members
	Abstract   bool
	Final      bool
	Extends    string
	Implements []string
}

// NewClass returns a class with empty member maps.
func NewClass(d Decl) *Class {
	return &Class{Decl: d, Members: newMembers()}
}

func (*Class) Kind() Kind            { return KindClass }
func (*Class) isElement()            {}
func (c *Class) MemberSet() *Members { return &c.Members }

// Member returns a Decl for a member owned by this class.
func (c *Class) Member(name, doc string) Decl {
	return Decl{Name: name, Namespace: c.Namespace, DocComment: doc, File: c.File, Owner: c.Name}
}

// Interface declaration.
type Interface struct {
	Decl
	Members
	Extends []string
}

// NewInterface returns an interface with empty member maps.
func NewInterface(d Decl) *Interface {
	return &Interface{Decl: d, Members: newMembers()}
}

func (*Interface) Kind() Kind            { return KindInterface }
func (*Interface) isElement()            {}
func (i *Interface) MemberSet() *Members { return &i.Members }

// Member returns a Decl for a member owned by this interface.
func (i *Interface) Member(name, doc string) Decl {
	return Decl{Name: name, Namespace: i.Namespace, DocComment: doc, File: i.File, Owner: i.Name}
}
