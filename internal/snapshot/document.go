// Package snapshot stores API snapshots as YAML documents.
package snapshot

// FormatVersion is written to every document. Documents with another
// version are rejected.
const FormatVersion = 1

// Document is the YAML form of a snapshot. Lists keep declaration order.
type Document struct {
	Version    int               `yaml:"version"`
	Classes    []ClassDoc        `yaml:"classes,omitempty"`
	Interfaces []InterfaceDoc    `yaml:"interfaces,omitempty"`
	Functions  []FunctionDoc     `yaml:"functions,omitempty"`
	Constants  []ConstantDoc     `yaml:"constants,omitempty"`
	Files      map[string]string `yaml:"files,omitempty"`
}

// DeclDoc holds the shared element attributes.
type DeclDoc struct {
	Name      string `yaml:"name"`
	Namespace string `yaml:"namespace,omitempty"`
	Doc       string `yaml:"doc,omitempty"`
	File      string `yaml:"file,omitempty"`
}

// ClassDoc is a class with its public members.
type ClassDoc struct {
	DeclDoc    `yaml:",inline"`
	Abstract   bool          `yaml:"abstract,omitempty"`
	Final      bool          `yaml:"final,omitempty"`
	Extends    string        `yaml:"extends,omitempty"`
	Implements []string      `yaml:"implements,omitempty"`
	Methods    []MethodDoc   `yaml:"methods,omitempty"`
	Constants  []ConstantDoc `yaml:"constants,omitempty"`
}

// InterfaceDoc is an interface with its members.
type InterfaceDoc struct {
	DeclDoc   `yaml:",inline"`
	Extends   []string      `yaml:"extends,omitempty"`
	Methods   []MethodDoc   `yaml:"methods,omitempty"`
	Constants []ConstantDoc `yaml:"constants,omitempty"`
}

// MethodDoc is a method. Namespace and file come from the container.
type MethodDoc struct {
	DeclDoc    `yaml:",inline"`
	Parameters []ParamDoc `yaml:"parameters,omitempty"`
	ReturnType string     `yaml:"return_type,omitempty"`
	Static     bool       `yaml:"static,omitempty"`
	Abstract   bool       `yaml:"abstract,omitempty"`
	Final      bool       `yaml:"final,omitempty"`
	Visibility string     `yaml:"visibility,omitempty"`
}

// FunctionDoc is a namespaced function.
type FunctionDoc struct {
	DeclDoc    `yaml:",inline"`
	Parameters []ParamDoc `yaml:"parameters,omitempty"`
	ReturnType string     `yaml:"return_type,omitempty"`
}

// ParamDoc is one positional parameter.
type ParamDoc struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type,omitempty"`
	HasDefault bool   `yaml:"has_default,omitempty"`
	Variadic   bool   `yaml:"variadic,omitempty"`
	ByRef      bool   `yaml:"by_ref,omitempty"`
}

// ConstantDoc is a global or member constant.
type ConstantDoc struct {
	DeclDoc   `yaml:",inline"`
	Value     any    `yaml:"value"`
	ValueType string `yaml:"value_type,omitempty"`
	// ValueKind is "float" for floating point values, including integral ones.
	ValueKind string `yaml:"value_kind,omitempty"`
}
