package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"github.com/everstacklabs/apidiff/internal/model"
)

// ErrInvalidSnapshot is returned for documents that cannot be read as a snapshot.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Encode marshals a snapshot to YAML.
func Encode(s *model.Snapshot) ([]byte, error) {
	data, err := yaml.Marshal(ToDocument(s))
	if err != nil {
		return nil, fmt.Errorf("marshaling snapshot: %w", err)
	}
	return data, nil
}

// Decode unmarshals a YAML snapshot document.
func Decode(data []byte) (*model.Snapshot, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if doc.Version != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", ErrInvalidSnapshot, doc.Version)
	}
	return doc.Snapshot(), nil
}

// Load reads a snapshot file.
func Load(path string) (*model.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	s, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Save writes a snapshot file, creating parent directories.
func Save(path string, s *model.Snapshot) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating snapshot dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ToDocument converts a snapshot to its document form.
func ToDocument(s *model.Snapshot) *Document {
	doc := &Document{Version: FormatVersion}
	if len(s.Files) > 0 {
		doc.Files = s.Files
	}
	for p := s.Classes.Oldest(); p != nil; p = p.Next() {
		c := p.Value
		doc.Classes = append(doc.Classes, ClassDoc{
			DeclDoc:    declDoc(c.Decl),
			Abstract:   c.Abstract,
			Final:      c.Final,
			Extends:    c.Extends,
			Implements: c.Implements,
			Methods:    methodDocs(c.Methods),
			Constants:  constantDocs(c.Constants),
		})
	}
	for p := s.Interfaces.Oldest(); p != nil; p = p.Next() {
		i := p.Value
		doc.Interfaces = append(doc.Interfaces, InterfaceDoc{
			DeclDoc:   declDoc(i.Decl),
			Extends:   i.Extends,
			Methods:   methodDocs(i.Methods),
			Constants: constantDocs(i.Constants),
		})
	}
	for p := s.Functions.Oldest(); p != nil; p = p.Next() {
		f := p.Value
		doc.Functions = append(doc.Functions, FunctionDoc{
			DeclDoc:    declDoc(f.Decl),
			Parameters: paramDocs(f.Parameters),
			ReturnType: f.ReturnType,
		})
	}
	for p := s.Constants.Oldest(); p != nil; p = p.Next() {
		doc.Constants = append(doc.Constants, constantDoc(p.Value))
	}
	return doc
}

// Snapshot converts the document back into a model snapshot.
func (d *Document) Snapshot() *model.Snapshot {
	s := model.NewSnapshot()
	for path, sum := range d.Files {
		s.AddFile(path, sum)
	}
	for _, cd := range d.Classes {
		c := model.NewClass(cd.decl())
		c.Abstract = cd.Abstract
		c.Final = cd.Final
		c.Extends = cd.Extends
		c.Implements = cd.Implements
		addMembers(&c.Members, c.Member, cd.Methods, cd.Constants)
		s.AddClass(c)
	}
	for _, id := range d.Interfaces {
		i := model.NewInterface(id.decl())
		i.Extends = id.Extends
		addMembers(&i.Members, i.Member, id.Methods, id.Constants)
		s.AddInterface(i)
	}
	for _, fd := range d.Functions {
		s.AddFunction(&model.Function{
			Decl:      fd.decl(),
			Signature: model.Signature{Parameters: params(fd.Parameters), ReturnType: fd.ReturnType},
		})
	}
	for _, cd := range d.Constants {
		s.AddConstant(cd.constant(cd.decl()))
	}
	return s
}

func addMembers(ms *model.Members, member func(name, doc string) model.Decl, methods []MethodDoc, constants []ConstantDoc) {
	for _, md := range methods {
		ms.AddMethod(&model.Method{
			Decl:       member(md.Name, md.Doc),
			Signature:  model.Signature{Parameters: params(md.Parameters), ReturnType: md.ReturnType},
			Static:     md.Static,
			Abstract:   md.Abstract,
			Final:      md.Final,
			Visibility: model.Visibility(md.Visibility),
		})
	}
	for _, cd := range constants {
		ms.AddConstant(cd.constant(member(cd.Name, cd.Doc)))
	}
}

func declDoc(d model.Decl) DeclDoc {
	return DeclDoc{Name: d.Name, Namespace: d.Namespace, Doc: d.DocComment, File: d.File}
}

func (d DeclDoc) decl() model.Decl {
	return model.Decl{Name: d.Name, Namespace: d.Namespace, DocComment: d.Doc, File: d.File}
}

func methodDocs(m *orderedmap.OrderedMap[string, *model.Method]) []MethodDoc {
	var out []MethodDoc
	for p := m.Oldest(); p != nil; p = p.Next() {
		v := p.Value
		out = append(out, MethodDoc{
			DeclDoc:    DeclDoc{Name: v.Name, Doc: v.DocComment},
			Parameters: paramDocs(v.Parameters),
			ReturnType: v.ReturnType,
			Static:     v.Static,
			Abstract:   v.Abstract,
			Final:      v.Final,
			Visibility: string(v.Visibility),
		})
	}
	return out
}

func constantDocs(m *orderedmap.OrderedMap[string, *model.Constant]) []ConstantDoc {
	var out []ConstantDoc
	for p := m.Oldest(); p != nil; p = p.Next() {
		cd := constantDoc(p.Value)
		// Members inherit namespace and file from their container.
		cd.Namespace, cd.File = "", ""
		out = append(out, cd)
	}
	return out
}

const kindFloat = "float"

func constantDoc(c *model.Constant) ConstantDoc {
	cd := ConstantDoc{DeclDoc: declDoc(c.Decl), Value: c.Value, ValueType: c.ValueType}
	if _, ok := c.Value.(float64); ok {
		cd.ValueKind = kindFloat
	}
	return cd
}

func (cd ConstantDoc) constant(d model.Decl) *model.Constant {
	return &model.Constant{Decl: d, Value: normalizeValue(cd.Value, cd.ValueKind), ValueType: cd.ValueType}
}

// normalizeValue maps YAML-decoded numbers onto the types extractors produce,
// so a loaded snapshot compares equal to a freshly built one.
func normalizeValue(v any, kind string) any {
	if kind == kindFloat {
		switch n := v.(type) {
		case int:
			return float64(n)
		case uint64:
			return float64(n)
		}
		return v
	}
	switch n := v.(type) {
	case int:
		return int64(n)
	case uint64:
		return int64(n)
	}
	return v
}

func paramDocs(ps []model.Parameter) []ParamDoc {
	var out []ParamDoc
	for _, p := range ps {
		out = append(out, ParamDoc(p))
	}
	return out
}

func params(ps []ParamDoc) []model.Parameter {
	var out []model.Parameter
	for _, p := range ps {
		out = append(out, model.Parameter(p))
	}
	return out
}
