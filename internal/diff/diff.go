package diff

import (
	"fmt"
	"reflect"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/everstacklabs/apidiff/internal/model"
)

// Compute returns the API changes between two snapshots.
//
// Changes are ordered classes, interfaces, functions, constants. Within each
// kind, additions and modifications follow the new snapshot's insertion order,
// then removals follow the old snapshot's. Matched classes and interfaces are
// followed by the changes of their methods, then their constants. A removed
// container yields a single change; its members are not reported.
func Compute(before, after *model.Snapshot) []model.Change {
	if before == nil {
		before = model.NewSnapshot()
	}
	if after == nil {
		after = model.NewSnapshot()
	}

	d := &differ{}
	diffMap(d, before.Classes, after.Classes, d.compareClass)
	diffMap(d, before.Interfaces, after.Interfaces, d.compareInterface)
	diffMap(d, before.Functions, after.Functions, func(o, n *model.Function) { d.compareCallable(o, n) })
	diffMap(d, before.Constants, after.Constants, d.compareConstant)
	return d.changes
}

type differ struct {
	changes []model.Change
}

func diffMap[E model.Element](d *differ, before, after *orderedmap.OrderedMap[string, E], modified func(o, n E)) {
	for p := after.Oldest(); p != nil; p = p.Next() {
		o, ok := before.Get(p.Key)
		if !ok {
			d.added(p.Value)
			continue
		}
		modified(o, p.Value)
	}
	for p := before.Oldest(); p != nil; p = p.Next() {
		if _, ok := after.Get(p.Key); !ok {
			d.removed(p.Value)
		}
	}
}

func (d *differ) added(e model.Element) {
	d.changes = append(d.changes, model.Change{
		Type:        model.Added,
		Severity:    model.Minor,
		Element:     e,
		Description: describe("Added", e),
	})
}

func (d *differ) removed(e model.Element) {
	sev := model.Major
	if e.IsInternal() {
		sev = model.Minor
	}
	d.changes = append(d.changes, model.Change{
		Type:        model.Removed,
		Severity:    sev,
		Element:     e,
		Description: describe("Removed", e),
	})
}

func (d *differ) modified(o, n model.Element, sev model.Severity, details []model.FieldChange) {
	d.changes = append(d.changes, model.Change{
		Type:        model.Modified,
		Severity:    sev,
		Element:     n,
		Old:         o,
		Description: describe("Modified", n),
		Details:     details,
	})
}

func describe(verb string, e model.Element) string {
	return fmt.Sprintf("%s %s %s", verb, e.Kind(), e.FullyQualifiedName())
}

func (d *differ) compareClass(o, n *model.Class) {
	if details := classDetails(o, n); len(details) > 0 {
		d.modified(o, n, classSeverity(o, n), details)
	}
	d.compareMembers(o, n)
}

func (d *differ) compareInterface(o, n *model.Interface) {
	if details := interfaceDetails(o, n); len(details) > 0 {
		d.modified(o, n, interfaceSeverity(o, n), details)
	}
	d.compareMembers(o, n)
}

func (d *differ) compareMembers(o, n model.Container) {
	om, nm := o.MemberSet(), n.MemberSet()
	diffMap(d, om.Methods, nm.Methods, func(o, n *model.Method) { d.compareCallable(o, n) })
	diffMap(d, om.Constants, nm.Constants, d.compareConstant)
}

func (d *differ) compareCallable(o, n model.Element) {
	os, ns := effectiveOf(o), effectiveOf(n)
	if os.equal(ns) {
		return
	}
	d.modified(o, n, callableSeverity(os, ns), callableDetails(os, ns))
}

func (d *differ) compareConstant(o, n *model.Constant) {
	if constantValueEqual(o.Value, n.Value) && o.IsInternal() == n.IsInternal() {
		return
	}
	d.modified(o, n, constantSeverity(o, n), constantDetails(o, n))
}

// constantValueEqual compares values by dynamic type and value, so int64(1)
// and "1" differ.
func constantValueEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// effective is the comparable form of a method or function signature.
type effective struct {
	params     []model.Parameter
	returnType string
	visibility model.Visibility
	static     bool
	abstract   bool
	final      bool
	internal   bool
}

func effectiveOf(e model.Element) effective {
	var eff effective
	switch v := e.(type) {
	case *model.Function:
		eff.params = v.Parameters
		eff.returnType = v.ReturnType
		eff.visibility = model.Public
	case *model.Method:
		eff.params = v.Parameters
		eff.returnType = v.ReturnType
		eff.visibility = v.Visibility.Normalize()
		eff.static = v.Static
		eff.abstract = v.Abstract
		eff.final = v.Final
	}
	eff.internal = e.IsInternal()
	return eff
}

func (e effective) equal(o effective) bool {
	return slices.EqualFunc(e.params, o.params, sameParameter) &&
		e.returnType == o.returnType &&
		e.visibility == o.visibility &&
		e.static == o.static &&
		e.abstract == o.abstract &&
		e.final == o.final &&
		e.internal == o.internal
}

// sameParameter ignores names.
func sameParameter(a, b model.Parameter) bool {
	return a.Type == b.Type && a.HasDefault == b.HasDefault && a.Variadic == b.Variadic && a.ByRef == b.ByRef
}
