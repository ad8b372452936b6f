package diff

import (
	"slices"

	"github.com/everstacklabs/apidiff/internal/model"
)

// internalTransition applies the @internal override shared by every element
// kind. Leaving the internal contract is a patch; entering it is a break for
// anyone who used the element.
func internalTransition(wasInternal, isInternal bool) (model.Severity, bool) {
	switch {
	case wasInternal && !isInternal:
		return model.Patch, true
	case !wasInternal && isInternal:
		return model.Major, true
	}
	return "", false
}

func callableSeverity(o, n effective) model.Severity {
	if sev, ok := internalTransition(o.internal, n.internal); ok {
		return sev
	}

	paramsBreaking := parametersBreaking(o.params, n.params)
	// Any return type difference is breaking, including one side being absent.
	returnChanged := o.returnType != n.returnType

	if o.internal || n.internal {
		if paramsBreaking || returnChanged {
			return model.Minor
		}
		if o.visibility != n.visibility || o.static != n.static {
			return model.Minor
		}
		return model.Patch
	}

	switch {
	case paramsBreaking, returnChanged:
		return model.Major
	case o.static != n.static, o.abstract != n.abstract, o.final != n.final:
		return model.Major
	case o.visibility != n.visibility:
		return model.Minor
	}
	return model.Patch
}

// parametersBreaking reports whether callers of the old signature can fail
// against the new one: more required parameters, or a positional parameter
// whose type or by-reference flag changed.
func parametersBreaking(before, after []model.Parameter) bool {
	if requiredCount(after) > requiredCount(before) {
		return true
	}
	n := min(len(before), len(after))
	for i := 0; i < n; i++ {
		if before[i].Type != after[i].Type || before[i].ByRef != after[i].ByRef {
			return true
		}
	}
	return false
}

func requiredCount(params []model.Parameter) int {
	return model.Signature{Parameters: params}.RequiredCount()
}

func classSeverity(o, n *model.Class) model.Severity {
	if sev, ok := internalTransition(o.IsInternal(), n.IsInternal()); ok {
		return sev
	}
	switch {
	case o.Abstract != n.Abstract, o.Final != n.Final:
		return model.Major
	case o.Extends != "" && o.Extends != n.Extends:
		// Parent replaced or dropped.
		return model.Major
	case !slices.Equal(o.Implements, n.Implements):
		return model.Minor
	case o.Extends == "" && n.Extends != "":
		return model.Minor
	}
	return model.Patch
}

func interfaceSeverity(o, n *model.Interface) model.Severity {
	if sev, ok := internalTransition(o.IsInternal(), n.IsInternal()); ok {
		return sev
	}
	for _, parent := range o.Extends {
		if !slices.Contains(n.Extends, parent) {
			return model.Major
		}
	}
	if !slices.Equal(o.Extends, n.Extends) {
		return model.Minor
	}
	return model.Patch
}

func constantSeverity(o, n *model.Constant) model.Severity {
	if sev, ok := internalTransition(o.IsInternal(), n.IsInternal()); ok {
		return sev
	}
	if constantValueEqual(o.Value, n.Value) {
		return model.Patch
	}
	if o.IsInternal() || n.IsInternal() {
		return model.Minor
	}
	return model.Major
}
