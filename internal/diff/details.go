package diff

import (
	"slices"

	"github.com/everstacklabs/apidiff/internal/model"
)

func callableDetails(o, n effective) []model.FieldChange {
	var changes []model.FieldChange

	if len(o.params) != len(n.params) {
		changes = append(changes, model.FieldChange{Field: model.FieldParameterCount, OldValue: len(o.params), NewValue: len(n.params)})
	}
	for i := 0; i < min(len(o.params), len(n.params)); i++ {
		op, np := o.params[i], n.params[i]
		if op.Type != np.Type {
			changes = append(changes, model.FieldChange{Field: model.FieldParameterType, Subject: np.Name, OldValue: op.Type, NewValue: np.Type})
		}
		if op.HasDefault != np.HasDefault {
			changes = append(changes, model.FieldChange{Field: model.FieldParameterOptional, Subject: np.Name, OldValue: op.HasDefault, NewValue: np.HasDefault})
		}
		if op.ByRef != np.ByRef {
			changes = append(changes, model.FieldChange{Field: model.FieldParameterByRef, Subject: np.Name, OldValue: op.ByRef, NewValue: np.ByRef})
		}
		if op.Variadic != np.Variadic {
			changes = append(changes, model.FieldChange{Field: model.FieldParameterVariadic, Subject: np.Name, OldValue: op.Variadic, NewValue: np.Variadic})
		}
	}

	if o.returnType != n.returnType {
		changes = append(changes, model.FieldChange{Field: model.FieldReturnType, OldValue: o.returnType, NewValue: n.returnType})
	}
	if o.visibility != n.visibility {
		changes = append(changes, model.FieldChange{Field: model.FieldVisibility, OldValue: string(o.visibility), NewValue: string(n.visibility)})
	}
	changes = appendFlag(changes, model.FieldStatic, o.static, n.static)
	changes = appendFlag(changes, model.FieldAbstract, o.abstract, n.abstract)
	changes = appendFlag(changes, model.FieldFinal, o.final, n.final)
	changes = appendFlag(changes, model.FieldInternal, o.internal, n.internal)
	return changes
}

func classDetails(o, n *model.Class) []model.FieldChange {
	var changes []model.FieldChange
	changes = appendFlag(changes, model.FieldAbstract, o.Abstract, n.Abstract)
	changes = appendFlag(changes, model.FieldFinal, o.Final, n.Final)
	if o.Extends != n.Extends {
		changes = append(changes, model.FieldChange{Field: model.FieldExtends, OldValue: o.Extends, NewValue: n.Extends})
	}
	if !slices.Equal(o.Implements, n.Implements) {
		changes = append(changes, model.FieldChange{Field: model.FieldImplements, OldValue: o.Implements, NewValue: n.Implements})
	}
	changes = appendFlag(changes, model.FieldInternal, o.IsInternal(), n.IsInternal())
	return changes
}

func interfaceDetails(o, n *model.Interface) []model.FieldChange {
	var changes []model.FieldChange
	if !slices.Equal(o.Extends, n.Extends) {
		changes = append(changes, model.FieldChange{Field: model.FieldExtends, OldValue: o.Extends, NewValue: n.Extends})
	}
	changes = appendFlag(changes, model.FieldInternal, o.IsInternal(), n.IsInternal())
	return changes
}

func constantDetails(o, n *model.Constant) []model.FieldChange {
	var changes []model.FieldChange
	if !constantValueEqual(o.Value, n.Value) {
		changes = append(changes, model.FieldChange{Field: model.FieldValue, OldValue: o.Value, NewValue: n.Value})
	}
	changes = appendFlag(changes, model.FieldInternal, o.IsInternal(), n.IsInternal())
	return changes
}

func appendFlag(changes []model.FieldChange, field string, before, after bool) []model.FieldChange {
	if before == after {
		return changes
	}
	return append(changes, model.FieldChange{Field: field, OldValue: before, NewValue: after})
}
