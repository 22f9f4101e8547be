package planner

import "fmt"

// Filter maps a filter field name to its requested value. A missing key
// imposes no constraint on that field; an empty string is a real value and
// is not the same as absence.
type Filter map[string]string

// Filterable field names per resource type.
const (
	FieldUrgency  = "urgency"
	FieldPriority = "priority"
	FieldDate     = "horizon_date"
	FieldType     = "type"
	FieldTitle    = "title"
	FieldEvtDate  = "date"
)

// filterFields lists the filterable fields of each resource in canonical
// order. Cache keys and predicates iterate this list, never the map, so two
// logically identical filters always encode identically.
var filterFields = map[ResourceType][]string{
	ResourceTodos:    {FieldPriority, FieldUrgency},
	ResourceHorizons: {FieldDate, FieldTitle, FieldType},
	ResourceEvents:   {FieldEvtDate},
}

// FilterFields returns the filterable fields for a resource in canonical order.
func FilterFields(rt ResourceType) []string {
	return filterFields[rt]
}

// ValidateFilter rejects filters that name unknown fields or carry values
// outside the field's domain. It must pass before any store call.
func ValidateFilter(rt ResourceType, f Filter) error {
	allowed := filterFields[rt]
	if allowed == nil {
		return fmt.Errorf("%w: unknown resource type %q", ErrInvalidFilter, rt)
	}
	for field, value := range f {
		if !contains(allowed, field) {
			return fmt.Errorf("%w: field %q is not filterable on %s", ErrInvalidFilter, field, rt)
		}
		switch field {
		case FieldUrgency, FieldPriority:
			if !Level(value).Valid() {
				return fmt.Errorf("%w: %s must be %q or %q, got %q",
					ErrInvalidFilter, field, LevelHigh, LevelLow, value)
			}
		case FieldDate, FieldEvtDate:
			if err := ValidateDate(value); err != nil {
				return err
			}
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
