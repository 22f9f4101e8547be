package planner

// IndexColumn is one column of a secondary index, with its sort direction.
type IndexColumn struct {
	Name string
	Desc bool
}

// IndexSpec declares a secondary index on a collection. Specs are static
// and versionless: re-applying one is a no-op, and an existing index of the
// same name with a different shape is a startup-time conflict.
type IndexSpec struct {
	Collection string
	Name       string
	Columns    []IndexColumn
	Unique     bool
}

// DefaultIndexes covers every filterable field, either directly or as the
// prefix of a compound index matching the most common filter conjunction,
// so filtered list queries never fall back to a collection scan.
func DefaultIndexes() []IndexSpec {
	return []IndexSpec{
		{Collection: "todos", Name: "idx_todos_created_at",
			Columns: []IndexColumn{{Name: "created_at", Desc: true}}},
		{Collection: "todos", Name: "idx_todos_urgency",
			Columns: []IndexColumn{{Name: "urgency"}}},
		{Collection: "todos", Name: "idx_todos_priority",
			Columns: []IndexColumn{{Name: "priority"}}},
		{Collection: "todos", Name: "idx_todos_urgency_priority_created",
			Columns: []IndexColumn{{Name: "urgency"}, {Name: "priority"}, {Name: "created_at", Desc: true}}},

		{Collection: "horizons", Name: "idx_horizons_created_at",
			Columns: []IndexColumn{{Name: "created_at", Desc: true}}},
		{Collection: "horizons", Name: "idx_horizons_date",
			Columns: []IndexColumn{{Name: "horizon_date"}}},
		{Collection: "horizons", Name: "idx_horizons_date_created",
			Columns: []IndexColumn{{Name: "horizon_date"}, {Name: "created_at", Desc: true}}},
		{Collection: "horizons", Name: "idx_horizons_title",
			Columns: []IndexColumn{{Name: "title"}}},
		{Collection: "horizons", Name: "idx_horizons_type",
			Columns: []IndexColumn{{Name: "type"}}},

		{Collection: "events", Name: "idx_events_created_at",
			Columns: []IndexColumn{{Name: "created_at", Desc: true}}},
		{Collection: "events", Name: "idx_events_date",
			Columns: []IndexColumn{{Name: "date"}}},
	}
}
