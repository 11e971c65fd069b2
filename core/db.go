package core

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// MapOrderings keeps the orderings whose Field is a key of columns, replacing it with the mapped column.
// Unknown fields are dropped so that user input never reaches the ORDER BY clause unchecked.
func MapOrderings(ords []DBOrdering, columns map[string]string) []DBOrdering {
	mapped := make([]DBOrdering, 0, len(ords))
	for _, ord := range ords {
		if col, ok := columns[ord.Field]; ok {
			mapped = append(mapped, DBOrdering{Field: col, Ascending: ord.Ascending})
		}
	}
	return mapped
}

// Page holds skip/limit pagination; skip counts pages, not rows.
type Page struct {
	Skip  int `query:"skip"`
	Limit int `query:"limit"`
}

func (p Page) Clean() Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = 10
	}
	return p
}

func (p Page) Offset() uint64 { return uint64(p.Skip * p.Limit) }
