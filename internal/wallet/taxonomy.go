package wallet

// Default taxonomy seeded into a fresh wallet at registration. Users rename
// and extend these freely afterwards.

// DefaultCategories returns the starter category tree.
func DefaultCategories() []Category {
	food := Category{ID: NewID("cat"), Name: "Food"}
	home := Category{ID: NewID("cat"), Name: "Home"}
	return []Category{
		food,
		{ID: NewID("cat"), Name: "Groceries", ParentID: food.ID},
		{ID: NewID("cat"), Name: "Eating Out", ParentID: food.ID},
		home,
		{ID: NewID("cat"), Name: "Rent", ParentID: home.ID},
		{ID: NewID("cat"), Name: "Utilities", ParentID: home.ID},
		{ID: NewID("cat"), Name: "Transport"},
		{ID: NewID("cat"), Name: "Leisure"},
		{ID: NewID("cat"), Name: "Health"},
		{ID: NewID("cat"), Name: "Salary"},
	}
}

// DefaultPaytypes returns the starter payment-method labels.
func DefaultPaytypes() []Paytype {
	return []Paytype{
		{ID: NewID("pt"), Name: "Card"},
		{ID: NewID("pt"), Name: "Cash"},
		{ID: NewID("pt"), Name: "Transfer"},
		{ID: NewID("pt"), Name: "Direct Debit"},
		{ID: NewID("pt"), Name: "Cheque"},
	}
}

// DeleteCategory removes the category with the given id and every descendant,
// however deep. Cascading the whole subtree keeps no orphaned parentId behind.
func DeleteCategory(categories []Category, id string) []Category {
	doomed := map[string]bool{id: true}
	// walk until the frontier stops growing; children can appear in any order
	for {
		grew := false
		for _, c := range categories {
			if c.ParentID != "" && doomed[c.ParentID] && !doomed[c.ID] {
				doomed[c.ID] = true
				grew = true
			}
		}
		if !grew {
			break
		}
	}
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		if !doomed[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// HasChildren reports whether a category is a parent and therefore not
// assignable to operations as a leaf.
func HasChildren(categories []Category, id string) bool {
	for _, c := range categories {
		if c.ParentID == id {
			return true
		}
	}
	return false
}
