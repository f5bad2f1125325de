package customers

type CreateCustomerRequest struct {
	Name          string  `json:"customer_name" validate:"required,max=255"`
	Contact       string  `json:"contact" validate:"required,max=64"`
	Address       *string `json:"address,omitempty"`
	ContactPerson *string `json:"contact_person_name,omitempty"`
}

// ImportRow is one tabular row from the bulk import boundary.
type ImportRow struct {
	Name          string `json:"customer_name"`
	Contact       string `json:"contact"`
	Address       string `json:"address"`
	ContactPerson string `json:"contact_person_name"`
}

// SkippedRow records why an import row was dropped.
type SkippedRow struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// ImportResult summarises a bulk import batch.
type ImportResult struct {
	Inserted int          `json:"inserted"`
	Skipped  []SkippedRow `json:"skipped,omitempty"`
}
