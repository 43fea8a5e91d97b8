package types

import "github.com/m-mizutani/goerr/v2"

// ChangeField identifies which roster counter changed
type ChangeField string

const (
	// FieldTotal is the number of countable members in the organization
	FieldTotal ChangeField = "total"
	// FieldActive is the number of countable members currently present
	FieldActive ChangeField = "active"
)

// Validate checks if the ChangeField is valid
func (f ChangeField) Validate() error {
	switch f {
	case FieldTotal, FieldActive:
		return nil
	}
	return goerr.New("unknown change field", goerr.V("field", f))
}

// String returns the string representation of ChangeField
func (f ChangeField) String() string {
	return string(f)
}
