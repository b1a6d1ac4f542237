package model

import "fmt"

// Instrument identifies an instrument by the integer code used in its
// kernel-pool keywords (INS<id>_FOV_...). Name is optional.
type Instrument struct {
	ID   int
	Name string
}

func (i Instrument) String() string {
	if i.Name != "" {
		return fmt.Sprintf("%s (%d)", i.Name, i.ID)
	}
	return fmt.Sprintf("instrument %d", i.ID)
}

// KeywordPrefix returns the prefix of the instrument's kernel-pool keywords,
// e.g. "INS-999001_".
func (i Instrument) KeywordPrefix() string {
	return fmt.Sprintf("INS%d_", i.ID)
}
