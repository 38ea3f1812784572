package specification

import "gorm.io/gorm"

// Specification narrows a gorm query. Repositories accept any number
// of them so call sites compose filters declaratively instead of
// building SQL inline.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
