package repositories

import "errors"

// ErrNotFound is returned for lookups that match no row. Services translate it
// into their own taxonomies; gorm.ErrRecordNotFound never escapes this package.
var ErrNotFound = errors.New("record not found")
