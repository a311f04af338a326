package checkmock

import "gorm.io/gorm"

// errNotFound mirrors what the gorm repositories return for a missing row.
var errNotFound = gorm.ErrRecordNotFound
