package interview

import "github.com/google/uuid"

// idFunc generates document ids for newly recorded answers. Replaced in
// tests for determinism.
var idFunc = func() string { return uuid.NewString() }
