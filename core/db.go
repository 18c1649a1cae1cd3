package core

// DBOrdering is one sort term of a requested result ordering, bound from the
// API's ?ordering= query parameter ("-field" means descending).
type DBOrdering struct {
	Field     string
	Ascending bool
}
