package ports

// StyleSource exposes the computed style variables of the root node.
type StyleSource interface {
	// Lookup returns the value of a style variable and whether it is set.
	Lookup(name string) (string, bool)
}
