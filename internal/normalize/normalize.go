package normalize

import "strings"

// Email returns a normalized form of an email address suitable for
// storage and comparisons. Normalization currently trims surrounding
// whitespace and lower-cases the address.
func Email(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// Name trims surrounding whitespace from a display label (room names,
// user display names). Case is preserved — labels are shown back to users
// exactly as entered, and findByName is an exact match on the stored form.
func Name(n string) string {
	return strings.TrimSpace(n)
}
