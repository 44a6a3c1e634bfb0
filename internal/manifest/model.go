package manifest

// DefaultRef is the revision used when an entry omits ref.
const DefaultRef = "main"

// Manifest is the validated, ordered list of entries to fetch.
type Manifest struct {
	Models []Entry
}

// Entry describes a single hub repository to fetch.
type Entry struct {
	Repo    string
	Ref     string
	Include Patterns
	Exclude Patterns
}

// Patterns holds glob filters written either as a single string or as a list.
// Both forms read the same through Values.
type Patterns struct {
	values []string
}

// Single returns a Patterns holding one glob.
func Single(pattern string) Patterns {
	return Patterns{values: []string{pattern}}
}

// Many returns a Patterns holding a list of globs (possibly empty).
func Many(patterns ...string) Patterns {
	return Patterns{values: append([]string(nil), patterns...)}
}

// Values returns the globs in manifest order.
func (p Patterns) Values() []string {
	if len(p.values) == 0 {
		return nil
	}
	return append([]string(nil), p.values...)
}
