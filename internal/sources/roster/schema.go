package roster

// Config represents the top-level structure of the roster.yaml seed
// file: the employee and admin allow-lists as two-column tables.
type Config struct {
	Employees []EntryProps `yaml:"employees"`
	Admins    []EntryProps `yaml:"admins"`
}

// EntryProps is one allow-list entry.
type EntryProps struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}
