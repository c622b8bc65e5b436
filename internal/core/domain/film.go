package domain

// Film is a catalog entry. ExternalID is set only for films imported from the
// upstream source and is unique when present.
type Film struct {
	ID          string
	Title       string
	Description *string
	ReleaseYear *int
	Director    *string
	Producer    *string
	ExternalID  *string
}

// Overwrite copies the descriptive fields of src into f, leaving ID and
// ExternalID untouched. It reports whether any field changed.
func (f *Film) Overwrite(src Film) bool {
	changed := f.Title != src.Title ||
		!equalString(f.Description, src.Description) ||
		!equalInt(f.ReleaseYear, src.ReleaseYear) ||
		!equalString(f.Director, src.Director) ||
		!equalString(f.Producer, src.Producer)

	f.Title = src.Title
	f.Description = src.Description
	f.ReleaseYear = src.ReleaseYear
	f.Director = src.Director
	f.Producer = src.Producer

	return changed
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
