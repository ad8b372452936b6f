package diff

import "github.com/everstacklabs/apidiff/internal/model"

// Summary counts changes per type.
type Summary struct {
	Added    int
	Modified int
	Removed  int
	Files    int
}

// Summarize tallies changes and file changes.
func Summarize(changes []model.Change, files []model.FileChange) Summary {
	s := Summary{Files: len(files)}
	for _, c := range changes {
		switch c.Type {
		case model.Added:
			s.Added++
		case model.Modified:
			s.Modified++
		case model.Removed:
			s.Removed++
		}
	}
	return s
}

// HasChanges reports whether anything changed, API or files.
func (s Summary) HasChanges() bool {
	return s.HasAPIChanges() || s.Files > 0
}

// HasAPIChanges reports whether any declaration changed.
func (s Summary) HasAPIChanges() bool {
	return s.Added+s.Modified+s.Removed > 0
}
