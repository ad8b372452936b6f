package diff

import "github.com/everstacklabs/apidiff/internal/model"

// CompareFiles returns files whose checksum changed between snapshots but
// that no API change points at, sorted by path. These are internal edits:
// bodies, private members, comments.
func CompareFiles(before, after *model.Snapshot, changes []model.Change) []model.FileChange {
	if before == nil || after == nil {
		return nil
	}

	touched := make(map[string]bool)
	for _, c := range changes {
		if c.Element != nil && c.Element.SourceFile() != "" {
			touched[c.Element.SourceFile()] = true
		}
		if c.Old != nil && c.Old.SourceFile() != "" {
			touched[c.Old.SourceFile()] = true
		}
	}

	var files []model.FileChange
	for _, path := range after.Paths() {
		newSum := after.Files[path]
		oldSum, ok := before.Files[path]
		if !ok || oldSum == newSum || touched[path] {
			continue
		}
		files = append(files, model.FileChange{Path: path, OldChecksum: oldSum, NewChecksum: newSum})
	}
	return files
}
