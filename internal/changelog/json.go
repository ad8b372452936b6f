package changelog

import (
	"encoding/json"

	"github.com/everstacklabs/apidiff/internal/model"
)

// Report is the machine readable form of an analysis.
type Report struct {
	CurrentVersion     string         `json:"currentVersion"`
	RecommendedVersion string         `json:"recommendedVersion"`
	Severity           model.Severity `json:"severity"`
	Changes            []ReportChange `json:"changes"`
	FileChanges        []ReportFile   `json:"fileChanges"`
}

// ReportChange is one API change in a Report.
type ReportChange struct {
	Type        model.ChangeType `json:"type"`
	Severity    model.Severity   `json:"severity"`
	Description string           `json:"description"`
	Element     ReportElement    `json:"element"`
	Internal    bool             `json:"internal"`
}

// ReportElement identifies the changed declaration.
type ReportElement struct {
	Type      model.Kind `json:"type"`
	Name      string     `json:"name"`
	Namespace string     `json:"namespace"`
	FQN       string     `json:"fqn"`
}

// ReportFile is a file with internal changes only.
type ReportFile struct {
	Path        string `json:"path"`
	OldChecksum string `json:"oldChecksum"`
	NewChecksum string `json:"newChecksum"`
}

// NewReport assembles a Report. Changes without an element are skipped.
func NewReport(currentVersion, recommendedVersion string, severity model.Severity, changes []model.Change, files []model.FileChange) Report {
	r := Report{
		CurrentVersion:     currentVersion,
		RecommendedVersion: recommendedVersion,
		Severity:           severity,
		Changes:            make([]ReportChange, 0, len(changes)),
		FileChanges:        make([]ReportFile, 0, len(files)),
	}
	for _, c := range changes {
		if c.Element == nil {
			continue
		}
		d := c.Element.Declaration()
		r.Changes = append(r.Changes, ReportChange{
			Type:        c.Type,
			Severity:    c.Severity,
			Description: c.Description,
			Element: ReportElement{
				Type:      c.Element.Kind(),
				Name:      d.Name,
				Namespace: d.Namespace,
				FQN:       c.Element.FullyQualifiedName(),
			},
			Internal: c.Element.IsInternal(),
		})
	}
	for _, f := range files {
		r.FileChanges = append(r.FileChanges, ReportFile{Path: f.Path, OldChecksum: f.OldChecksum, NewChecksum: f.NewChecksum})
	}
	return r
}

// JSON encodes the report with two-space indentation and a trailing newline.
func (r Report) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
