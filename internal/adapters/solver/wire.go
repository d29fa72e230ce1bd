package solver

import (
	"go.trai.ch/pixi/internal/core/domain"
)

// record is the wire form of a locked record. A non-empty source marks a source record.
type record struct {
	domain.BinaryRecord

	Source    string `json:"source,omitempty"`
	InputHash string `json:"input_hash,omitempty"`
}

func encodeRecord(r domain.LockedRecord) record {
	switch rec := r.(type) {
	case *domain.BinaryRecord:
		return record{BinaryRecord: *rec}
	case *domain.SourceRecord:
		return record{
			BinaryRecord: domain.BinaryRecord{
				Name:      rec.Name,
				Version:   rec.Version,
				Subdir:    rec.Subdir,
				Depends:   rec.Depends,
				PurlNames: rec.PurlNames,
			},
			Source:    rec.Source,
			InputHash: rec.InputHash,
		}
	default:
		return record{}
	}
}

func encodeRecords(records []domain.LockedRecord) []record {
	out := make([]record, len(records))
	for i, r := range records {
		out[i] = encodeRecord(r)
	}
	return out
}

func (r record) decode() domain.LockedRecord {
	if r.Source == "" {
		rec := r.BinaryRecord
		return &rec
	}
	return &domain.SourceRecord{
		Name:      r.Name,
		Version:   r.Version,
		Subdir:    r.Subdir,
		Source:    r.Source,
		Depends:   r.Depends,
		InputHash: r.InputHash,
		PurlNames: r.PurlNames,
	}
}

// wheel is the wire form of a locked wheel with its activated extras.
type wheel struct {
	Name           domain.PackageName   `json:"name"`
	Version        string               `json:"version"`
	Location       string               `json:"location"`
	Hash           string               `json:"hash,omitempty"`
	RequiresDist   []string             `json:"requires_dist,omitempty"`
	RequiresPython string               `json:"requires_python,omitempty"`
	Editable       bool                 `json:"editable,omitempty"`
	Extras         []domain.PackageName `json:"extras,omitempty"`
}

func encodeWheels(wheels []domain.LockedWheel) []wheel {
	out := make([]wheel, len(wheels))
	for i, w := range wheels {
		out[i] = wheel{
			Name:           w.Package.Name,
			Version:        w.Package.Version,
			Location:       w.Package.Location,
			Hash:           w.Package.Hash,
			RequiresDist:   w.Package.RequiresDist,
			RequiresPython: w.Package.RequiresPython,
			Editable:       w.Package.Editable,
			Extras:         w.Env.Extras,
		}
	}
	return out
}

func (w wheel) decode() domain.LockedWheel {
	return domain.LockedWheel{
		Package: domain.WheelPackageData{
			Name:           w.Name,
			Version:        w.Version,
			Location:       w.Location,
			Hash:           w.Hash,
			RequiresDist:   w.RequiresDist,
			RequiresPython: w.RequiresPython,
			Editable:       w.Editable,
		},
		Env: domain.WheelEnvironmentData{Extras: w.Extras},
	}
}
