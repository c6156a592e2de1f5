package catalog

import "strings"

const (
	ModalityInPerson = "in-person"
	ModalityOnline   = "online"
	ModalityHybrid   = "hybrid"
)

// Modality derives the section-level modality from its meetings. A section
// meeting partly online and partly in person is hybrid even if no meeting
// is literally tagged "hybrid". Returns "" when no meeting carries a
// format.
func (s Section) Modality() string {
	formats := map[string]struct{}{}
	for _, m := range s.Meetings {
		if m.Format == "" {
			continue
		}
		formats[strings.ToLower(m.Format)] = struct{}{}
	}

	_, hasHybrid := formats[ModalityHybrid]
	if hasHybrid || len(formats) > 1 {
		return ModalityHybrid
	}
	if _, ok := formats[ModalityInPerson]; ok {
		return ModalityInPerson
	}
	if _, ok := formats[ModalityOnline]; ok {
		return ModalityOnline
	}
	return ""
}
