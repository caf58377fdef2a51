package occupancy

import "strings"

// Labels holds the words used when occupants are rendered as text.
type Labels struct {
	Caregiver string
	Vacant    string
}

// DefaultLabels are the English labels.
var DefaultLabels = Labels{Caregiver: "Caregiver", Vacant: "—"}

// Label renders one occupant: "Name (Caregiver)" for a named caregiver, the
// bare caregiver word for an unnamed one, and "Name (history)" for patients.
func Label(o Occupant, l Labels) string {
	name := strings.TrimSpace(o.Name)
	var b strings.Builder
	switch {
	case name != "":
		b.WriteString(name)
		if o.Role == RoleCaregiver {
			b.WriteString(" (" + l.Caregiver + ")")
		}
	case o.Role == RoleCaregiver:
		b.WriteString(l.Caregiver)
	}
	if o.HistoryNumber != "" {
		b.WriteString(" (" + o.HistoryNumber + ")")
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		return s
	}
	return l.Vacant
}

// RenderOccupants joins occupant labels with newlines, or returns the vacant
// placeholder for an empty ward.
func RenderOccupants(list []Occupant, l Labels) string {
	if len(list) == 0 {
		return l.Vacant
	}
	lines := make([]string, len(list))
	for i, o := range list {
		lines[i] = Label(o, l)
	}
	return strings.Join(lines, "\n")
}
