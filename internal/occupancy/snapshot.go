package occupancy

import (
	"sort"
	"time"

	"ward-census/internal/datetime"
	"ward-census/internal/domain"
)

// Role 床位占用者角色
type Role string

const (
	RolePatient   Role = "patient"
	RoleCaregiver Role = "caregiver"
)

// Occupant 某一时刻占用病房的人员
type Occupant struct {
	Name          string `json:"name"`       // caregiver names may be empty
	HistoryNumber string `json:"hist_number"` // empty for caregivers
	Role          Role   `json:"role"`
}

// Options tunes presence rules.
type Options struct {
	// InclusiveDischarge keeps a patient whose discharge equals the reference
	// instant. By default a stay covers [arrival, discharge).
	InclusiveDischarge bool
}

// Snapshot 病房占用快照
type Snapshot struct {
	At        time.Time             `json:"-"`
	Occupants map[string][]Occupant `json:"occupants"` // ward id -> occupants in record order
}

// Build computes who occupies each ward at the instant at. Every ward in
// wards gets an entry, empty when vacant. Records are visited in the order
// given.
//
// A record whose arrival is unparsable or later than at contributes nothing,
// its caregiver included. Otherwise the patient and caregiver are judged
// separately: a discharged patient's caregiver may still be present.
func Build(records []*domain.AdmissionRecord, wards []*domain.Ward, at time.Time, opts Options) *Snapshot {
	snap := &Snapshot{At: at, Occupants: make(map[string][]Occupant, len(wards))}
	for _, w := range wards {
		snap.Occupants[w.WardID] = []Occupant{}
	}

	for _, r := range records {
		arrival, ok := datetime.Combine(r.ArrivalDate, r.ArrivalTime)
		if !ok || arrival.After(at) {
			continue
		}

		if r.WardID != nil && patientPresent(r, at, opts) {
			snap.Occupants[*r.WardID] = append(snap.Occupants[*r.WardID], Occupant{
				Name:          r.FullName(),
				HistoryNumber: r.HistoryNumber,
				Role:          RolePatient,
			})
		}

		if r.Caregiver == nil {
			continue
		}
		wardID := r.Caregiver.WardID
		if wardID == nil {
			wardID = r.WardID
		}
		if wardID == nil || !caregiverPresent(r.Caregiver, at) {
			continue
		}
		if list, known := snap.Occupants[*wardID]; known {
			snap.Occupants[*wardID] = append(list, Occupant{
				Name: r.Caregiver.FullName,
				Role: RoleCaregiver,
			})
		}
	}
	return snap
}

func patientPresent(r *domain.AdmissionRecord, at time.Time, opts Options) bool {
	if r.Discharge == nil {
		return true
	}
	discharge, ok := datetime.ParseInstant(*r.Discharge)
	if !ok {
		return true
	}
	if opts.InclusiveDischarge {
		return !discharge.Before(at)
	}
	return discharge.After(at)
}

// Caregiver dates carry no time of day; each counts from midnight.
func caregiverPresent(c *domain.Caregiver, at time.Time) bool {
	if c.ArrivalDate != nil {
		if arrival, ok := datetime.Combine(*c.ArrivalDate, ""); ok && arrival.After(at) {
			return false
		}
	}
	if c.DepartureDate != nil {
		if departure, ok := datetime.Combine(*c.DepartureDate, ""); ok && departure.Before(at) {
			return false
		}
	}
	return true
}

// WardOccupants pairs a ward with its occupants.
type WardOccupants struct {
	Ward      *domain.Ward
	Occupants []Occupant
}

// BlockView is one block of the presentation, in ward sort order.
type BlockView struct {
	Block domain.Block
	Wards []WardOccupants
}

// Blocks groups wards into the fixed block order A, B, C, D, R. Every block
// is listed even when it has no wards; wards of any other block are left out.
func (s *Snapshot) Blocks(wards []*domain.Ward) []BlockView {
	sorted := make([]*domain.Ward, len(wards))
	copy(sorted, wards)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SortOrder < sorted[j].SortOrder
	})

	views := make([]BlockView, len(domain.BlockOrder))
	index := make(map[domain.Block]int, len(domain.BlockOrder))
	for i, b := range domain.BlockOrder {
		views[i] = BlockView{Block: b, Wards: []WardOccupants{}}
		index[b] = i
	}
	for _, w := range sorted {
		i, ok := index[w.Block]
		if !ok {
			continue
		}
		occ := s.Occupants[w.WardID]
		if occ == nil {
			occ = []Occupant{}
		}
		views[i].Wards = append(views[i].Wards, WardOccupants{Ward: w, Occupants: occ})
	}
	return views
}

// Count returns the number of occupants across all wards.
func (s *Snapshot) Count() (patients, caregivers int) {
	for _, list := range s.Occupants {
		for _, o := range list {
			if o.Role == RoleCaregiver {
				caregivers++
			} else {
				patients++
			}
		}
	}
	return patients, caregivers
}
