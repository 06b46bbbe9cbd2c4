package availability

import (
	"time"

	"github.com/slotline/slotline/internal/model"
)

// Overlaps is the half-open interval test: [aStart,aEnd) overlaps [bStart,bEnd)
// iff aStart < bEnd && bStart < aEnd.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// StaffScopeConflicts reports whether two appointments compete for capacity.
// Two different named staff members can serve in parallel; an unstaffed
// appointment consumes the business's shared capacity and so conflicts with
// everything.
func StaffScopeConflicts(candidateStaff, existingStaff string) bool {
	if candidateStaff != "" && existingStaff != "" && candidateStaff != existingStaff {
		return false
	}
	return true
}

// ConflictsAny reports whether the candidate range conflicts with any
// appointment that still occupies its slot, under staff scoping.
func ConflictsAny(start, end time.Time, staffID string, existing []model.Appointment) bool {
	for _, appt := range existing {
		if !appt.Occupies() {
			continue
		}
		if !StaffScopeConflicts(staffID, appt.StaffID) {
			continue
		}
		if Overlaps(start, end, appt.StartAt, appt.EndAt) {
			return true
		}
	}
	return false
}
