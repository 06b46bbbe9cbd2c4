package model

// transitionMap lists the statuses an appointment may move away from for each
// action. Cancelled and completed are terminal.
var transitionMap = map[string][]string{
	"confirm":  {StatusBooked},
	"cancel":   {StatusBooked, StatusConfirmed},
	"complete": {StatusConfirmed},
}

func ValidTransition(action, fromStatus string) bool {
	allowed, ok := transitionMap[action]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == fromStatus {
			return true
		}
	}
	return false
}
