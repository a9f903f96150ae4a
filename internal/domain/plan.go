package domain

// PlanTrial is the metered default for users without a paid subscription.
const PlanTrial = "trial"

// IsPaidPlan reports whether a plan ID belongs to the paid (unlimited) tiers.
//
// Anything not on this allow-list, including an empty or unknown plan ID,
// is treated as a metered trial.
func IsPaidPlan(planID string) bool {
	switch planID {
	case "beginner", "pro", "fluency_plus":
		return true
	default:
		return false
	}
}
