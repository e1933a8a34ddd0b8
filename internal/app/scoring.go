package app

// Fixed point schedule.
const (
	CorrectPoint   = 5
	IncorrectPoint = 2
)

// Score converts a session's counts into earned points. The result may be
// negative; no floor is applied.
func Score(correct, incorrect int) int64 {
	return int64(correct)*CorrectPoint - int64(incorrect)*IncorrectPoint
}

// Reconcile adds a session's earned points to the authoritative prior total.
func Reconcile(prior, earned int64) int64 {
	return prior + earned
}
