package domain

import "time"

// Roles a user account can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Question is a multiple-choice question as stored by the authoring flow.
// Records read back from a store may be malformed; the quiz engine filters them.
type Question struct {
	ID            int64  `json:"id"`
	Topic         string `json:"topic"`
	Text          string `json:"text"`
	OptionA       string `json:"optionA"`
	OptionB       string `json:"optionB"`
	OptionC       string `json:"optionC"`
	OptionD       string `json:"optionD"`
	CorrectAnswer string `json:"correctAnswer"`
}

// Options returns the four options in authoring order (A-D).
func (q Question) Options() [4]string {
	return [4]string{q.OptionA, q.OptionB, q.OptionC, q.OptionD}
}

// AttemptRecord is the immutable outcome of one completed quiz session.
// Timestamp (epoch millis) is the record identity.
type AttemptRecord struct {
	Timestamp     int64  `json:"timestamp"`
	Topic         string `json:"topic"`
	Correct       int    `json:"correct"`
	Incorrect     int    `json:"incorrect"`
	Earned        int64  `json:"earned"`
	Email         string `json:"email"`
	OverallPoints int64  `json:"overallPoints"`
}

// CreatedAt converts the record identity back to a time.
func (a AttemptRecord) CreatedAt() time.Time {
	return time.UnixMilli(a.Timestamp)
}

// LeaderboardEntry is the denormalized projection of a user's cumulative points.
type LeaderboardEntry struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	TotalPoints int64  `json:"totalPoints"`
	LastUpdated int64  `json:"lastUpdated"`
}

// PointsTotal is the authoritative cumulative total for one user.
type PointsTotal struct {
	Email string
	Total int64
	// LastAttempt is the stamp of the attempt that reached Total.
	LastAttempt int64
}

// User is a player or administrator account. Email is the identity.
type User struct {
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsAdmin reports whether the account may author questions.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// TopicSummary reports how many questions exist for a topic.
type TopicSummary struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}
