package domain

import "time"

// DispatchAttempt records one delivery attempt of a scheduled post during a sweep.
type DispatchAttempt struct {
	PostID         string    `json:"post_id" bson:"post_id"`
	AccountID      string    `json:"account_id" bson:"account_id"`
	SweepID        string    `json:"sweep_id" bson:"sweep_id"`
	Success        bool      `json:"success" bson:"success"`
	Error          string    `json:"error,omitempty" bson:"error,omitempty"`
	ExternalPostID string    `json:"external_post_id,omitempty" bson:"external_post_id,omitempty"`
	AttemptedAt    time.Time `json:"attempted_at" bson:"attempted_at"`
}

// Dispatch failure messages reported per post.
const (
	DispatchErrNoConnection  = "No Twitter connection"
	DispatchErrRefreshFailed = "Token refresh failed"
)
