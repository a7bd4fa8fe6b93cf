package domain

import "time"

// SignupStep is a stage of the onboarding sequence.
type SignupStep int

const (
	StepCredentials SignupStep = iota + 1
	StepVerifyEmail
	StepAbout
	StepSamples
	StepReview
)

const (
	VerificationCodeTTL = 10 * time.Minute
	// VerifiedSessionTTL bounds how long a verified email may wait for registration.
	VerifiedSessionTTL = 30 * time.Minute
	MaxVerifyAttempts  = 5
)

var stepNames = map[SignupStep]string{
	StepCredentials: "credentials",
	StepVerifyEmail: "verify_email",
	StepAbout:       "about",
	StepSamples:     "samples",
	StepReview:      "review",
}

func (s SignupStep) String() string {
	if n, ok := stepNames[s]; ok {
		return n
	}
	return "unknown"
}

// Next returns the following step; StepReview is final.
func (s SignupStep) Next() SignupStep {
	if s >= StepReview {
		return StepReview
	}
	return s + 1
}

// Verified reports whether the email step has been passed.
func (s SignupStep) Verified() bool {
	return s > StepVerifyEmail
}

// SignupSession is the server-side state of one in-progress signup.
type SignupSession struct {
	Email     string     `json:"email"`
	Code      string     `json:"code"`
	Step      SignupStep `json:"step"`
	Attempts  int        `json:"attempts"`
	CreatedAt time.Time  `json:"created_at"`
}
