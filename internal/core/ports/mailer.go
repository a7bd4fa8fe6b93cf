package ports

import "context"

// Mailer sends transactional email.
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, code string) error
}
