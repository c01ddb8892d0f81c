package models

// Payout is a single settlement record as returned by the commerce API.
// Amounts stay decimal strings end to end; parsing them into floats would
// lose cents.
type Payout struct {
	ID                *string `json:"id,omitempty"`
	Amount            string  `json:"amount"`
	Currency          string  `json:"currency"`
	Status            string  `json:"status"`
	CreatedAt         string  `json:"created_at"`
	ProcessedAt       *string `json:"processed_at,omitempty"`
	PaymentProcessor  string  `json:"payment_processor"`
	BankAccountVisual *string `json:"bank_account_visual,omitempty"`
	PaypalEmail       *string `json:"paypal_email,omitempty"`
}

// Payout statuses observed upstream. The set is open ended; unrecognized
// values pass through untouched. At most one payout per account is expected
// to be "payable" at a time, enforced upstream.
const (
	StatusCompleted  = "completed"
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusPayable    = "payable"
	StatusFailed     = "failed"
)

// User is the account profile of the creator the credential belongs to.
type User struct {
	UserID        string  `json:"user_id"`
	Name          string  `json:"name"`
	Bio           *string `json:"bio,omitempty"`
	TwitterHandle *string `json:"twitter_handle,omitempty"`
	Email         *string `json:"email,omitempty"`
	URL           *string `json:"url,omitempty"`
}

// Remote API envelopes. Every response carries a success flag; error
// bodies carry an optional message instead of the payload.

type PayoutsResponse struct {
	Success     bool     `json:"success"`
	Payouts     []Payout `json:"payouts"`
	NextPageURL *string  `json:"next_page_url,omitempty"`
	NextPageKey *string  `json:"next_page_key,omitempty"`
}

type PayoutDetailResponse struct {
	Success bool   `json:"success"`
	Payout  Payout `json:"payout"`
}

type UserResponse struct {
	Success bool `json:"success"`
	User    User `json:"user"`
}

type ErrorResponse struct {
	Success bool    `json:"success"`
	Message *string `json:"message,omitempty"`
}
