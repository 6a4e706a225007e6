package models

// ContactRequest is the JSON body posted by the portfolio contact form.
// Fields are unvalidated; absent fields decode as empty strings.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ContactSubmission is a contact request that passed validation. It lives for
// a single request and is never persisted.
type ContactSubmission struct {
	Name    string
	Email   string
	Message string
}

// ChannelResult reports whether one notification channel delivered a submission.
type ChannelResult struct {
	Channel   string `json:"channel"`
	Delivered bool   `json:"delivered"`
}

// ContactOutcome is the aggregate result of relaying a submission.
type ContactOutcome struct {
	Delivered bool
	Channels  []ChannelResult
}

// ContactResponse is returned to the submitter on success
type ContactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse is returned on every non-2xx path that has a body
type ErrorResponse struct {
	Error string `json:"error"`
}
