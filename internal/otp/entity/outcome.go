package entity

// Block names the condition that denied an admission.
type Block string

const (
	BlockNone     Block = ""
	BlockLock     Block = "lock"
	BlockSpamLock Block = "spam_lock"
	BlockCooldown Block = "cooldown"
)

// Admission is the result of the rate-limit gate.
type Admission struct {
	Admitted bool
	Block    Block
	Reason   string
}

// TrackOutcome is the result of counting a request.
type TrackOutcome struct {
	Allowed bool
	// Escalated is true only for the call that set the spam-lock.
	Escalated bool
	Count     int64
}

// IssueOutcome reports whether the code reached the sender.
type IssueOutcome struct {
	Sent       bool
	RolledBack bool
}

type VerifyResult int

const (
	VerifyResultInvalid VerifyResult = iota
	VerifyResultVerified
	VerifyResultLockedOut
)

func (v VerifyResult) String() string {
	switch v {
	case VerifyResultVerified:
		return "verified"
	case VerifyResultLockedOut:
		return "locked_out"
	default:
		return "invalid"
	}
}

type VerifyOutcome struct {
	Result VerifyResult
	// Reason is set for VerifyResultInvalid.
	Reason    string
	TriesLeft int64
}

// Notification is what the sender delivers to an identity.
type Notification struct {
	Address    string
	Name       string
	Subject    string
	TemplateID string
	Data       map[string]any
}
