package services

// LockoutDecision is the outcome of applying the lockout policy to a single
// login attempt.
type LockoutDecision struct {
	NextCount   int
	LockAccount bool
}

// LockoutPolicy decides how an account's failed-attempt counter evolves.
// It is pure: no I/O, deterministic, total over non-negative counts.
type LockoutPolicy struct {
	Threshold int // positive; number of consecutive failures that disables the account
}

// OnFailedAttempt returns the next counter value for a wrong-password attempt
// and whether the account must be locked atomically with that increment.
func (p LockoutPolicy) OnFailedAttempt(currentCount int) LockoutDecision {
	next := currentCount + 1
	return LockoutDecision{
		NextCount:   next,
		LockAccount: next >= p.Threshold,
	}
}

// OnSuccess resets the counter; locking never happens on success.
func (p LockoutPolicy) OnSuccess() LockoutDecision {
	return LockoutDecision{NextCount: 0, LockAccount: false}
}
