package auth

// Result is the uniform envelope returned by every public flow. Expected
// failures (wrong password, expired code, duplicate account, ...) set Err to
// one of the package sentinels rather than escaping as Go errors; Message is
// safe to render to an end user; Data carries flow output such as the email
// to redirect to after an ErrEmailNotVerified login.
//
// In development mode, Data additionally carries the generated verification
// code and reset token/code that a production deployment would only hand to
// the notification collaborator.
type Result struct {
	Success bool
	Message string
	Err     error
	Data    map[string]string
}

// Failed reports whether the flow ended on an error branch.
func (r Result) Failed() bool {
	return !r.Success
}

func okResult(message string) Result {
	return Result{Success: true, Message: message}
}

func okResultData(message string, data map[string]string) Result {
	return Result{Success: true, Message: message, Data: data}
}

func failResult(err error, message string) Result {
	return Result{Success: false, Message: message, Err: err}
}

func failResultData(err error, message string, data map[string]string) Result {
	return Result{Success: false, Message: message, Err: err, Data: data}
}
