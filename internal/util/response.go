package util

type Envelope map[string]any

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

func Error(message string) Envelope {
	return Envelope{"status": StatusError, "message": message}
}

// Fail is the envelope for client errors.
func Fail(message string) Envelope {
	return Envelope{"status": StatusFail, "message": message}
}

func Data(key string, value any) Envelope {
	return Envelope{"status": StatusSuccess, "data": Envelope{key: value}}
}

// List adds a results count next to the data.
func List(key string, value any, results int) Envelope {
	env := Data(key, value)
	env["results"] = results
	return env
}

// WithToken is the login/signup shape: status, token and the user.
func WithToken(token string, key string, value any) Envelope {
	env := Data(key, value)
	env["token"] = token
	return env
}
