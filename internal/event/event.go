package event

import "time"

type Type string

const (
	TypeLogin    Type = "auth.login"
	TypeRegister Type = "auth.register"
	TypeLogout   Type = "auth.logout"
)

// TypeFor maps a metrics event kind such as "login" to its bus type.
func TypeFor(kind string) Type {
	switch kind {
	case "login":
		return TypeLogin
	case "register":
		return TypeRegister
	case "logout":
		return TypeLogout
	default:
		return Type("auth." + kind)
	}
}

// Event is an authentication attempt as seen by the API.
type Event struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Outcome   string    `json:"outcome"`
	Timestamp time.Time `json:"timestamp"`
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func()) // Returns channel and unsubscribe function
}
