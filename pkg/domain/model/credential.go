package model

// Credential is a capability token for one remote service. It is acquired by
// the caller before a run and discarded after it.
type Credential struct {
	Token string `masq:"secret"`
}

// IsEmpty reports whether no token was supplied
func (c Credential) IsEmpty() bool {
	return c.Token == ""
}
