// Package session implements the per-browser-session credential store and
// its persistence through a store.SessionStore backend.
package session

import (
	"errors"
	"fmt"
	"maps"
	"sync"
)

// Field names a credential stored in the session.
type Field string

// Session fields. The string values are the persisted keys.
const (
	FieldClientID     Field = "CLIENT_ID"
	FieldClientSecret Field = "CLIENT_SECRET"
	FieldAccessToken  Field = "ACCESS_TOKEN"
	FieldRefreshToken Field = "REFRESH_TOKEN"
	FieldUserID       Field = "ML_USER_ID"
)

// Fields lists every credential-related field in check order.
var Fields = []Field{
	FieldClientID,
	FieldClientSecret,
	FieldAccessToken,
	FieldRefreshToken,
	FieldUserID,
}

// ErrMissingCredential matches every *MissingCredentialError via errors.Is.
var ErrMissingCredential = errors.New("missing credential")

// MissingCredentialError reports a read of an absent session field.
type MissingCredentialError struct {
	Field Field
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("missing credential %s", e.Field)
}

// Is makes errors.Is(err, ErrMissingCredential) true.
func (*MissingCredentialError) Is(target error) bool {
	return target == ErrMissingCredential
}

// Credentials is the credential store of one browser session. It is safe for
// concurrent use, although a session is normally touched by one request at a
// time.
type Credentials struct {
	id string

	mu      sync.Mutex
	values  map[Field]string
	isNew   bool
	dirty   bool
	cleared bool
}

// NewCredentials returns an empty, unsaved store for session id.
func NewCredentials(id string) *Credentials {
	return &Credentials{
		id:     id,
		values: make(map[Field]string),
		isNew:  true,
	}
}

// restore rebuilds a store from persisted values.
func restore(id string, raw map[string]string) *Credentials {
	c := &Credentials{id: id, values: make(map[Field]string, len(raw))}
	for k, v := range raw {
		c.values[Field(k)] = v
	}
	return c
}

// ID returns the session id.
func (c *Credentials) ID() string {
	return c.id
}

// Set stores value under field. An empty value removes the field.
func (c *Credentials) Set(field Field, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if value == "" {
		delete(c.values, field)
	} else {
		c.values[field] = value
	}
	c.dirty = true
	c.cleared = false
}

// Get returns the value of field or a *MissingCredentialError.
func (c *Credentials) Get(field Field) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.values[field]
	if !ok || v == "" {
		return "", &MissingCredentialError{Field: field}
	}
	return v, nil
}

// Has reports whether field is present.
func (c *Credentials) Has(field Field) bool {
	_, err := c.Get(field)
	return err == nil
}

// Clear removes every credential field in one step. Calling it on an already
// empty store is a no-op apart from marking the session for deletion.
func (c *Credentials) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.values = make(map[Field]string)
	c.dirty = true
	c.cleared = true
}

// snapshot returns the persisted representation and the pending flags.
func (c *Credentials) snapshot() (values map[string]string, dirty, cleared bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	values = make(map[string]string, len(c.values))
	for k, v := range c.values {
		values[string(k)] = v
	}
	return values, c.dirty, c.cleared
}

func (c *Credentials) markSaved() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirty = false
	c.isNew = false
}

// IsNew reports whether the session was created by the current request.
func (c *Credentials) IsNew() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isNew
}

// Values returns a copy of the stored fields.
func (c *Credentials) Values() map[Field]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.values)
}
