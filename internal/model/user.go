package model

import "time"

// User represents a member of the group as stored in the `users`
// table.  PinHash is only populated by lookups that need to verify
// the PIN gate; directory listings leave it empty.
//
// Fields:
//
//	ID          – primary key identifier of the user.
//	Name        – unique display name.
//	Avatar      – short avatar text or URL, may be empty.
//	ChatEnabled – whether the member may use the group chat.
//	PinHash     – bcrypt hash of the member's PIN.
//	CreatedAt   – timestamp of creation.
type User struct {
	ID          uint64    // users.id
	Name        string    // users.name
	Avatar      string    // users.avatar
	ChatEnabled bool      // users.chat_enabled
	PinHash     string    // users.pin_hash
	CreatedAt   time.Time // users.created_at
}
