package ws

// ConnectionRegistry tracks which user identity owns each connection. A
// connection is anonymous until it identifies itself via join-user. Binding
// is last-write-wins per connection, not per user: the same user id may be
// bound to several concurrent connections (multi-device).
//
// Not safe for concurrent use; the relay loop is the only caller.
type ConnectionRegistry struct {
	users map[*Client]string
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{users: make(map[*Client]string)}
}

func (r *ConnectionRegistry) Bind(c *Client, userID string) {
	r.users[c] = userID
}

func (r *ConnectionRegistry) UserIDOf(c *Client) (string, bool) {
	userID, ok := r.users[c]
	return userID, ok
}

func (r *ConnectionRegistry) Remove(c *Client) {
	delete(r.users, c)
}
