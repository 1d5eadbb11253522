package ws

// RoomDirectory indexes which connections are subscribed to each room id.
// A room id is either a user id (user-directed notifications) or a chat id
// (chat broadcasts), so fan-out costs O(room size) instead of a scan over
// every connection.
//
// Not safe for concurrent use; the relay loop is the only caller.
type RoomDirectory struct {
	rooms  map[string]map[*Client]struct{}
	byConn map[*Client]map[string]struct{}
}

func NewRoomDirectory() *RoomDirectory {
	return &RoomDirectory{
		rooms:  make(map[string]map[*Client]struct{}),
		byConn: make(map[*Client]map[string]struct{}),
	}
}

// Subscribe adds the connection to the room's member set. Idempotent.
func (d *RoomDirectory) Subscribe(c *Client, roomID string) {
	if _, ok := d.rooms[roomID]; !ok {
		d.rooms[roomID] = make(map[*Client]struct{})
	}
	d.rooms[roomID][c] = struct{}{}

	if _, ok := d.byConn[c]; !ok {
		d.byConn[c] = make(map[string]struct{})
	}
	d.byConn[c][roomID] = struct{}{}
}

// UnsubscribeAll removes the connection from every room it is in. Called on
// disconnect so stale subscriptions never accumulate.
func (d *RoomDirectory) UnsubscribeAll(c *Client) {
	for roomID := range d.byConn[c] {
		members := d.rooms[roomID]
		delete(members, c)
		if len(members) == 0 {
			delete(d.rooms, roomID)
		}
	}
	delete(d.byConn, c)
}

// MembersOf returns the connections subscribed to the room. An unknown room
// yields an empty set.
func (d *RoomDirectory) MembersOf(roomID string) []*Client {
	members := d.rooms[roomID]
	if len(members) == 0 {
		return nil
	}
	out := make([]*Client, 0, len(members))
	for c := range members {
		out = append(out, c)
	}
	return out
}
