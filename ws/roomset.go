package ws

import "sync"

type roomSet struct {
	rooms map[int64]*Room
	mu    sync.RWMutex
}

func newRoomSet() *roomSet {
	return &roomSet{rooms: make(map[int64]*Room)}
}

func (rs *roomSet) get(gameID int64) *Room {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	room, exists := rs.rooms[gameID]
	if !exists {
		room = NewRoom(gameID)
		rs.rooms[gameID] = room
	}
	return room
}
