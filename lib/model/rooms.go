package model

import "sync"

// RoomState tracks one joined chat room's membership and tickers,
// supplementing spec.md (the wire messages JoinRoom/RoomList are in scope;
// the client-side bookkeeping is not, but the original's tui/app.rs and
// server.rs maintain it, so we carry it here).
type RoomState struct {
	Name      string
	Users     []string
	Owner     string
	Operators []string
	Tickers   map[string]string // username -> ticker text
}

// RoomSet is the coordinator's joined-room table.
type RoomSet struct {
	mu    sync.Mutex
	rooms map[string]*RoomState
}

func NewRoomSet() *RoomSet {
	return &RoomSet{rooms: make(map[string]*RoomState)}
}

func (s *RoomSet) Join(name string, users []string, owner string) *RoomState {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &RoomState{Name: name, Users: users, Owner: owner, Tickers: make(map[string]string)}
	s.rooms[name] = r
	return r
}

func (s *RoomSet) Leave(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, name)
}

func (s *RoomSet) Get(name string) (*RoomState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[name]
	return r, ok
}

func (s *RoomSet) UserJoined(room, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[room]
	if !ok {
		return
	}
	for _, u := range r.Users {
		if u == username {
			return
		}
	}
	r.Users = append(r.Users, username)
}

func (s *RoomSet) UserLeft(room, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[room]
	if !ok {
		return
	}
	for i, u := range r.Users {
		if u == username {
			r.Users = append(r.Users[:i], r.Users[i+1:]...)
			return
		}
	}
}

// Watchlist tracks usernames the client has asked the server to notify it
// about (WatchUser), along with the most recently reported status.
type Watchlist struct {
	mu     sync.Mutex
	status map[string]uint32
}

func NewWatchlist() *Watchlist {
	return &Watchlist{status: make(map[string]uint32)}
}

func (w *Watchlist) Watch(username string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.status[username]; !ok {
		w.status[username] = 0
	}
}

func (w *Watchlist) Unwatch(username string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.status, username)
}

func (w *Watchlist) UpdateStatus(username string, status uint32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.status[username]; ok {
		w.status[username] = status
	}
}

func (w *Watchlist) Status(username string) (uint32, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	s, ok := w.status[username]
	return s, ok
}

// PrivilegedUsers is the set of usernames the server reports as holding
// upload privileges, refreshed wholesale on each ServerPrivilegedUsers
// message.
type PrivilegedUsers struct {
	mu    sync.Mutex
	users map[string]struct{}
}

func NewPrivilegedUsers() *PrivilegedUsers {
	return &PrivilegedUsers{users: make(map[string]struct{})}
}

func (p *PrivilegedUsers) Replace(usernames []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users = make(map[string]struct{}, len(usernames))
	for _, u := range usernames {
		p.users[u] = struct{}{}
	}
}

func (p *PrivilegedUsers) IsPrivileged(username string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.users[username]
	return ok
}
