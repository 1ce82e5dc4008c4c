package protocol

import "github.com/nyatla/slsk-go/lib/wire"

// UserStats carries a user's aggregate sharing statistics.
type UserStats struct {
	AvgSpeed   uint32
	UploadNum  uint32
	Unknown    uint32
	Files      uint32
	Dirs       uint32
}

func readUserStats(r *wire.Reader) UserStats {
	return UserStats{
		AvgSpeed:  r.ReadUint32(),
		UploadNum: r.ReadUint32(),
		Unknown:   r.ReadUint32(),
		Files:     r.ReadUint32(),
		Dirs:      r.ReadUint32(),
	}
}

func writeUserStats(w *wire.Writer, s UserStats) {
	w.WriteUint32(s.AvgSpeed)
	w.WriteUint32(s.UploadNum)
	w.WriteUint32(s.Unknown)
	w.WriteUint32(s.Files)
	w.WriteUint32(s.Dirs)
}

// RoomUser is one entry of a JoinRoom response's user list.
type RoomUser struct {
	Username    string
	Status      UserStatus
	Stats       UserStats
	SlotsFull   bool
	CountryCode string
}

// PossibleParent is a candidate distributed-network parent.
type PossibleParent struct {
	Username string
	IP       [4]byte
	Port     uint32
}

// RoomTicker is one "message of the day" entry in a chat room.
type RoomTicker struct {
	Username string
	Ticker   string
}

// NamedCount pairs a name (room, interest, similar user) with a count,
// matching the (String, i32/u32) tuples the wire format repeats for
// recommendations, room lists, and similar-user listings.
type NamedCount struct {
	Name  string
	Count int32
}

// ServerRequest is a message this client can send to the server.
type ServerRequest interface {
	ServerCode() ServerCode
	writePayload(w *wire.Writer)
}

// EncodeServerRequest serializes req into a complete frame: u32 length, u32
// code, payload.
func EncodeServerRequest(req ServerRequest) []byte {
	payload := wire.NewWriter(64)
	req.writePayload(payload)

	frame := wire.NewWriter(8 + payload.Len())
	frame.WriteUint32(uint32(4 + payload.Len()))
	frame.WriteUint32(uint32(req.ServerCode()))
	return append(frame.Bytes(), payload.Bytes()...)
}

type LoginRequest struct {
	Username     string
	Password     string
	Version      uint32
	MinorVersion uint32
}

func (LoginRequest) ServerCode() ServerCode { return CodeLogin }
func (m LoginRequest) writePayload(w *wire.Writer) {
	w.WriteString(m.Username)
	w.WriteString(m.Password)
	w.WriteUint32(m.Version)
	w.WriteString(wire.LoginHash(m.Username, m.Password))
	w.WriteUint32(m.MinorVersion)
}

// SetWaitPortRequest advertises the listen port the acceptor is bound to.
// ObfuscatedPort is never set by this client (spec Non-goal: no obfuscated
// connections), so the optional trailing fields are always omitted.
type SetWaitPortRequest struct {
	Port uint32
}

func (SetWaitPortRequest) ServerCode() ServerCode { return CodeSetWaitPort }
func (m SetWaitPortRequest) writePayload(w *wire.Writer) { w.WriteUint32(m.Port) }

type GetPeerAddressRequest struct{ Username string }

func (GetPeerAddressRequest) ServerCode() ServerCode { return CodeGetPeerAddress }
func (m GetPeerAddressRequest) writePayload(w *wire.Writer) { w.WriteString(m.Username) }

type WatchUserRequest struct{ Username string }

func (WatchUserRequest) ServerCode() ServerCode { return CodeWatchUser }
func (m WatchUserRequest) writePayload(w *wire.Writer) { w.WriteString(m.Username) }

type UnwatchUserRequest struct{ Username string }

func (UnwatchUserRequest) ServerCode() ServerCode { return CodeUnwatchUser }
func (m UnwatchUserRequest) writePayload(w *wire.Writer) { w.WriteString(m.Username) }

type GetUserStatusRequest struct{ Username string }

func (GetUserStatusRequest) ServerCode() ServerCode { return CodeGetUserStatus }
func (m GetUserStatusRequest) writePayload(w *wire.Writer) { w.WriteString(m.Username) }

type SayChatroomRequest struct{ Room, Message string }

func (SayChatroomRequest) ServerCode() ServerCode { return CodeSayChatroom }
func (m SayChatroomRequest) writePayload(w *wire.Writer) {
	w.WriteString(m.Room)
	w.WriteString(m.Message)
}

type JoinRoomRequest struct {
	Room    string
	Private bool
}

func (JoinRoomRequest) ServerCode() ServerCode { return CodeJoinRoom }
func (m JoinRoomRequest) writePayload(w *wire.Writer) {
	w.WriteString(m.Room)
	w.WriteBool(m.Private)
}

type LeaveRoomRequest struct{ Room string }

func (LeaveRoomRequest) ServerCode() ServerCode { return CodeLeaveRoom }
func (m LeaveRoomRequest) writePayload(w *wire.Writer) { w.WriteString(m.Room) }

// ConnectToPeerRequest asks the server to relay an indirect connection
// attempt (the firewall-pierce path, spec.md §4.4).
type ConnectToPeerRequest struct {
	Token          uint32
	Username       string
	ConnectionType ConnectionType
}

func (ConnectToPeerRequest) ServerCode() ServerCode { return CodeConnectToPeer }
func (m ConnectToPeerRequest) writePayload(w *wire.Writer) {
	w.WriteUint32(m.Token)
	w.WriteString(m.Username)
	w.WriteString(string(m.ConnectionType))
}

type MessageUserRequest struct{ Username, Message string }

func (MessageUserRequest) ServerCode() ServerCode { return CodeMessageUser }
func (m MessageUserRequest) writePayload(w *wire.Writer) {
	w.WriteString(m.Username)
	w.WriteString(m.Message)
}

type MessageAckedRequest struct{ MessageID uint32 }

func (MessageAckedRequest) ServerCode() ServerCode { return CodeMessageAcked }
func (m MessageAckedRequest) writePayload(w *wire.Writer) { w.WriteUint32(m.MessageID) }

type FileSearchRequest struct {
	Token uint32
	Query string
}

func (FileSearchRequest) ServerCode() ServerCode { return CodeFileSearch }
func (m FileSearchRequest) writePayload(w *wire.Writer) {
	w.WriteUint32(m.Token)
	w.WriteString(m.Query)
}

type SetStatusRequest struct{ Status UserStatus }

func (SetStatusRequest) ServerCode() ServerCode { return CodeSetStatus }
func (m SetStatusRequest) writePayload(w *wire.Writer) { w.WriteInt32(int32(m.Status)) }

type ServerPingRequest struct{}

func (ServerPingRequest) ServerCode() ServerCode     { return CodeServerPing }
func (ServerPingRequest) writePayload(*wire.Writer) {}

type SharedFoldersFilesRequest struct{ Dirs, Files uint32 }

func (SharedFoldersFilesRequest) ServerCode() ServerCode { return CodeSharedFoldersFiles }
func (m SharedFoldersFilesRequest) writePayload(w *wire.Writer) {
	w.WriteUint32(m.Dirs)
	w.WriteUint32(m.Files)
}

type GetUserStatsRequest struct{ Username string }

func (GetUserStatsRequest) ServerCode() ServerCode { return CodeGetUserStats }
func (m GetUserStatsRequest) writePayload(w *wire.Writer) { w.WriteString(m.Username) }

type UserSearchRequest struct {
	Username string
	Token    uint32
	Query    string
}

func (UserSearchRequest) ServerCode() ServerCode { return CodeUserSearch }
func (m UserSearchRequest) writePayload(w *wire.Writer) {
	w.WriteString(m.Username)
	w.WriteUint32(m.Token)
	w.WriteString(m.Query)
}

type WishlistSearchRequest struct {
	Token uint32
	Query string
}

func (WishlistSearchRequest) ServerCode() ServerCode { return CodeWishlistSearch }
func (m WishlistSearchRequest) writePayload(w *wire.Writer) {
	w.WriteUint32(m.Token)
	w.WriteString(m.Query)
}

type HaveNoParentRequest struct{ NoParent bool }

func (HaveNoParentRequest) ServerCode() ServerCode { return CodeHaveNoParent }
func (m HaveNoParentRequest) writePayload(w *wire.Writer) { w.WriteBool(m.NoParent) }

type CheckPrivilegesRequest struct{}

func (CheckPrivilegesRequest) ServerCode() ServerCode    { return CodeCheckPrivileges }
func (CheckPrivilegesRequest) writePayload(*wire.Writer) {}

type AcceptChildrenRequest struct{ Accept bool }

func (AcceptChildrenRequest) ServerCode() ServerCode { return CodeAcceptChildren }
func (m AcceptChildrenRequest) writePayload(w *wire.Writer) { w.WriteBool(m.Accept) }

type RoomListRequest struct{}

func (RoomListRequest) ServerCode() ServerCode    { return CodeRoomList }
func (RoomListRequest) writePayload(*wire.Writer) {}

type CantConnectToPeerRequest struct {
	Token    uint32
	Username string
}

func (CantConnectToPeerRequest) ServerCode() ServerCode { return CodeCantConnectToPeer }
func (m CantConnectToPeerRequest) writePayload(w *wire.Writer) {
	w.WriteUint32(m.Token)
	w.WriteString(m.Username)
}

// ServerResponse is a message received from the server. Concrete types are
// named Server<Name>; an unrecognized code decodes as ServerUnknown rather
// than failing the connection (spec.md §9: unknown codes fail only the
// frame).
type ServerResponse interface {
	isServerResponse()
}

type ServerUnknown struct {
	Code    ServerCode
	Payload []byte
}

func (ServerUnknown) isServerResponse() {}

type ServerLoginSuccess struct {
	Greet        string
	OwnIP        [4]byte
	PasswordHash string
	IsSupporter  bool
}

func (ServerLoginSuccess) isServerResponse() {}

type ServerLoginFailure struct {
	Reason LoginRejectionReason
	Detail string
	HasDetail bool
}

func (ServerLoginFailure) isServerResponse() {}

type ServerGetPeerAddress struct {
	Username        string
	IP              [4]byte
	Port            uint32
	ObfuscationType ObfuscationType
	ObfuscatedPort  uint16
}

func (ServerGetPeerAddress) isServerResponse() {}

type ServerWatchUser struct {
	Username    string
	Exists      bool
	Status      UserStatus
	Stats       UserStats
	CountryCode string
	HasStatus   bool
	HasCountry  bool
}

func (ServerWatchUser) isServerResponse() {}

type ServerGetUserStatus struct {
	Username   string
	Status     UserStatus
	Privileged bool
}

func (ServerGetUserStatus) isServerResponse() {}

type ServerSayChatroom struct{ Room, Username, Message string }

func (ServerSayChatroom) isServerResponse() {}

type ServerJoinRoom struct {
	Room      string
	Users     []RoomUser
	Owner     string
	HasOwner  bool
	Operators []string
}

func (ServerJoinRoom) isServerResponse() {}

type ServerLeaveRoom struct{ Room string }

func (ServerLeaveRoom) isServerResponse() {}

type ServerUserJoinedRoom struct {
	Room        string
	Username    string
	Status      UserStatus
	Stats       UserStats
	SlotsFull   bool
	CountryCode string
}

func (ServerUserJoinedRoom) isServerResponse() {}

type ServerUserLeftRoom struct{ Room, Username string }

func (ServerUserLeftRoom) isServerResponse() {}

// ServerConnectToPeer is the server's request that we dial out (or accept a
// relayed pierce) for an indirect peer connection, spec.md §4.4.
type ServerConnectToPeer struct {
	Username        string
	ConnectionType  ConnectionType
	IP              [4]byte
	Port            uint32
	Token           uint32
	Privileged      bool
	ObfuscationType ObfuscationType
	ObfuscatedPort  uint32
}

func (ServerConnectToPeer) isServerResponse() {}

type ServerMessageUser struct {
	ID         uint32
	Timestamp  uint32
	Username   string
	Message    string
	NewMessage bool
}

func (ServerMessageUser) isServerResponse() {}

type ServerFileSearch struct {
	Username string
	Token    uint32
	Query    string
}

func (ServerFileSearch) isServerResponse() {}

type ServerGetUserStats struct {
	Username string
	Stats    UserStats
}

func (ServerGetUserStats) isServerResponse() {}

type ServerRelogged struct{}

func (ServerRelogged) isServerResponse() {}

type ServerRecommendations struct {
	Recommendations   []NamedCount
	Unrecommendations []NamedCount
}

func (ServerRecommendations) isServerResponse() {}

type ServerGlobalRecommendations struct {
	Recommendations   []NamedCount
	Unrecommendations []NamedCount
}

func (ServerGlobalRecommendations) isServerResponse() {}

type ServerUserInterests struct {
	Username     string
	Likes, Hates []string
}

func (ServerUserInterests) isServerResponse() {}

type ServerRoomList struct {
	Rooms                []NamedCount
	OwnedPrivateRooms    []NamedCount
	PrivateRooms         []NamedCount
	OperatedPrivateRooms []string
}

func (ServerRoomList) isServerResponse() {}

type ServerAdminMessage struct{ Message string }

func (ServerAdminMessage) isServerResponse() {}

type ServerPrivilegedUsers struct{ Users []string }

func (ServerPrivilegedUsers) isServerResponse() {}

type ServerParentMinSpeed struct{ Speed uint32 }

func (ServerParentMinSpeed) isServerResponse() {}

type ServerParentSpeedRatio struct{ Ratio uint32 }

func (ServerParentSpeedRatio) isServerResponse() {}

type ServerCheckPrivileges struct{ TimeLeft uint32 }

func (ServerCheckPrivileges) isServerResponse() {}

type ServerEmbeddedMessage struct {
	Code DistributedCode
	Data []byte
}

func (ServerEmbeddedMessage) isServerResponse() {}

type ServerPossibleParents struct{ Parents []PossibleParent }

func (ServerPossibleParents) isServerResponse() {}

type ServerWishlistInterval struct{ Interval uint32 }

func (ServerWishlistInterval) isServerResponse() {}

type ServerSimilarUsers struct{ Users []NamedCount }

func (ServerSimilarUsers) isServerResponse() {}

type ServerItemRecommendations struct {
	Item            string
	Recommendations []NamedCount
}

func (ServerItemRecommendations) isServerResponse() {}

type ServerItemSimilarUsers struct {
	Item  string
	Users []string
}

func (ServerItemSimilarUsers) isServerResponse() {}

type ServerRoomTickerState struct {
	Room    string
	Tickers []RoomTicker
}

func (ServerRoomTickerState) isServerResponse() {}

type ServerRoomTickerAdd struct{ Room, Username, Ticker string }

func (ServerRoomTickerAdd) isServerResponse() {}

type ServerRoomTickerRemove struct{ Room, Username string }

func (ServerRoomTickerRemove) isServerResponse() {}

type ServerEnableRoomInvitations struct{ Enable bool }

func (ServerEnableRoomInvitations) isServerResponse() {}

type ServerChangePassword struct{ Password string }

func (ServerChangePassword) isServerResponse() {}

type ServerRoomOperatorEvent struct{ Room, Username string }

func (ServerRoomOperatorEvent) isServerResponse() {}

type ServerRoomNameEvent struct{ Room string }

func (ServerRoomNameEvent) isServerResponse() {}

type ServerRoomOperators struct {
	Room      string
	Operators []string
}

func (ServerRoomOperators) isServerResponse() {}

type ServerRoomMembers struct {
	Room    string
	Members []string
}

func (ServerRoomMembers) isServerResponse() {}

type ServerResetDistributed struct{}

func (ServerResetDistributed) isServerResponse() {}

type ServerGlobalRoomMessage struct{ Room, Username, Message string }

func (ServerGlobalRoomMessage) isServerResponse() {}

type ServerExcludedSearchPhrases struct{ Phrases []string }

func (ServerExcludedSearchPhrases) isServerResponse() {}

type ServerCantConnectToPeer struct {
	Token    uint32
	Username string
}

func (ServerCantConnectToPeer) isServerResponse() {}

type ServerCantCreateRoom struct{ Room string }

func (ServerCantCreateRoom) isServerResponse() {}

func readNamedCountList(r *wire.Reader) []NamedCount {
	names := wire.ReadList(r, func(r *wire.Reader) string { return r.ReadString() })
	counts := wire.ReadList(r, func(r *wire.Reader) int32 { return r.ReadInt32() })
	out := make([]NamedCount, 0, len(names))
	for i, n := range names {
		c := int32(0)
		if i < len(counts) {
			c = counts[i]
		}
		out = append(out, NamedCount{Name: n, Count: c})
	}
	return out
}

// DecodeServerResponse decodes a server message payload (frame length and
// code already consumed by the caller) according to its code.
func DecodeServerResponse(code ServerCode, payload []byte) (ServerResponse, error) {
	r := wire.NewReader(payload)
	resp, err := decodeServerResponse(code, r)
	if err != nil {
		return nil, err
	}
	if r.Err() != nil {
		return nil, r.Err()
	}
	return resp, nil
}

func decodeServerResponse(code ServerCode, r *wire.Reader) (ServerResponse, error) {
	switch code {
	case CodeLogin:
		success := r.ReadBool()
		if success {
			return ServerLoginSuccess{
				Greet:        r.ReadString(),
				OwnIP:        r.ReadIPv4(),
				PasswordHash: r.ReadString(),
				IsSupporter:  r.ReadBool(),
			}, nil
		}
		reason := LoginRejectionReason(r.ReadString())
		resp := ServerLoginFailure{Reason: reason}
		if reason == LoginRejectInvalidUsername && r.Remaining() > 0 {
			resp.Detail = r.ReadString()
			resp.HasDetail = true
		}
		return resp, nil
	case CodeGetPeerAddress:
		username := r.ReadString()
		ip := r.ReadIPv4()
		port := r.ReadUint32()
		obf, err := ParseObfuscationType(r.ReadUint32())
		if err != nil {
			return nil, err
		}
		return ServerGetPeerAddress{
			Username: username, IP: ip, Port: port,
			ObfuscationType: obf, ObfuscatedPort: r.ReadUint16(),
		}, nil
	case CodeWatchUser:
		username := r.ReadString()
		exists := r.ReadBool()
		if !exists {
			return ServerWatchUser{Username: username, Exists: false}, nil
		}
		status, err := ParseUserStatus(r.ReadUint32())
		if err != nil {
			return nil, err
		}
		stats := readUserStats(r)
		resp := ServerWatchUser{Username: username, Exists: true, Status: status, Stats: stats, HasStatus: true}
		if status != StatusOffline && r.Remaining() > 0 {
			resp.CountryCode = r.ReadString()
			resp.HasCountry = true
		}
		return resp, nil
	case CodeGetUserStatus:
		username := r.ReadString()
		status, err := ParseUserStatus(r.ReadUint32())
		if err != nil {
			return nil, err
		}
		return ServerGetUserStatus{Username: username, Status: status, Privileged: r.ReadBool()}, nil
	case CodeSayChatroom:
		return ServerSayChatroom{Room: r.ReadString(), Username: r.ReadString(), Message: r.ReadString()}, nil
	case CodeJoinRoom:
		room := r.ReadString()
		usernames := wire.ReadList(r, func(r *wire.Reader) string { return r.ReadString() })
		statuses := wire.ReadList(r, func(r *wire.Reader) uint32 { return r.ReadUint32() })
		stats := wire.ReadList(r, readUserStats)
		slotsFull := wire.ReadList(r, func(r *wire.Reader) uint32 { return r.ReadUint32() })
		countries := wire.ReadList(r, func(r *wire.Reader) string { return r.ReadString() })
		users := make([]RoomUser, len(usernames))
		for i, u := range usernames {
			st := UserStatus(0)
			if i < len(statuses) {
				st = UserStatus(statuses[i])
			}
			var rs UserStats
			if i < len(stats) {
				rs = stats[i]
			}
			sf := false
			if i < len(slotsFull) {
				sf = slotsFull[i] != 0
			}
			cc := ""
			if i < len(countries) {
				cc = countries[i]
			}
			users[i] = RoomUser{Username: u, Status: st, Stats: rs, SlotsFull: sf, CountryCode: cc}
		}
		resp := ServerJoinRoom{Room: room, Users: users}
		if r.Remaining() > 0 {
			resp.Owner = r.ReadString()
			resp.HasOwner = true
			resp.Operators = wire.ReadList(r, func(r *wire.Reader) string { return r.ReadString() })
		}
		return resp, nil
	case CodeLeaveRoom:
		return ServerLeaveRoom{Room: r.ReadString()}, nil
	case CodeUserJoinedRoom:
		room := r.ReadString()
		username := r.ReadString()
		status, err := ParseUserStatus(r.ReadUint32())
		if err != nil {
			return nil, err
		}
		stats := readUserStats(r)
		return ServerUserJoinedRoom{
			Room: room, Username: username, Status: status, Stats: stats,
			SlotsFull: r.ReadUint32() != 0, CountryCode: r.ReadString(),
		}, nil
	case CodeUserLeftRoom:
		return ServerUserLeftRoom{Room: r.ReadString(), Username: r.ReadString()}, nil
	case CodeConnectToPeer:
		username := r.ReadString()
		ct, err := ParseConnectionType(r.ReadString())
		if err != nil {
			return nil, err
		}
		ip := r.ReadIPv4()
		port := r.ReadUint32()
		token := r.ReadUint32()
		privileged := r.ReadBool()
		obf, err := ParseObfuscationType(r.ReadUint32())
		if err != nil {
			return nil, err
		}
		return ServerConnectToPeer{
			Username: username, ConnectionType: ct, IP: ip, Port: port, Token: token,
			Privileged: privileged, ObfuscationType: obf, ObfuscatedPort: r.ReadUint32(),
		}, nil
	case CodeMessageUser:
		return ServerMessageUser{
			ID: r.ReadUint32(), Timestamp: r.ReadUint32(), Username: r.ReadString(),
			Message: r.ReadString(), NewMessage: r.ReadBool(),
		}, nil
	case CodeFileSearch:
		return ServerFileSearch{Username: r.ReadString(), Token: r.ReadUint32(), Query: r.ReadString()}, nil
	case CodeGetUserStats:
		return ServerGetUserStats{Username: r.ReadString(), Stats: readUserStats(r)}, nil
	case CodeRelogged:
		return ServerRelogged{}, nil
	case CodeGetRecommendations:
		return ServerRecommendations{Recommendations: readNamedCountList(r), Unrecommendations: readNamedCountList(r)}, nil
	case CodeGetGlobalRecommendations:
		return ServerGlobalRecommendations{Recommendations: readNamedCountList(r), Unrecommendations: readNamedCountList(r)}, nil
	case CodeGetUserInterests:
		username := r.ReadString()
		likes := wire.ReadList(r, func(r *wire.Reader) string { return r.ReadString() })
		hates := wire.ReadList(r, func(r *wire.Reader) string { return r.ReadString() })
		return ServerUserInterests{Username: username, Likes: likes, Hates: hates}, nil
	case CodeRoomList:
		names := wire.ReadList(r, func(r *wire.Reader) string { return r.ReadString() })
		counts := wire.ReadList(r, func(r *wire.Reader) int32 { return r.ReadInt32() })
		rooms := zipNamedCount(names, counts)
		ownedNames := wire.ReadList(r, func(r *wire.Reader) string { return r.ReadString() })
		ownedCounts := wire.ReadList(r, func(r *wire.Reader) int32 { return r.ReadInt32() })
		owned := zipNamedCount(ownedNames, ownedCounts)
		privNames := wire.ReadList(r, func(r *wire.Reader) string { return r.ReadString() })
		privCounts := wire.ReadList(r, func(r *wire.Reader) int32 { return r.ReadInt32() })
		priv := zipNamedCount(privNames, privCounts)
		operated := wire.ReadList(r, func(r *wire.Reader) string { return r.ReadString() })
		return ServerRoomList{Rooms: rooms, OwnedPrivateRooms: owned, PrivateRooms: priv, OperatedPrivateRooms: operated}, nil
	case CodeAdminMessage:
		return ServerAdminMessage{Message: r.ReadString()}, nil
	case CodePrivilegedUsers:
		return ServerPrivilegedUsers{Users: wire.ReadList(r, func(r *wire.Reader) string { return r.ReadString() })}, nil
	case CodeParentMinSpeed:
		return ServerParentMinSpeed{Speed: r.ReadUint32()}, nil
	case CodeParentSpeedRatio:
		return ServerParentSpeedRatio{Ratio: r.ReadUint32()}, nil
	case CodeCheckPrivileges:
		return ServerCheckPrivileges{TimeLeft: r.ReadUint32()}, nil
	case CodeEmbeddedMessage:
		c := DistributedCode(r.ReadUint8())
		return ServerEmbeddedMessage{Code: c, Data: payloadTail(r)}, nil
	case CodePossibleParents:
		parents := wire.ReadList(r, func(r *wire.Reader) PossibleParent {
			return PossibleParent{Username: r.ReadString(), IP: r.ReadIPv4(), Port: r.ReadUint32()}
		})
		return ServerPossibleParents{Parents: parents}, nil
	case CodeWishlistInterval:
		return ServerWishlistInterval{Interval: r.ReadUint32()}, nil
	case CodeGetSimilarUsers:
		return ServerSimilarUsers{Users: readNamedCountList(r)}, nil
	case CodeGetItemRecommendations:
		item := r.ReadString()
		return ServerItemRecommendations{Item: item, Recommendations: readNamedCountList(r)}, nil
	case CodeGetItemSimilarUsers:
		item := r.ReadString()
		return ServerItemSimilarUsers{Item: item, Users: wire.ReadList(r, func(r *wire.Reader) string { return r.ReadString() })}, nil
	case CodeRoomTickerState:
		room := r.ReadString()
		tickers := wire.ReadList(r, func(r *wire.Reader) RoomTicker {
			return RoomTicker{Username: r.ReadString(), Ticker: r.ReadString()}
		})
		return ServerRoomTickerState{Room: room, Tickers: tickers}, nil
	case CodeRoomTickerAdd:
		return ServerRoomTickerAdd{Room: r.ReadString(), Username: r.ReadString(), Ticker: r.ReadString()}, nil
	case CodeRoomTickerRemove:
		return ServerRoomTickerRemove{Room: r.ReadString(), Username: r.ReadString()}, nil
	case CodeEnableRoomInvitations:
		return ServerEnableRoomInvitations{Enable: r.ReadBool()}, nil
	case CodeChangePassword:
		return ServerChangePassword{Password: r.ReadString()}, nil
	case CodeAddRoomOperator, CodeRemoveRoomOperator:
		return ServerRoomOperatorEvent{Room: r.ReadString(), Username: r.ReadString()}, nil
	case CodeRoomOperatorshipGranted, CodeRoomOperatorshipRevoked, CodeRoomMembershipGranted, CodeRoomMembershipRevoked:
		return ServerRoomNameEvent{Room: r.ReadString()}, nil
	case CodeRoomOperators:
		room := r.ReadString()
		return ServerRoomOperators{Room: room, Operators: wire.ReadList(r, func(r *wire.Reader) string { return r.ReadString() })}, nil
	case CodeRoomMembers:
		room := r.ReadString()
		return ServerRoomMembers{Room: room, Members: wire.ReadList(r, func(r *wire.Reader) string { return r.ReadString() })}, nil
	case CodeAddRoomMember, CodeRemoveRoomMember:
		return ServerRoomOperatorEvent{Room: r.ReadString(), Username: r.ReadString()}, nil
	case CodeResetDistributed:
		return ServerResetDistributed{}, nil
	case CodeGlobalRoomMessage:
		return ServerGlobalRoomMessage{Room: r.ReadString(), Username: r.ReadString(), Message: r.ReadString()}, nil
	case CodeExcludedSearchPhrases:
		return ServerExcludedSearchPhrases{Phrases: wire.ReadList(r, func(r *wire.Reader) string { return r.ReadString() })}, nil
	case CodeCantConnectToPeer:
		return ServerCantConnectToPeer{Token: r.ReadUint32(), Username: r.ReadString()}, nil
	case CodeCantCreateRoom:
		return ServerCantCreateRoom{Room: r.ReadString()}, nil
	default:
		return ServerUnknown{Code: code, Payload: payloadTail(r)}, nil
	}
}

func zipNamedCount(names []string, counts []int32) []NamedCount {
	out := make([]NamedCount, len(names))
	for i, n := range names {
		c := int32(0)
		if i < len(counts) {
			c = counts[i]
		}
		out[i] = NamedCount{Name: n, Count: c}
	}
	return out
}

// payloadTail returns a copy of the remaining unread bytes of r's buffer,
// consuming them: the cursor is left at the end.
func payloadTail(r *wire.Reader) []byte {
	n := r.Remaining()
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = r.ReadUint8()
	}
	return out
}

// ParseObfuscationType validates a wire ObfuscationType value.
func ParseObfuscationType(v uint32) (ObfuscationType, error) {
	switch ObfuscationType(v) {
	case ObfuscationNone, ObfuscationRotated:
		return ObfuscationType(v), nil
	default:
		return 0, wire.NewInvalidEnum("obfuscation_type", v)
	}
}
