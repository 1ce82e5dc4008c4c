package protocol

import "github.com/nyatla/slsk-go/lib/wire"

// ConnectionType distinguishes the three kinds of TCP channel a peer
// handshake can establish: P (peer-to-peer messages), F (file transfer), or
// D (distributed search network).
type ConnectionType string

const (
	ConnPeer        ConnectionType = "P"
	ConnFile        ConnectionType = "F"
	ConnDistributed ConnectionType = "D"
)

func ParseConnectionType(s string) (ConnectionType, error) {
	switch ConnectionType(s) {
	case ConnPeer, ConnFile, ConnDistributed:
		return ConnectionType(s), nil
	default:
		return "", wire.NewProtocolViolation("invalid connection type: " + s)
	}
}

// UserStatus is a user's reported online presence.
type UserStatus uint32

const (
	StatusOffline UserStatus = 0
	StatusAway    UserStatus = 1
	StatusOnline  UserStatus = 2
)

func ParseUserStatus(v uint32) (UserStatus, error) {
	switch UserStatus(v) {
	case StatusOffline, StatusAway, StatusOnline:
		return UserStatus(v), nil
	default:
		return 0, wire.NewInvalidEnum("user_status", v)
	}
}

// UploadPermission controls who may queue an upload from this client. The
// client never serves uploads (spec Non-goal), so this is tracked only for
// completeness when decoding server/peer state.
type UploadPermission uint32

const (
	PermissionNoOne         UploadPermission = 0
	PermissionEveryone      UploadPermission = 1
	PermissionUsersInList   UploadPermission = 2
	PermissionPermittedUsers UploadPermission = 3
)

// TransferDirection distinguishes a download from an upload in TransferRequest.
type TransferDirection uint32

const (
	DirectionDownload TransferDirection = 0
	DirectionUpload   TransferDirection = 1
)

func ParseTransferDirection(v uint32) (TransferDirection, error) {
	switch TransferDirection(v) {
	case DirectionDownload, DirectionUpload:
		return TransferDirection(v), nil
	default:
		return 0, wire.NewInvalidEnum("transfer_direction", v)
	}
}

// FileAttributeType tags an entry in a SharedFile's attribute list.
type FileAttributeType uint32

const (
	AttrBitrate    FileAttributeType = 0
	AttrDuration   FileAttributeType = 1
	AttrVbr        FileAttributeType = 2
	AttrEncoder    FileAttributeType = 3
	AttrSampleRate FileAttributeType = 4
	AttrBitDepth   FileAttributeType = 5
)

// ObfuscationType marks whether a peer connection uses Soulseek's simple
// XOR obfuscation. This client never initiates or accepts obfuscated
// connections (spec Non-goal) but decodes the field to stay on-protocol.
type ObfuscationType uint32

const (
	ObfuscationNone    ObfuscationType = 0
	ObfuscationRotated ObfuscationType = 1
)

// TransferRejectionReason is the exact wire string sent back in a
// TransferResponse/UploadDenied when a request is refused.
type TransferRejectionReason string

const (
	RejectFileNotShared    TransferRejectionReason = "File not shared."
	RejectFileReadError    TransferRejectionReason = "File read error."
	RejectPendingShutdown  TransferRejectionReason = "Pending shutdown."
	RejectTooManyFiles     TransferRejectionReason = "Too many files"
	RejectTooManyMegabytes TransferRejectionReason = "Too many megabytes"
	RejectBanned           TransferRejectionReason = "Banned"
	RejectCancelled        TransferRejectionReason = "Cancelled"
	RejectComplete         TransferRejectionReason = "Complete"
	RejectQueued           TransferRejectionReason = "Queued"
)

// LoginRejectionReason is the exact wire string in a failed LoginFailure.
type LoginRejectionReason string

const (
	LoginRejectInvalidUsername LoginRejectionReason = "INVALIDUSERNAME"
	LoginRejectEmptyPassword   LoginRejectionReason = "EMPTYPASSWORD"
	LoginRejectInvalidPass     LoginRejectionReason = "INVALIDPASS"
	LoginRejectInvalidVersion  LoginRejectionReason = "INVALIDVERSION"
	LoginRejectServerFull      LoginRejectionReason = "SVRFULL"
	LoginRejectServerPrivate   LoginRejectionReason = "SVRPRIVATE"
)

const (
	ClientVersion     = 160
	DefaultPeerPort   = 2234
	DefaultServerPort = 2242
	DefaultServerHost = "server.slsknet.org"
)
