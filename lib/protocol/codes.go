// Package protocol implements the Soulseek message catalog: encoding and
// decoding for the server, peer, peer-init, and distributed wire protocols,
// plus the framing glue that ties each to lib/wire.
package protocol

// ServerCode identifies a server-protocol message. The server protocol uses
// a u32 code prefix.
type ServerCode uint32

const (
	CodeLogin                   ServerCode = 1
	CodeSetWaitPort             ServerCode = 2
	CodeGetPeerAddress          ServerCode = 3
	CodeWatchUser               ServerCode = 5
	CodeUnwatchUser             ServerCode = 6
	CodeGetUserStatus           ServerCode = 7
	CodeSayChatroom             ServerCode = 13
	CodeJoinRoom                ServerCode = 14
	CodeLeaveRoom               ServerCode = 15
	CodeUserJoinedRoom          ServerCode = 16
	CodeUserLeftRoom            ServerCode = 17
	CodeConnectToPeer           ServerCode = 18
	CodeMessageUser             ServerCode = 22
	CodeMessageAcked            ServerCode = 23
	CodeFileSearch              ServerCode = 26
	CodeSetStatus               ServerCode = 28
	CodeServerPing              ServerCode = 32
	CodeSharedFoldersFiles       ServerCode = 35
	CodeGetUserStats            ServerCode = 36
	CodeRelogged                ServerCode = 41
	CodeUserSearch              ServerCode = 42
	CodeInterestAdd             ServerCode = 51
	CodeInterestRemove          ServerCode = 52
	CodeGetRecommendations      ServerCode = 54
	CodeGetGlobalRecommendations ServerCode = 56
	CodeGetUserInterests        ServerCode = 57
	CodeRoomList                ServerCode = 64
	CodeAdminMessage            ServerCode = 66
	CodePrivilegedUsers         ServerCode = 69
	CodeHaveNoParent            ServerCode = 71
	CodeParentMinSpeed          ServerCode = 83
	CodeParentSpeedRatio        ServerCode = 84
	CodeCheckPrivileges         ServerCode = 92
	CodeEmbeddedMessage         ServerCode = 93
	CodeAcceptChildren          ServerCode = 100
	CodePossibleParents         ServerCode = 102
	CodeWishlistSearch          ServerCode = 103
	CodeWishlistInterval        ServerCode = 104
	CodeGetSimilarUsers         ServerCode = 110
	CodeGetItemRecommendations  ServerCode = 111
	CodeGetItemSimilarUsers     ServerCode = 112
	CodeRoomTickerState         ServerCode = 113
	CodeRoomTickerAdd           ServerCode = 114
	CodeRoomTickerRemove        ServerCode = 115
	CodeRoomTickerSet           ServerCode = 116
	CodeHatedInterestAdd        ServerCode = 117
	CodeHatedInterestRemove     ServerCode = 118
	CodeRoomSearch              ServerCode = 120
	CodeSendUploadSpeed         ServerCode = 121
	CodeGivePrivileges          ServerCode = 123
	CodeBranchLevel             ServerCode = 126
	CodeBranchRoot              ServerCode = 127
	CodeResetDistributed        ServerCode = 130
	CodeRoomMembers             ServerCode = 133
	CodeAddRoomMember           ServerCode = 134
	CodeRemoveRoomMember        ServerCode = 135
	CodeCancelRoomMembership    ServerCode = 136
	CodeCancelRoomOwnership     ServerCode = 137
	CodeRoomMembershipGranted   ServerCode = 139
	CodeRoomMembershipRevoked   ServerCode = 140
	CodeEnableRoomInvitations   ServerCode = 141
	CodeChangePassword          ServerCode = 142
	CodeAddRoomOperator         ServerCode = 143
	CodeRemoveRoomOperator      ServerCode = 144
	CodeRoomOperatorshipGranted ServerCode = 145
	CodeRoomOperatorshipRevoked ServerCode = 146
	CodeRoomOperators           ServerCode = 148
	CodeMessageUsers            ServerCode = 149
	CodeJoinGlobalRoom          ServerCode = 150
	CodeLeaveGlobalRoom         ServerCode = 151
	CodeGlobalRoomMessage       ServerCode = 152
	CodeExcludedSearchPhrases   ServerCode = 160
	CodeCantConnectToPeer       ServerCode = 1001
	CodeCantCreateRoom          ServerCode = 1003
)

// PeerCode identifies a peer-protocol message. The peer protocol also uses a
// u32 code prefix, but a disjoint numbering from the server protocol.
type PeerCode uint32

const (
	CodeSharedFileListRequest   PeerCode = 4
	CodeSharedFileListResponse  PeerCode = 5
	CodeFileSearchResponse      PeerCode = 9
	CodeUserInfoRequest         PeerCode = 15
	CodeUserInfoResponse        PeerCode = 16
	CodeFolderContentsRequest   PeerCode = 36
	CodeFolderContentsResponse  PeerCode = 37
	CodeTransferRequest         PeerCode = 40
	CodeTransferResponse        PeerCode = 41
	CodeQueueUpload             PeerCode = 43
	CodePlaceInQueueResponse    PeerCode = 44
	CodeUploadFailed            PeerCode = 46
	CodeUploadDenied            PeerCode = 50
	CodePlaceInQueueRequest     PeerCode = 51
	CodeUploadQueueNotification PeerCode = 52
)

// PeerInitCode identifies a peer-init-protocol message. This protocol uses a
// single-byte code.
type PeerInitCode uint8

const (
	CodePierceFirewall PeerInitCode = 0
	CodePeerInit       PeerInitCode = 1
)

// DistributedCode identifies a distributed-protocol message. This protocol
// also uses a single-byte code.
type DistributedCode uint8

const (
	CodeDistributedPing            DistributedCode = 0
	CodeDistributedSearch          DistributedCode = 3
	CodeDistributedBranchLevel     DistributedCode = 4
	CodeDistributedBranchRoot      DistributedCode = 5
	CodeDistributedChildDepth      DistributedCode = 7
	CodeDistributedEmbeddedMessage DistributedCode = 93
)
