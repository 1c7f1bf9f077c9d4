// Package protocol implements the Oracle Net (TNS) wire protocol: packet
// framing, the O5LOGON handshake, and the TTC message codec used to execute
// SQL and fetch result sets.
package protocol

// Packet types (TNS packet header byte 4).
const (
	PacketTypeConnect  = 1
	PacketTypeAccept   = 2
	PacketTypeRefuse   = 4
	PacketTypeRedirect = 5
	PacketTypeData     = 6
	PacketTypeResend   = 11
	PacketTypeMarker   = 12
	PacketTypeControl  = 14
)

// Packet flags (TNS packet header byte 5).
const (
	PacketFlagRedirect = 0x04
	PacketFlagTLSReneg = 0x08
)

// Data packet flags (first two bytes of a DATA packet payload).
const (
	DataFlagsEOF            = 0x0040
	DataFlagsEndOfRequest   = 0x0800
	DataFlagsBeginPipeline  = 0x1000
	DataFlagsEndOfResponse  = 0x2000
)

// Marker types.
const (
	MarkerTypeBreak     = 1
	MarkerTypeReset     = 2
	MarkerTypeInterrupt = 3
)

// TTC message types, sent as the first byte after the DATA packet's 2-byte
// data-flags field.
const (
	MsgTypeProtocol           = 1
	MsgTypeDataTypes          = 2
	MsgTypeFunction           = 3
	MsgTypeError              = 4
	MsgTypeRowHeader          = 6
	MsgTypeRowData            = 7
	MsgTypeParameter          = 8
	MsgTypeStatus             = 9
	MsgTypeIOVector           = 11
	MsgTypeLOBData            = 14
	MsgTypeWarning            = 15
	MsgTypeDescribeInfo       = 16
	MsgTypePiggyback          = 17
	MsgTypeFlushOutBinds      = 19
	MsgTypeBitVector          = 21
	MsgTypeServerSidePiggyback = 23
	MsgTypeOnewayFn           = 26
	MsgTypeImplicitResultset  = 27
	MsgTypeRenegotiate        = 28
	MsgTypeEndOfResponse      = 29
	MsgTypeToken              = 33
	MsgTypeFastAuth           = 34
)

// TTC function codes (second byte of a FUNCTION message).
const (
	FuncAuthPhaseOne        = 118
	FuncAuthPhaseTwo        = 115
	FuncCloseCursors        = 105
	FuncCommit              = 14
	FuncExecute             = 94
	FuncFetch               = 5
	FuncLOBOp               = 96
	FuncLogoff              = 9
	FuncPing                = 147
	FuncRollback            = 15
	FuncReexecute           = 4
	FuncReexecuteAndFetch   = 78
)

// Auth mode flags for the O5LOGON phase-two request.
const (
	AuthModeLogon        = 0x00000001
	AuthModeChangePass   = 0x00000002
	AuthModeSysdba       = 0x00000020
	AuthModeSysoper      = 0x00000040
	AuthModeWithPassword = 0x00000100
	AuthModeSysasm       = 0x00400000
	AuthModeSysbkp       = 0x01000000
	AuthModeSysdgd       = 0x02000000
	AuthModeSyskmt       = 0x04000000
	AuthModeSysrac       = 0x08000000
	AuthModeIAMToken     = 0x20000000
)

// Protocol version negotiation thresholds.
const (
	VersionDesired          = 319
	VersionMinimum          = 300
	VersionMinAccepted      = 315 // 12.1
	VersionMinLargeSDU      = 315
	VersionMinOOBCheck      = 318
	VersionMinEndOfResponse = 319
)

// CONNECT packet flags.
const (
	GSODontCare              = 0x0001
	GSOCanRecvAttention      = 0x0400
	NSINARequired            = 0x10
	NSIDisableNA             = 0x04
	NSISupportSecurityReneg  = 0x80
)

// Other connect-phase constants.
const (
	ProtocolCharacteristics = 0x4f98
	CheckOOB                = 0x01
	MaxConnectData          = 230
)

// ACCEPT packet flags2 bits.
const (
	AcceptFlagCheckOOB          = 0x00000001
	AcceptFlagFastAuth          = 0x10000000
	AcceptFlagHasEndOfResponse  = 0x02000000
)

// Character sets.
const (
	CharsetUTF8           = 873
	CharsetUTF16          = 2000
	EncodingMultiByte     = 0x01
	EncodingConvLength    = 0x02
)

// O5LOGON verifier types returned in AUTH_VFR_DATA's flags field.
const (
	VerifierType11G1 = 0xb152
	VerifierType11G2 = 0x1b25
	VerifierType12C  = 0x4815
)

// EXECUTE message option flags (al8i4 options word).
const (
	ExecOptionParse             = 0x01
	ExecOptionBind              = 0x08
	ExecOptionDefine            = 0x10
	ExecOptionExecute           = 0x20
	ExecOptionFetch             = 0x40
	ExecOptionCommit            = 0x100
	ExecOptionCommitReexecute   = 0x1
	ExecOptionPLSQLBind         = 0x400
	ExecOptionNotPLSQL          = 0x8000
	ExecOptionDescribe          = 0x20000
	ExecOptionNoCompressedFetch = 0x40000
	ExecOptionBatchErrors       = 0x80000
)

// EXECUTE message exec_flags (al8i4[9]).
const (
	ExecFlagsImplicitResultset = 0x8000
	ExecFlagsDMLRowcounts      = 0x4000
	ExecFlagsScrollable        = 0x02
	ExecFlagsNoCancelOnEOF     = 0x80
)

// Known Oracle error numbers the client treats specially.
const (
	ErrInconsistentDataTypes = 932
	ErrVarNotInSelectList    = 1007
	ErrInbandMessage         = 12573
	ErrInvalidServiceName    = 12514
	ErrInvalidSID            = 12505
	ErrNoDataFound           = 1403
	ErrSessionShutdown       = 12572
)

// Compile-time capability array indices (TNS_CCAP_*).
const (
	CCapSQLVersion            = 0
	CCapLogonTypes            = 4
	CCapFeatureBackport       = 5
	CCapFieldVersion          = 7
	CCapServerDefineConv      = 8
	CCapDequeueWithSelector   = 9
	CCapTTC1                  = 15
	CCapOCI1                  = 16
	CCapTDSVersion            = 17
	CCapRPCVersion            = 18
	CCapRPCSig                = 19
	CCapDBFVersion            = 21
	CCapLOB                   = 23
	CCapTTC2                  = 26
	CCapUB2DTY                = 27
	CCapOCI2                  = 31
	CCapClientFn              = 34
	CCapOCI3                  = 35
	CCapTTC3                  = 37
	CCapSessSignatureVersion  = 39
	CCapTTC4                  = 40
	CCapLOB2                  = 42
	CCapTTC5                  = 44
	CCapVectorFeatures        = 52
	CCapMax                   = 53
)

// Compile-time capability values.
const (
	CCapSQLVersionMax          = 6
	CCapFieldVersion12_2       = 8
	CCapFieldVersion12_2Ext1   = 9
	CCapFieldVersion18_1       = 10
	CCapFieldVersion19_1       = 12
	CCapFieldVersion19_1Ext1   = 13
	CCapFieldVersion20_1       = 14
	CCapFieldVersion21_1       = 16
	CCapFieldVersion23_1       = 17
	CCapFieldVersion23_1Ext3   = 20
	CCapFieldVersion23_4       = 24
	CCapFieldVersionMax        = 24
	CCapO5Logon                = 8
	CCapO5LogonNP              = 2
	CCapO7Logon                = 32
	CCapO8LogonLongIdentifier  = 64
	CCapO9LogonLongPassword    = 0x80
	CCapCTBImplicitPool        = 0x08
	CCapCTBOAuthMsgOnErr       = 0x10
	CCapEndOfCallStatus        = 0x01
	CCapIndRcd                 = 0x08
	CCapFastBVec               = 0x20
	CCapFastSessionPropagate   = 0x10
	CCapAppCtxPiggyback        = 0x80
	CCapTDSVersionMax          = 3
	CCapRPCVersionMax          = 7
	CCapRPCSigValue            = 3
	CCapDBFVersionMax          = 1
	CCapLOBUB8Size             = 0x01
	CCapLOBEncs                = 0x02
	CCapLOBPrefetchData        = 0x04
	CCapLOBTempSize            = 0x08
	CCapLOBPrefetchLength      = 0x40
	CCapLOB12C                 = 0x80
	CCapLOB2Quasi              = 0x01
	CCapLOB22GBPrefetch        = 0x04
	CCapZLNP                   = 0x04
	CCapDRCP                   = 0x10
	CCapLTXID                  = 0x08
	CCapImplicitResults        = 0x10
	CCapBigChunkCLR            = 0x20
	CCapKeepOutOrder           = 0x80
	CCapInbandNotification     = 0x04
	CCapExplicitBoundary       = 0x40
	CCapEndOfResponse          = 0x20
	CCapVectorSupport          = 0x08
	CCapTokenSupported         = 0x02
	CCapPipeliningSupport      = 0x04
	CCapPipeliningBreak        = 0x10
	CCapTTC5SessionlessTxns    = 0x20
	CCapVectorFeatureBinary    = 0x01
	CCapVectorFeatureSparse    = 0x02
	CCapOCI3OCSSync            = 0x20
	CCapClientFnMax            = 12
)

// Runtime capability array indices/values (TNS_RCAP_*).
const (
	RCapCompat    = 0
	RCapTTC       = 6
	RCapMax       = 11
	RCapCompat81  = 2
	RCapTTCZeroCopy = 0x01
	RCapTTC32K      = 0x04
)

// Wire-format sentinels and defaults.
const (
	EscapeChar           = 253
	LongLengthIndicator  = 254
	NullLengthIndicator  = 0
	MaxLongLength        = 0x7fffffff
	DurationSession      = 10
	HeaderSize           = 8
	SDUDefault           = 8192
)

// Oracle column type numbers (ORA_TYPE_NUM_*), as sent in DESCRIBE_INFO and
// ROW_DATA column metadata.
const (
	TypeNumBFile         = 114
	TypeNumBinaryDouble  = 101
	TypeNumBinaryFloat   = 100
	TypeNumBinaryInteger = 3
	TypeNumBlob          = 113
	TypeNumBoolean       = 252
	TypeNumChar          = 96
	TypeNumClob          = 112
	TypeNumCursor        = 102
	TypeNumDate          = 12
	TypeNumIntervalDS    = 183
	TypeNumIntervalYM    = 182
	TypeNumJSON          = 119
	TypeNumLong          = 8
	TypeNumLongRaw       = 24
	TypeNumNumber        = 2
	TypeNumObject        = 109
	TypeNumRaw           = 23
	TypeNumRowid         = 11
	TypeNumTimestamp     = 180
	TypeNumTimestampLTZ  = 231
	TypeNumTimestampTZ   = 181
	TypeNumUrowid        = 208
	TypeNumVarchar       = 1
	TypeNumVector        = 127
)

// Server-side piggyback opcodes (TNS_SERVER_PIGGYBACK_*).
const (
	PiggybackSessRet          = 4
	PiggybackLTXID            = 7
	PiggybackACReplayContext  = 8
	PiggybackExtSync          = 9
	PiggybackSessSignature    = 10
)
