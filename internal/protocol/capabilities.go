package protocol

// Capabilities tracks the protocol version and compile/runtime capability
// vectors negotiated during the CONNECT/ACCEPT handshake and the subsequent
// PROTOCOL/DATA_TYPES (or FastAuth) exchange. The values mirror what
// python-oracledb advertises, since the server's behavior is tuned against
// that client's capability bits.
type Capabilities struct {
	ProtocolVersion uint16
	SDU             uint32

	// SupportsOOB is always false: this client, like the async reference
	// implementations it is grounded on, never advertises out-of-band
	// break support in CONNECT and so never follows through with the OOB
	// handshake even if the server offers it.
	SupportsOOB           bool
	SupportsEndOfResponse bool
	SupportsFastAuth      bool

	// TTCFieldVersion is the version we present to the server (may be
	// lowered to match the server's; FastAuth sets it to 19.1-ext-1, 13).
	TTCFieldVersion uint8
	// ServerTTCFieldVersion is the server's actual field version, which
	// determines the wire format of messages it sends us.
	ServerTTCFieldVersion uint8

	CompileCaps []byte
	RuntimeCaps []byte
}

// NewCapabilities returns the default capability set this client
// advertises, matching python-oracledb's _init_compile_caps and
// _init_runtime_caps tables.
func NewCapabilities() *Capabilities {
	ttcFieldVersion := uint8(CCapFieldVersionMax)

	compileCaps := make([]byte, CCapMax)
	compileCaps[CCapSQLVersion] = CCapSQLVersionMax
	compileCaps[CCapLogonTypes] = CCapO5Logon | CCapO5LogonNP | CCapO7Logon | CCapO8LogonLongIdentifier | CCapO9LogonLongPassword
	compileCaps[CCapFeatureBackport] = CCapCTBImplicitPool | CCapCTBOAuthMsgOnErr
	compileCaps[CCapFieldVersion] = ttcFieldVersion
	compileCaps[CCapServerDefineConv] = 1
	compileCaps[CCapDequeueWithSelector] = 1
	compileCaps[CCapTTC1] = CCapFastBVec | CCapEndOfCallStatus | CCapIndRcd
	compileCaps[CCapOCI1] = CCapFastSessionPropagate | CCapAppCtxPiggyback
	compileCaps[CCapTDSVersion] = CCapTDSVersionMax
	compileCaps[CCapRPCVersion] = CCapRPCVersionMax
	compileCaps[CCapRPCSig] = CCapRPCSigValue
	compileCaps[CCapDBFVersion] = CCapDBFVersionMax
	compileCaps[CCapLOB] = CCapLOBUB8Size | CCapLOBEncs | CCapLOBPrefetchData | CCapLOBTempSize | CCapLOBPrefetchLength | CCapLOB12C
	compileCaps[CCapUB2DTY] = 1
	compileCaps[CCapLOB2] = CCapLOB2Quasi | CCapLOB22GBPrefetch
	compileCaps[CCapTTC3] = CCapImplicitResults | CCapBigChunkCLR | CCapKeepOutOrder | CCapLTXID
	compileCaps[CCapTTC2] = CCapZLNP
	compileCaps[CCapOCI2] = CCapDRCP
	compileCaps[CCapClientFn] = CCapClientFnMax
	compileCaps[CCapSessSignatureVersion] = CCapFieldVersion12_2
	compileCaps[CCapTTC4] = CCapInbandNotification | CCapExplicitBoundary
	compileCaps[CCapTTC5] = CCapVectorSupport | CCapTokenSupported | CCapPipeliningSupport | CCapPipeliningBreak | CCapTTC5SessionlessTxns
	compileCaps[CCapVectorFeatures] = CCapVectorFeatureBinary | CCapVectorFeatureSparse
	compileCaps[CCapOCI3] = CCapOCI3OCSSync

	runtimeCaps := make([]byte, RCapMax)
	runtimeCaps[RCapCompat] = RCapCompat81
	runtimeCaps[RCapTTC] = RCapTTCZeroCopy | RCapTTC32K

	return &Capabilities{
		SDU:                   SDUDefault,
		TTCFieldVersion:       ttcFieldVersion,
		ServerTTCFieldVersion: 0,
		CompileCaps:           compileCaps,
		RuntimeCaps:           runtimeCaps,
	}
}

// AdjustForProtocol updates capabilities from the ACCEPT packet's negotiated
// protocol version and flags2 word.
func (c *Capabilities) AdjustForProtocol(version uint16, flags2 uint32) {
	c.ProtocolVersion = version

	if version >= VersionMinEndOfResponse {
		c.SupportsEndOfResponse = flags2&AcceptFlagHasEndOfResponse != 0
		if c.SupportsEndOfResponse {
			c.CompileCaps[CCapTTC4] |= CCapEndOfResponse
		}
	}

	c.SupportsFastAuth = flags2&AcceptFlagFastAuth != 0
}

// AdjustForServerCaps records the server's field version and, if it is
// lower than ours, downgrades our advertised version to match. It never
// raises our version above what we already advertised.
func (c *Capabilities) AdjustForServerCaps(serverCompileCaps, serverRuntimeCaps []byte) {
	if len(serverCompileCaps) > CCapFieldVersion {
		serverFieldVersion := serverCompileCaps[CCapFieldVersion]
		c.ServerTTCFieldVersion = serverFieldVersion
		if serverFieldVersion < c.TTCFieldVersion {
			c.TTCFieldVersion = serverFieldVersion
			c.CompileCaps[CCapFieldVersion] = serverFieldVersion
		}
	}
	_ = serverRuntimeCaps // 32K string-size bit: not currently surfaced
}
