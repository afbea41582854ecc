package mt

import "fmt"

// Status is a Z-Stack status code as returned in the first byte of most
// synchronous responses.
type Status uint8

// Z-Stack status codes.
const (
	StatusSuccess            Status = 0x00
	StatusFailure            Status = 0x01
	StatusInvalidParameter   Status = 0x02
	StatusNVItemUninit       Status = 0x09
	StatusNVOperFailed       Status = 0x0A
	StatusNVBadItemLen       Status = 0x0C
	StatusMemError           Status = 0x10
	StatusBufferFull         Status = 0x11
	StatusUnsupportedMode    Status = 0x12
	StatusMACMemError        Status = 0x13
	StatusZDPInvalidReqType  Status = 0x80
	StatusZDPDeviceNotFound  Status = 0x81
	StatusZDPInvalidEndpoint Status = 0x82
	StatusZDPNotActive       Status = 0x83
	StatusZDPNotSupported    Status = 0x84
	StatusZDPTimeout         Status = 0x85
	StatusZDPNoMatch         Status = 0x86
	StatusZDPNoEntry         Status = 0x88
	StatusZDPNoDescriptor    Status = 0x89
	StatusZDPInsufficient    Status = 0x8A
	StatusZDPNotPermitted    Status = 0x8B
	StatusZDPTableFull       Status = 0x8C
	StatusZDPNotAuthorized   Status = 0x8D
	StatusSecNoKey           Status = 0xA1
	StatusSecMaxFrameCount   Status = 0xA3
	StatusAPSFail            Status = 0xB1
	StatusAPSTableFull       Status = 0xB2
	StatusAPSIllegalRequest  Status = 0xB3
	StatusAPSInvalidBinding  Status = 0xB4
	StatusAPSUnsupportedAttr Status = 0xB5
	StatusAPSNotSupported    Status = 0xB6
	StatusAPSNoAck           Status = 0xB7
	StatusAPSDuplicateEntry  Status = 0xB8
	StatusAPSNoBoundDevice   Status = 0xB9
	StatusNWKInvalidParam    Status = 0xC1
	StatusNWKInvalidRequest  Status = 0xC2
	StatusNWKNotPermitted    Status = 0xC3
	StatusNWKStartupFailure  Status = 0xC4
	StatusNWKTableFull       Status = 0xC7
	StatusNWKUnknownDevice   Status = 0xC8
	StatusNWKUnsupportedAttr Status = 0xC9
	StatusNWKNoNetworks      Status = 0xCA
	StatusNWKLeaveUnconfirm  Status = 0xCB
	StatusNWKNoAck           Status = 0xCC
	StatusNWKNoRoute         Status = 0xCD
	StatusMACNoAck           Status = 0xE9
	StatusMACTransactionExp  Status = 0xF0
)

var statusNames = map[Status]string{
	StatusSuccess:            "SUCCESS",
	StatusFailure:            "FAILURE",
	StatusInvalidParameter:   "INVALID_PARAMETER",
	StatusNVItemUninit:       "NV_ITEM_UNINIT",
	StatusNVOperFailed:       "NV_OPER_FAILED",
	StatusNVBadItemLen:       "NV_BAD_ITEM_LEN",
	StatusMemError:           "MEM_ERROR",
	StatusBufferFull:         "BUFFER_FULL",
	StatusUnsupportedMode:    "UNSUPPORTED_MODE",
	StatusMACMemError:        "MAC_MEM_ERROR",
	StatusZDPInvalidReqType:  "ZDP_INVALID_REQTYPE",
	StatusZDPDeviceNotFound:  "ZDP_DEVICE_NOT_FOUND",
	StatusZDPInvalidEndpoint: "ZDP_INVALID_EP",
	StatusZDPNotActive:       "ZDP_NOT_ACTIVE",
	StatusZDPNotSupported:    "ZDP_NOT_SUPPORTED",
	StatusZDPTimeout:         "ZDP_TIMEOUT",
	StatusZDPNoMatch:         "ZDP_NO_MATCH",
	StatusZDPNoEntry:         "ZDP_NO_ENTRY",
	StatusZDPNoDescriptor:    "ZDP_NO_DESCRIPTOR",
	StatusZDPInsufficient:    "ZDP_INSUFFICIENT_SPACE",
	StatusZDPNotPermitted:    "ZDP_NOT_PERMITTED",
	StatusZDPTableFull:       "ZDP_TABLE_FULL",
	StatusZDPNotAuthorized:   "ZDP_NOT_AUTHORIZED",
	StatusSecNoKey:           "SEC_NO_KEY",
	StatusSecMaxFrameCount:   "SEC_MAX_FRM_COUNT",
	StatusAPSFail:            "APS_FAIL",
	StatusAPSTableFull:       "APS_TABLE_FULL",
	StatusAPSIllegalRequest:  "APS_ILLEGAL_REQUEST",
	StatusAPSInvalidBinding:  "APS_INVALID_BINDING",
	StatusAPSUnsupportedAttr: "APS_UNSUPPORTED_ATTRIB",
	StatusAPSNotSupported:    "APS_NOT_SUPPORTED",
	StatusAPSNoAck:           "APS_NO_ACK",
	StatusAPSDuplicateEntry:  "APS_DUPLICATE_ENTRY",
	StatusAPSNoBoundDevice:   "APS_NO_BOUND_DEVICE",
	StatusNWKInvalidParam:    "NWK_INVALID_PARAM",
	StatusNWKInvalidRequest:  "NWK_INVALID_REQUEST",
	StatusNWKNotPermitted:    "NWK_NOT_PERMITTED",
	StatusNWKStartupFailure:  "NWK_STARTUP_FAILURE",
	StatusNWKTableFull:       "NWK_TABLE_FULL",
	StatusNWKUnknownDevice:   "NWK_UNKNOWN_DEVICE",
	StatusNWKUnsupportedAttr: "NWK_UNSUPPORTED_ATTRIBUTE",
	StatusNWKNoNetworks:      "NWK_NO_NETWORKS",
	StatusNWKLeaveUnconfirm:  "NWK_LEAVE_UNCONFIRMED",
	StatusNWKNoAck:           "NWK_NO_ACK",
	StatusNWKNoRoute:         "NWK_NO_ROUTE",
	StatusMACNoAck:           "MAC_NO_ACK",
	StatusMACTransactionExp:  "MAC_TRANSACTION_EXPIRED",
}

// String returns the status name.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(0x%02X)", uint8(s))
}

// OK reports whether the status is success.
func (s Status) OK() bool {
	return s == StatusSuccess
}
