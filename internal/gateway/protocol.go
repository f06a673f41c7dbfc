package gateway

import "encoding/json"

// ProtocolVersion is the single protocol version this node declares and
// accepts; min and max are equal (no negotiation beyond this value).
const ProtocolVersion = 3

// RequestFrame is the "req" wire frame: a correlated request the node sends
// (connect, node.invoke.result).
type RequestFrame struct {
	Type   string          `json:"type"`
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// ResponseFrame is the "res" wire frame: the gateway's correlated reply.
type ResponseFrame struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	OK      bool            `json:"ok"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   *GatewayError   `json:"error,omitempty"`
}

// EventFrame is the "event" wire frame: an unsolicited push from the
// gateway (connect.challenge, node.invoke.request).
type EventFrame struct {
	Type    string          `json:"type"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// rawFrame is used to sniff the "type" discriminator before decoding into
// one of the three concrete frame shapes.
type rawFrame struct {
	Type string `json:"type"`
}

// GatewayError is the error shape embedded in a failed ResponseFrame.
type GatewayError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// ClientInfo describes this node in connect params.
type ClientInfo struct {
	ID           string `json:"id"`
	Version      string `json:"version"`
	Platform     string `json:"platform"`
	Mode         string `json:"mode"`
	DeviceFamily string `json:"deviceFamily"`
	DisplayName  string `json:"displayName,omitempty"`
	InstanceID   string `json:"instanceId,omitempty"`
}

// DeviceAuthParams is the device identity/signature block in connect params.
type DeviceAuthParams struct {
	ID        string `json:"id"`
	PublicKey string `json:"publicKey"`
	Signature string `json:"signature"`
	SignedAt  int64  `json:"signedAt"`
	Nonce     string `json:"nonce"`
}

// TokenAuthParams carries the optional bearer token, included only when
// non-empty.
type TokenAuthParams struct {
	Token string `json:"token"`
}

// ConnectParams is the full "connect" request params payload built by the
// registrar.
type ConnectParams struct {
	MinProtocol int               `json:"minProtocol"`
	MaxProtocol int               `json:"maxProtocol"`
	Client      ClientInfo        `json:"client"`
	Role        string            `json:"role"`
	Scopes      []string          `json:"scopes"`
	Caps        []string          `json:"caps"`
	Commands    []string          `json:"commands"`
	Permissions map[string]bool   `json:"permissions"`
	Locale      string            `json:"locale,omitempty"`
	UserAgent   string            `json:"userAgent"`
	Device      DeviceAuthParams  `json:"device"`
	Auth        *TokenAuthParams  `json:"auth,omitempty"`
}

// ChallengePayload is the payload of a connect.challenge event.
type ChallengePayload struct {
	Nonce string `json:"nonce"`
}

// InvokePayload is the inbound node.invoke.request event payload.
// InvokeTimeoutMs is plumbed through when present but, per the source's
// own inconsistency, has no universal effect: each capability falls back
// to its own default budget when it is zero.
type InvokePayload struct {
	ID              string          `json:"id"`
	NodeID          string          `json:"nodeId"`
	Command         string          `json:"command"`
	ParamsJSON      string          `json:"paramsJSON,omitempty"`
	Params          json.RawMessage `json:"params,omitempty"`
	InvokeTimeoutMs int             `json:"invokeTimeoutMs,omitempty"`
}

// InvokeResultParams is the outbound node.invoke.result request params.
type InvokeResultParams struct {
	ID          string           `json:"id"`
	NodeID      string           `json:"nodeId"`
	OK          bool             `json:"ok"`
	Payload     interface{}      `json:"payload,omitempty"`
	PayloadJSON *string          `json:"payloadJSON,omitempty"`
	Error       *NodeInvokeError `json:"error,omitempty"`
}

// NodeInvokeError is the error shape embedded in a failed invoke result.
type NodeInvokeError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
