// Package wire implements the NATS text-line wire codec: a streaming,
// byte-oriented decoder and encoder for every command a client may send
// or receive. The package performs no I/O; it only turns byte slices
// into commands and commands back into bytes.
package wire

// CR and LF are the two bytes that make up the frame delimiter used
// throughout the protocol.
const (
	CR byte = 0x0D
	LF byte = 0x0A
)

// CRLF is the frame delimiter.
var CRLF = []byte{CR, LF}

// SoftLengthLimit is the default soft byte budget the dispatcher uses
// to bound how far it will look for a CRLF before giving up on a frame.
const SoftLengthLimit = 65535

// Info is the server-descriptor sent by the broker as the very first
// frame of a session. Required fields per spec are plain types; optional
// fields are pointers so that "absent" is distinguishable from the zero
// value, and unknown optional fields are simply ignored by
// encoding/json.
type Info struct {
	ServerID    string `json:"server_id"`
	ServerName  string `json:"server_name"`
	Version     string `json:"version"`
	Go          string `json:"go"`
	Host        string `json:"host"`
	Port        uint32 `json:"port"`
	Headers     bool   `json:"headers"`
	MaxPayload  int64  `json:"max_payload"`
	Proto       uint8  `json:"proto"`

	ClientID     *uint64  `json:"client_id,omitempty"`
	AuthRequired *bool    `json:"auth_required,omitempty"`
	TLSRequired  *bool    `json:"tls_required,omitempty"`
	TLSVerify    *bool    `json:"tls_verify,omitempty"`
	TLSAvailable *bool    `json:"tls_available,omitempty"`
	ConnectURLs  []string `json:"connect_urls,omitempty"`
	WSConnectURLs []string `json:"ws_connect_urls,omitempty"`
	LameDuckMode *bool    `json:"ldm,omitempty"`
	GitCommit    *string  `json:"git_commit,omitempty"`
	JetStream    *bool    `json:"jetstream,omitempty"`
	IP           *string  `json:"ip,omitempty"`
	ClientIP     *string  `json:"client_ip,omitempty"`
	Nonce        *string  `json:"nonce,omitempty"`
	Cluster      *string  `json:"cluster,omitempty"`
	Domain       *string  `json:"domain,omitempty"`
}

// Connect is the client-originated connect-options object.
type Connect struct {
	Verbose     bool   `json:"verbose"`
	Pedantic    bool   `json:"pedantic"`
	TLSRequired bool   `json:"tls_required"`
	Lang        string `json:"lang"`
	Version     string `json:"version"`

	AuthToken    *string `json:"auth_token,omitempty"`
	User         *string `json:"user,omitempty"`
	Pass         *string `json:"pass,omitempty"`
	Name         *string `json:"name,omitempty"`
	Protocol     *uint8  `json:"protocol,omitempty"`
	Echo         *bool   `json:"echo,omitempty"`
	Sig          *string `json:"sig,omitempty"`
	JWT          *string `json:"jwt,omitempty"`
	NoResponders *bool   `json:"no_responders,omitempty"`
	Headers      *bool   `json:"headers,omitempty"`
	NKey         *string `json:"nkey,omitempty"`
}

// HeaderMap is a multimap from case-sensitive header name to the
// ordered list of values seen for that name. Insertion order of the
// distinct names themselves is preserved via keys, since Go maps do
// not iterate in insertion order and the encoder must reproduce the
// original frame's header ordering on round-trip.
type HeaderMap struct {
	values map[string][]string
	keys   []string
}

// NewHeaderMap returns an empty HeaderMap ready to use.
func NewHeaderMap() *HeaderMap {
	return &HeaderMap{values: make(map[string][]string)}
}

// Add appends value to the list for name, registering name in
// insertion order the first time it is seen.
func (h *HeaderMap) Add(name, value string) {
	if h.values == nil {
		h.values = make(map[string][]string)
	}
	if _, ok := h.values[name]; !ok {
		h.keys = append(h.keys, name)
	}
	h.values[name] = append(h.values[name], value)
}

// Values returns the values recorded for name, in insertion order.
func (h *HeaderMap) Values(name string) []string {
	return h.values[name]
}

// Names returns every distinct header name, in the order it was
// first inserted.
func (h *HeaderMap) Names() []string {
	return h.keys
}

// Len reports the number of distinct header names.
func (h *HeaderMap) Len() int {
	return len(h.keys)
}

// Equal reports whether h and other carry the same names, in the same
// order, each with the same ordered list of values.
func (h *HeaderMap) Equal(other *HeaderMap) bool {
	if h == nil || other == nil {
		return (h == nil || h.Len() == 0) && (other == nil || other.Len() == 0)
	}
	if len(h.keys) != len(other.keys) {
		return false
	}
	for i, k := range h.keys {
		if other.keys[i] != k {
			return false
		}
		a, b := h.values[k], other.values[k]
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if a[j] != b[j] {
				return false
			}
		}
	}
	return true
}

// Msg is a delivered message without headers.
type Msg struct {
	Subject string
	SID     string
	ReplyTo string // empty when absent
	Bytes   int
	Payload []byte
}

// HMsg is a delivered message with headers.
type HMsg struct {
	Subject     string
	SID         string
	ReplyTo     string // empty when absent
	HeaderBytes int
	TotalBytes  int
	Headers     *HeaderMap
	Payload     []byte
}

// Message is the application-facing normalization of Msg and HMsg.
type Message struct {
	Subject string
	SID     string
	ReplyTo string
	Headers *HeaderMap
	Payload []byte
}

// FromMsg normalizes a headerless Msg into a Message.
func FromMsg(m Msg) Message {
	return Message{
		Subject: m.Subject,
		SID:     m.SID,
		ReplyTo: m.ReplyTo,
		Headers: NewHeaderMap(),
		Payload: m.Payload,
	}
}

// FromHMsg normalizes a headered HMsg into a Message.
func FromHMsg(m HMsg) Message {
	headers := m.Headers
	if headers == nil {
		headers = NewHeaderMap()
	}
	return Message{
		Subject: m.Subject,
		SID:     m.SID,
		ReplyTo: m.ReplyTo,
		Headers: headers,
		Payload: m.Payload,
	}
}

// Publish is the client-originated PUB command.
type Publish struct {
	Subject string
	ReplyTo string // empty when absent
	Bytes   int
	Payload []byte
}

// HPublish is the client-originated HPUB command.
type HPublish struct {
	Subject     string
	ReplyTo     string // empty when absent
	HeaderBytes int
	TotalBytes  int
	Headers     *HeaderMap
	Payload     []byte
}

// Subscribe is the client-originated SUB command.
type Subscribe struct {
	Subject    string
	QueueGroup string // empty when absent
	SID        string
}

// Unsubscribe is the client-originated UNSUB command.
type Unsubscribe struct {
	SID string
	// MaxMsgs, if non-zero, asks the server to automatically unsubscribe
	// after that many deliveries. Zero means "no limit" (absent on the wire).
	MaxMsgs int
}

// ServerCommandKind discriminates the variants of ServerCommand.
type ServerCommandKind int

const (
	ServerInfo ServerCommandKind = iota
	ServerMsg
	ServerHMsg
	ServerPing
	ServerPong
	ServerOK
	ServerErr
)

// ServerCommand is a server→client frame, normalized into a single
// tagged struct. Only the field matching Kind is populated.
type ServerCommand struct {
	Kind ServerCommandKind

	Info *Info
	Msg  Msg
	HMsg HMsg
	Err  string // quoted message with quotes stripped
}

// ClientCommandKind discriminates the variants of ClientCommand.
type ClientCommandKind int

const (
	ClientConnect ClientCommandKind = iota
	ClientPublish
	ClientHPublish
	ClientSubscribe
	ClientUnsubscribe
	ClientPing
	ClientPong
)

// ClientCommand is a client→server frame, normalized into a single
// tagged struct. Only the field matching Kind is populated.
type ClientCommand struct {
	Kind ClientCommandKind

	Connect     Connect
	Publish     Publish
	HPublish    HPublish
	Subscribe   Subscribe
	Unsubscribe Unsubscribe
}
