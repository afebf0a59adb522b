package transport

// OutboundFrame is the JSON payload of an outgoing "chat message" event.
// Message carries the opaque (encoded) text, never the plain text.
type OutboundFrame struct {
	Message   string `json:"message"`
	From      string `json:"from"`
	To        string `json:"to"`
	Username  string `json:"username"`
	Timestamp int64  `json:"timestamp"`
}

// InboundFrame is the JSON payload of an incoming "chat message" event.
// ServerOffset is carried by the backend but unused: arrival order is
// authoritative for the log, pending clarification of the backend's
// sequencing guarantees.
type InboundFrame struct {
	Msg            InboundBody `json:"msg"`
	ServerOffset   int64       `json:"serverOffset"`
	SenderUsername string      `json:"senderUsername"`
}

// InboundBody is the nested message object of an inbound frame.
type InboundBody struct {
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}
