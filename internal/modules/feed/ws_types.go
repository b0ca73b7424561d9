package feed

import (
	"astroseva/internal/domain"
	"astroseva/internal/modules/booking"
)

type WSClientMessage struct {
	Type  string `json:"type"`
	Token string `json:"token,omitempty"`
}

// WSServerMessage is every frame the feed writes. Change frames carry
// event_type and row; the rest are control frames.
type WSServerMessage struct {
	Type         string               `json:"type"`
	EventType    domain.ChangeType    `json:"event_type,omitempty"`
	Row          *booking.BookingView `json:"row,omitempty"`
	Actor        *domain.Actor        `json:"actor,omitempty"`
	ErrorCode    string               `json:"code,omitempty"`
	ErrorMessage string               `json:"message,omitempty"`
}

func NewChangeEvent(t domain.ChangeType, row booking.BookingView) *WSServerMessage {
	return &WSServerMessage{Type: "change", EventType: t, Row: &row}
}

func NewHelloEvent(actor domain.Actor) *WSServerMessage {
	return &WSServerMessage{Type: "hello", Actor: &actor}
}

func NewPongEvent() *WSServerMessage {
	return &WSServerMessage{Type: "pong"}
}

func NewErrorEvent(code, message string) *WSServerMessage {
	return &WSServerMessage{Type: "error", ErrorCode: code, ErrorMessage: message}
}
