package net

import (
	"encoding/binary"
	"errors"

	"github.com/madjabal/orderbook/internal/common"
)

var (
	ErrInvalidMessageType = errors.New("invalid message type")
	ErrMessageTooShort    = errors.New("message too short")
)

type MessageType int

const (
	Heartbeat MessageType = iota
	NewOrder
	CancelOrder
	LogBook
)

type ReportType int

const (
	OrderAck ReportType = iota
	MarketData
	ErrorReport
)

type Message interface {
	GetType() MessageType
}

// Message format constants
const (
	BaseMessageHeaderLen      = 2
	NewOrderMessageBodyLen    = 2 + 1 + 8 + 8
	CancelOrderMessageBodyLen = 8

	AckReportLen         = 1 + 8
	MarketDataReportLen  = 1 + 1 + 8 + 8 + 8
	ErrorReportHeaderLen = 1 + 4
)

// Presence flags in a market data report.
const (
	flagBidPresent = 1 << 0
	flagAskPresent = 1 << 1
)

// Generic message type.
type BaseMessage struct {
	TypeOf MessageType // 2 bytes
}

func (m BaseMessage) GetType() MessageType {
	return m.TypeOf
}

func parseMessage(msg []byte) (Message, error) {
	if len(msg) < BaseMessageHeaderLen {
		return BaseMessage{}, ErrMessageTooShort
	}

	typeOf := MessageType(binary.BigEndian.Uint16(msg[0:2]))
	msg = msg[2:]
	switch typeOf {
	case NewOrder:
		return parseNewOrder(msg)
	case CancelOrder:
		return parseCancelOrder(msg)
	case LogBook, Heartbeat:
		return BaseMessage{TypeOf: typeOf}, nil
	default:
		return BaseMessage{}, ErrInvalidMessageType
	}
}

type NewOrderMessage struct {
	BaseMessage
	OrderKind common.OrderKind // 2 bytes
	Side      common.Side      // 1 byte
	Price     common.Price     // 8 bytes (zero for market orders)
	Quantity  uint64           // 8 bytes
}

// Order converts the wire message into a validated domain order.
func (m *NewOrderMessage) Order() (common.Order, error) {
	if m.OrderKind == common.MarketOrder {
		return common.NewMarketOrder(m.Side, m.Quantity)
	}
	return common.NewLimitOrder(m.Side, m.Quantity, m.Price)
}

func parseNewOrder(msg []byte) (NewOrderMessage, error) {
	if len(msg) < NewOrderMessageBodyLen {
		return NewOrderMessage{}, ErrMessageTooShort
	}

	m := NewOrderMessage{BaseMessage: BaseMessage{TypeOf: NewOrder}}
	m.OrderKind = common.OrderKind(binary.BigEndian.Uint16(msg[0:2]))
	m.Side = common.Side(msg[2])
	m.Price = common.Price(binary.BigEndian.Uint64(msg[3:11]))
	m.Quantity = binary.BigEndian.Uint64(msg[11:19])
	return m, nil
}

type CancelOrderMessage struct {
	BaseMessage
	EntryID uint64 // 8 bytes
}

func parseCancelOrder(msg []byte) (CancelOrderMessage, error) {
	if len(msg) < CancelOrderMessageBodyLen {
		return CancelOrderMessage{}, ErrMessageTooShort
	}

	m := CancelOrderMessage{BaseMessage: BaseMessage{TypeOf: CancelOrder}}
	m.EntryID = binary.BigEndian.Uint64(msg[0:8])
	return m, nil
}

// generateWireAck packs the entry id an accepted order was assigned.
func generateWireAck(entryID uint64) []byte {
	buf := make([]byte, AckReportLen)
	buf[0] = byte(OrderAck)
	binary.BigEndian.PutUint64(buf[1:9], entryID)
	return buf
}

// generateWireMarketData packs one report per matched fragment. Absent
// bests are signalled through the presence flags and zeroed on the wire.
func generateWireMarketData(msgs []common.Message) []byte {
	buf := make([]byte, 0, MarketDataReportLen*len(msgs))
	for _, m := range msgs {
		frame := make([]byte, MarketDataReportLen)
		frame[0] = byte(MarketData)
		var flags byte
		if m.Bid != nil {
			flags |= flagBidPresent
			binary.BigEndian.PutUint64(frame[2:10], uint64(*m.Bid))
		}
		if m.Ask != nil {
			flags |= flagAskPresent
			binary.BigEndian.PutUint64(frame[10:18], uint64(*m.Ask))
		}
		binary.BigEndian.PutUint64(frame[18:26], uint64(m.TradePrice))
		frame[1] = flags
		buf = append(buf, frame...)
	}
	return buf
}

// ParseMarketData decodes a single market-data report, the inverse of
// one generateWireMarketData frame. Feed consumers use this to rebuild
// the message stream.
func ParseMarketData(frame []byte) (common.Message, error) {
	if len(frame) < MarketDataReportLen {
		return common.Message{}, ErrMessageTooShort
	}
	if ReportType(frame[0]) != MarketData {
		return common.Message{}, ErrInvalidMessageType
	}

	var m common.Message
	flags := frame[1]
	if flags&flagBidPresent != 0 {
		m.Bid = common.PricePtr(common.Price(binary.BigEndian.Uint64(frame[2:10])))
	}
	if flags&flagAskPresent != 0 {
		m.Ask = common.PricePtr(common.Price(binary.BigEndian.Uint64(frame[10:18])))
	}
	m.TradePrice = common.Price(binary.BigEndian.Uint64(frame[18:26]))
	return m, nil
}

func generateWireError(err error) []byte {
	errStr := err.Error()
	buf := make([]byte, ErrorReportHeaderLen+len(errStr))
	buf[0] = byte(ErrorReport)
	binary.BigEndian.PutUint32(buf[1:5], uint32(len(errStr)))
	copy(buf[5:], errStr)
	return buf
}

// AppendNewOrderFrame packs an outbound NewOrder frame. Shared with the
// client binary so both ends agree on the layout.
func AppendNewOrderFrame(buf []byte, kind common.OrderKind, side common.Side, price common.Price, quantity uint64) []byte {
	frame := make([]byte, BaseMessageHeaderLen+NewOrderMessageBodyLen)
	binary.BigEndian.PutUint16(frame[0:2], uint16(NewOrder))
	binary.BigEndian.PutUint16(frame[2:4], uint16(kind))
	frame[4] = byte(side)
	binary.BigEndian.PutUint64(frame[5:13], uint64(price))
	binary.BigEndian.PutUint64(frame[13:21], quantity)
	return append(buf, frame...)
}

// AppendCancelOrderFrame packs an outbound CancelOrder frame.
func AppendCancelOrderFrame(buf []byte, entryID uint64) []byte {
	frame := make([]byte, BaseMessageHeaderLen+CancelOrderMessageBodyLen)
	binary.BigEndian.PutUint16(frame[0:2], uint16(CancelOrder))
	binary.BigEndian.PutUint64(frame[2:10], entryID)
	return append(buf, frame...)
}

// AppendLogBookFrame packs an outbound LogBook frame.
func AppendLogBookFrame(buf []byte) []byte {
	frame := make([]byte, BaseMessageHeaderLen)
	binary.BigEndian.PutUint16(frame[0:2], uint16(LogBook))
	return append(buf, frame...)
}
