package net

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madjabal/orderbook/internal/common"
)

func TestParseNewOrderFrame(t *testing.T) {
	frame := AppendNewOrderFrame(nil, common.LimitOrder, common.Sell, 101, 25)

	parsed, err := parseMessage(frame)
	require.NoError(t, err)
	msg, ok := parsed.(NewOrderMessage)
	require.True(t, ok)

	assert.Equal(t, NewOrder, msg.GetType())
	order, err := msg.Order()
	require.NoError(t, err)
	assert.Equal(t, common.Order{
		Side:     common.Sell,
		Kind:     common.LimitOrder,
		Quantity: 25,
		Price:    101,
	}, order)
}

func TestParseNewOrderFrameMarket(t *testing.T) {
	frame := AppendNewOrderFrame(nil, common.MarketOrder, common.Buy, 0, 7)

	parsed, err := parseMessage(frame)
	require.NoError(t, err)
	msg, ok := parsed.(NewOrderMessage)
	require.True(t, ok)

	order, err := msg.Order()
	require.NoError(t, err)
	assert.Equal(t, common.MarketOrder, order.Kind)
	assert.Zero(t, order.Price)
}

func TestParseCancelOrderFrame(t *testing.T) {
	frame := AppendCancelOrderFrame(nil, 42)

	parsed, err := parseMessage(frame)
	require.NoError(t, err)
	msg, ok := parsed.(CancelOrderMessage)
	require.True(t, ok)
	assert.Equal(t, uint64(42), msg.EntryID)
}

func TestParseMessageErrors(t *testing.T) {
	_, err := parseMessage([]byte{0x00})
	assert.ErrorIs(t, err, ErrMessageTooShort)

	_, err = parseMessage([]byte{0xff, 0xff})
	assert.ErrorIs(t, err, ErrInvalidMessageType)

	// NewOrder header with a truncated body.
	frame := AppendNewOrderFrame(nil, common.LimitOrder, common.Buy, 100, 10)
	_, err = parseMessage(frame[:8])
	assert.ErrorIs(t, err, ErrMessageTooShort)
}

func TestMarketDataRoundTrip(t *testing.T) {
	msgs := []common.Message{
		{Bid: common.PricePtr(99), Ask: common.PricePtr(101), TradePrice: 101},
		{Bid: common.PricePtr(99), TradePrice: 100},
		{TradePrice: 97},
	}

	wire := generateWireMarketData(msgs)
	require.Len(t, wire, MarketDataReportLen*len(msgs))

	for i, want := range msgs {
		got, err := ParseMarketData(wire[i*MarketDataReportLen:])
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestParseMarketDataErrors(t *testing.T) {
	_, err := ParseMarketData([]byte{byte(MarketData)})
	assert.ErrorIs(t, err, ErrMessageTooShort)

	wire := generateWireAck(1)
	padded := append(wire, make([]byte, MarketDataReportLen)...)
	_, err = ParseMarketData(padded)
	assert.ErrorIs(t, err, ErrInvalidMessageType)
}
