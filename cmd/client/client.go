package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/madjabal/orderbook/internal/common"
	bookNet "github.com/madjabal/orderbook/internal/net"
)

func main() {
	// 1. CLI Parameter Parsing
	serverAddr := flag.String("server", "127.0.0.1:9001", "Address of the exchange server")
	action := flag.String("action", "place", "Action to perform: ['place', 'cancel', 'log', 'feed', 'demo']")

	// Order Parameters
	sideStr := flag.String("side", "buy", "Order side: 'buy' or 'sell'")
	typeStr := flag.String("type", "limit", "Order type: 'limit' or 'market'")
	price := flag.Int64("price", 100, "Limit price in ticks")
	qtyStr := flag.String("qty", "10", "Quantity or comma-separated list (e.g. 10,20,50)")

	// Cancel Parameters
	entryID := flag.Uint64("id", 0, "Entry id of the order to cancel")

	// Demo Parameters
	demoN := flag.Int("n", 1000, "Number of random orders to send in demo mode")
	demoSeed := flag.Int64("seed", 404, "Seed for the demo order stream")

	flag.Parse()

	// Connect to Server
	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("Failed to connect to server at %s: %v", *serverAddr, err)
	}
	defer conn.Close()
	fmt.Printf("Connected to %s\n", *serverAddr)

	// Start Listening for Reports (Async)
	go readReports(conn)

	side := common.Buy
	if strings.ToLower(*sideStr) == "sell" {
		side = common.Sell
	}

	kind := common.LimitOrder
	if strings.ToLower(*typeStr) == "market" {
		kind = common.MarketOrder
	}

	// Execute Action
	switch strings.ToLower(*action) {
	case "place":
		for _, q := range parseQuantities(*qtyStr) {
			if err := sendPlaceOrder(conn, kind, side, common.Price(*price), q); err != nil {
				log.Printf("Failed to place order (Qty: %d): %v", q, err)
				continue
			}
			if kind == common.LimitOrder {
				fmt.Printf("-> Sent %s %s: %d @ %d\n", strings.ToUpper(*sideStr), *typeStr, q, *price)
			} else {
				fmt.Printf("-> Sent %s %s: %d\n", strings.ToUpper(*sideStr), *typeStr, q)
			}
			// Small optional sleep to ensure server processes sequence distinctly.
			time.Sleep(5 * time.Millisecond)
		}

	case "cancel":
		if *entryID == 0 {
			log.Fatal("Error: -id is required for cancellation")
		}
		if err := sendCancelOrder(conn, *entryID); err != nil {
			log.Printf("Failed to send cancel request: %v", err)
		} else {
			fmt.Printf("-> Sent Cancel Request for entry id %d\n", *entryID)
		}

	case "log":
		if _, err := conn.Write(bookNet.AppendLogBookFrame(nil)); err != nil {
			log.Printf("Failed to send log request: %v", err)
		} else {
			fmt.Println("-> Sent Log Request")
		}

	case "feed":
		// Only consume the market-data feed; heartbeats keep the
		// session alive.
		fmt.Println("Consuming market data feed... (Press Ctrl+C to exit)")
		for {
			time.Sleep(30 * time.Second)
			if err := sendHeartbeat(conn); err != nil {
				log.Fatalf("Heartbeat failed: %v", err)
			}
		}

	case "demo":
		runDemo(conn, *demoN, *demoSeed)

	default:
		log.Fatalf("Unknown action: %s", *action)
	}

	// Keep the client alive to receive reports.
	fmt.Println("\nListening for reports... (Press Ctrl+C to exit)")
	select {}
}

// runDemo streams n randomized orders: random side and kind, buy limits
// priced 99 minus a delta, sell limits 101 plus a delta, deltas in
// [-3, 30), quantities in [1, 100).
func runDemo(conn net.Conn, n int, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < n; i++ {
		side := common.Buy
		if rng.Intn(2) == 1 {
			side = common.Sell
		}
		kind := common.LimitOrder
		if rng.Intn(2) == 1 {
			kind = common.MarketOrder
		}
		var price common.Price
		if kind == common.LimitOrder {
			delta := common.Price(rng.Intn(33) - 3)
			if side == common.Buy {
				price = 99 - delta
			} else {
				price = 101 + delta
			}
		}
		quantity := uint64(rng.Intn(99) + 1)

		if err := sendPlaceOrder(conn, kind, side, price, quantity); err != nil {
			log.Fatalf("Demo order %d failed: %v", i, err)
		}
		time.Sleep(time.Millisecond)
	}
	fmt.Printf("-> Sent %d demo orders (seed %d)\n", n, seed)
}

// parseQuantities splits a comma-separated string into a slice of uint64.
func parseQuantities(input string) []uint64 {
	parts := strings.Split(input, ",")
	var result []uint64
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if val, err := strconv.ParseUint(p, 10, 64); err == nil {
			result = append(result, val)
		} else {
			log.Printf("Warning: Invalid quantity '%s', skipping.", p)
		}
	}
	return result
}

func sendPlaceOrder(conn net.Conn, kind common.OrderKind, side common.Side, price common.Price, qty uint64) error {
	if kind == common.MarketOrder {
		price = 0
	}
	_, err := conn.Write(bookNet.AppendNewOrderFrame(nil, kind, side, price, qty))
	return err
}

func sendCancelOrder(conn net.Conn, entryID uint64) error {
	_, err := conn.Write(bookNet.AppendCancelOrderFrame(nil, entryID))
	return err
}

func sendHeartbeat(conn net.Conn) error {
	frame := make([]byte, bookNet.BaseMessageHeaderLen)
	binary.BigEndian.PutUint16(frame, uint16(bookNet.Heartbeat))
	_, err := conn.Write(frame)
	return err
}

// readReports drains server reports and prints them: order acks, the
// market data feed and error reports.
func readReports(conn net.Conn) {
	buffer := make([]byte, 4096)
	for {
		n, err := conn.Read(buffer)
		if err != nil {
			fmt.Fprintf(os.Stderr, "connection closed: %v\n", err)
			os.Exit(1)
		}
		printReports(buffer[:n])
	}
}

func printReports(wire []byte) {
	for len(wire) > 0 {
		switch bookNet.ReportType(wire[0]) {
		case bookNet.OrderAck:
			if len(wire) < bookNet.AckReportLen {
				return
			}
			fmt.Printf("<- Ack: entry id %d\n", binary.BigEndian.Uint64(wire[1:9]))
			wire = wire[bookNet.AckReportLen:]
		case bookNet.MarketData:
			msg, err := bookNet.ParseMarketData(wire)
			if err != nil {
				return
			}
			fmt.Printf("<- Trade: %s\n", msg)
			wire = wire[bookNet.MarketDataReportLen:]
		case bookNet.ErrorReport:
			if len(wire) < bookNet.ErrorReportHeaderLen {
				return
			}
			errLen := binary.BigEndian.Uint32(wire[1:5])
			end := bookNet.ErrorReportHeaderLen + int(errLen)
			if len(wire) < end {
				return
			}
			fmt.Printf("<- Error: %s\n", string(wire[5:end]))
			wire = wire[end:]
		default:
			return
		}
	}
}
