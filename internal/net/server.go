package net

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"github.com/madjabal/orderbook/internal/common"
	"github.com/madjabal/orderbook/internal/utils"
)

const (
	MAX_RECV_SIZE      = 4 * 1024
	defaultNWorkers    = 10
	defaultConnTimeout = 5 * time.Minute
)

var (
	ErrImproperConversion = errors.New("improper type conversion")
	ErrClientDoesNotExist = errors.New("client does not exist")
)

// ClientSession contains relevant information pertaining to an
// individual connected TCP session.
type ClientSession struct {
	id   string
	conn net.Conn
}

// ClientMessage links a message to the client sending it.
type ClientMessage struct {
	clientAddress string
	message       Message
}

// Engine is the interface that provides access to order handling.
type Engine interface {
	PlaceOrder(order common.Order) (uint64, error)
	CancelOrder(entryID uint64) error
	LogBook()
}

type Server struct {
	address            string
	port               int
	engine             Engine
	pool               utils.WorkerPool
	cancel             context.CancelFunc
	clientSessions     map[string]ClientSession
	clientSessionsLock sync.Mutex
	clientMessages     chan ClientMessage
}

func New(address string, port int, engine Engine) *Server {
	return &Server{
		address:        address,
		port:           port,
		engine:         engine,
		pool:           utils.NewWorkerPool(defaultNWorkers),
		clientSessions: make(map[string]ClientSession),
		clientMessages: make(chan ClientMessage, 1),
	}
}

func (s *Server) Shutdown() {
	log.Info().Msg("server shutting down")
	s.cancel()
}

func (s *Server) Run(ctx context.Context) {
	defer s.Shutdown()

	// Setup a cancel on the context for future shutdown.
	ctx, s.cancel = context.WithCancel(ctx)
	t, ctx := tomb.WithContext(ctx)

	// Start a tcp listener.
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("%s:%d", s.address, s.port))
	if err != nil {
		log.Error().Err(err).Msg("unable to start listener")
		return
	}
	defer func() {
		if err := listener.Close(); err != nil {
			log.Error().Err(err).Msg("unable to close listener")
		}
	}()

	// Start the worker pool.
	s.pool.Setup(t, s.handleConnection)

	// Start the session handler.
	t.Go(func() error {
		return s.sessionHandler(t)
	})

	log.Info().Str("address", s.address).Int("port", s.port).Msg("server running")

	// Start accepting connections.
	for {
		select {
		case <-ctx.Done():
			return
		default:
			conn, err := listener.Accept()
			if err != nil {
				log.Error().Err(err).Msg("error accepting client")
				continue
			}

			// Add the client to the sessions we are tracking; we expect
			// to maintain a long TCP session for the market-data feed.
			session := s.addClientSession(conn)
			log.Info().
				Str("address", conn.RemoteAddr().String()).
				Str("sessionID", session.id).
				Msg("new client added")

			// Pass over the connection to be read from.
			s.pool.AddTask(conn)
		}
	}
}

// PublishMessages broadcasts the market-data stream to every connected
// session. Sessions whose connection has died are dropped.
func (s *Server) PublishMessages(msgs []common.Message) error {
	wire := generateWireMarketData(msgs)

	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()

	for address, session := range s.clientSessions {
		if _, err := session.conn.Write(wire); err != nil {
			log.Error().
				Err(err).
				Str("address", address).
				Msg("dropping session after failed market data write")
			delete(s.clientSessions, address)
		}
	}
	return nil
}

func (s *Server) reportAck(clientAddress string, entryID uint64) error {
	return s.writeToClient(clientAddress, generateWireAck(entryID))
}

func (s *Server) ReportError(clientAddress string, err error) error {
	return s.writeToClient(clientAddress, generateWireError(err))
}

func (s *Server) writeToClient(clientAddress string, wire []byte) error {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()

	client, ok := s.clientSessions[clientAddress]
	if !ok {
		return ErrClientDoesNotExist
	}

	if _, err := client.conn.Write(wire); err != nil {
		delete(s.clientSessions, clientAddress)
		return fmt.Errorf("unable to send report: %w", err)
	}
	return nil
}

// sessionHandler reads off incoming messages from clients and handles
// high-level session logic. Messages are received from the pool of
// workers, so the engine sees them one at a time.
func (s *Server) sessionHandler(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case message := <-s.clientMessages:
			if err := s.handleMessage(message); err != nil {
				log.Error().
					Err(err).
					Str("clientAddress", message.clientAddress).
					Msg("error handling message")
				// Log the error back to the client.
				s.ReportError(message.clientAddress, err)
			}
		}
	}
}

func (s *Server) handleMessage(message ClientMessage) error {
	switch message.message.GetType() {
	case NewOrder:
		msg, ok := message.message.(NewOrderMessage)
		if !ok {
			return ErrInvalidMessageType
		}
		order, err := msg.Order()
		if err != nil {
			return err
		}
		entryID, err := s.engine.PlaceOrder(order)
		if err != nil {
			return err
		}
		return s.reportAck(message.clientAddress, entryID)
	case CancelOrder:
		msg, ok := message.message.(CancelOrderMessage)
		if !ok {
			return ErrInvalidMessageType
		}
		if err := s.engine.CancelOrder(msg.EntryID); err != nil {
			return err
		}
	case LogBook:
		s.engine.LogBook()
	case Heartbeat:
		// Keep-alive only; nothing to do.
	default:
		log.Error().
			Int("messageType", int(message.message.GetType())).
			Msg("invalid message type")
		return ErrInvalidMessageType
	}
	return nil
}

// handleConnection is a short-lived worker method which reads the next
// message off the connection, parses it and passes it forward to
// sessionHandler. The connection is pushed back onto the pool for the
// next message; it is closed only once the client is gone.
func (s *Server) handleConnection(t *tomb.Tomb, task any) error {
	conn, ok := task.(net.Conn)
	if !ok {
		return ErrImproperConversion
	}

	clientAddress := conn.RemoteAddr().String()

	// Set max read timeout so dead clients release their worker.
	if err := conn.SetReadDeadline(time.Now().Add(defaultConnTimeout)); err != nil {
		log.Error().
			Str("address", clientAddress).
			Err(err).
			Msg("failed setting deadline for connection")
		s.dropConnection(conn)
		return nil
	}

	buffer := make([]byte, MAX_RECV_SIZE)
	select {
	case <-t.Dying():
		return nil
	default:
		n, err := conn.Read(buffer)
		if err != nil {
			// If a read from a client fails it has likely exited;
			// clean up the client session.
			log.Info().
				Err(err).
				Str("address", clientAddress).
				Msg("closing client connection")
			s.dropConnection(conn)
			return nil
		}

		message, err := parseMessage(buffer[:n])
		if err != nil {
			log.Error().
				Err(err).
				Str("address", clientAddress).
				Msg("error parsing message")
			s.ReportError(clientAddress, err)
		} else {
			// Pass over to the message handling buffer.
			s.clientMessages <- ClientMessage{
				message:       message,
				clientAddress: clientAddress,
			}
		}

		// Push the client connection back to handle the next message.
		s.pool.AddTask(conn)
	}
	return nil
}

func (s *Server) dropConnection(conn net.Conn) {
	s.deleteClientSession(conn.RemoteAddr().String())
	if err := conn.Close(); err != nil {
		log.Error().Str("address", conn.RemoteAddr().String()).Err(err).Msg("error closing connection")
	}
}

// addClientSession is an atomic map add.
func (s *Server) addClientSession(conn net.Conn) ClientSession {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()

	session := ClientSession{
		id:   uuid.New().String(),
		conn: conn,
	}
	s.clientSessions[conn.RemoteAddr().String()] = session
	return session
}

// deleteClientSession is an atomic map remove.
func (s *Server) deleteClientSession(address string) {
	s.clientSessionsLock.Lock()
	defer s.clientSessionsLock.Unlock()

	delete(s.clientSessions, address)
}
