package server

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/asengupta/surveillance-server/internal/connection"
	"github.com/asengupta/surveillance-server/internal/protocol"
	"github.com/asengupta/surveillance-server/internal/queue"
	"github.com/asengupta/surveillance-server/internal/timer"
	"github.com/asengupta/surveillance-server/pkg/config"
)

// SiteJob represents a job to process data from a site connection
type SiteJob struct {
	ConnectionID string
	SiteID       string
	District     string
	Data         []byte
	Conn         net.Conn
	Timestamp    time.Time
}

// TCPServer accepts site connections and dispatches their messages to a
// worker pool. Events and metrics are published to separate Kafka topics.
type TCPServer struct {
	config          *config.TCPServerConfig
	connManager     *connection.Manager
	timerManager    *timer.TimerManager
	eventProducer   *queue.Producer
	metricsProducer *queue.Producer
	listener        net.Listener

	// Worker pool components
	jobQueue    chan *SiteJob
	workerCount int
	workers     []*Worker

	wg     sync.WaitGroup
	stopCh chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
}

// Worker represents a worker that processes site jobs
type Worker struct {
	id       int
	jobQueue <-chan *SiteJob
	server   *TCPServer
	stopCh   <-chan struct{}
}

// NewTCPServer creates a new worker pool TCP server
func NewTCPServer(
	cfg *config.TCPServerConfig,
	connManager *connection.Manager,
	timerManager *timer.TimerManager,
	eventProducer *queue.Producer,
	metricsProducer *queue.Producer,
) *TCPServer {
	ctx, cancel := context.WithCancel(context.Background())

	workerCount := cfg.WorkerCount
	if workerCount <= 0 {
		workerCount = 10 // Default 10 workers
	}

	jobQueueSize := cfg.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 1000 // Default queue size
	}

	return &TCPServer{
		config:          cfg,
		connManager:     connManager,
		timerManager:    timerManager,
		eventProducer:   eventProducer,
		metricsProducer: metricsProducer,
		jobQueue:        make(chan *SiteJob, jobQueueSize),
		workerCount:     workerCount,
		stopCh:          make(chan struct{}),
		ctx:             ctx,
		cancel:          cancel,
	}
}

// Start starts the TCP server and worker pool
func (s *TCPServer) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start TCP server: %w", err)
	}

	s.listener = listener
	fmt.Printf("TCP server listening on %s with %d workers\n", addr, s.workerCount)

	// Start workers
	s.startWorkers()

	// Start accepting connections
	s.wg.Add(1)
	go s.acceptConnections()

	return nil
}

// Stop stops the TCP server gracefully
func (s *TCPServer) Stop() {
	fmt.Println("Stopping TCP server...")
	close(s.stopCh)
	s.cancel()

	if s.listener != nil {
		s.listener.Close()
	}

	// Wait for accept loop and connection readers to finish
	s.wg.Wait()

	// Close job queue (no more jobs)
	close(s.jobQueue)

	fmt.Println("TCP server stopped")
}

// startWorkers initializes and starts worker goroutines
func (s *TCPServer) startWorkers() {
	s.workers = make([]*Worker, s.workerCount)

	for i := 0; i < s.workerCount; i++ {
		worker := &Worker{
			id:       i,
			jobQueue: s.jobQueue,
			server:   s,
			stopCh:   s.stopCh,
		}
		s.workers[i] = worker

		s.wg.Add(1)
		go worker.Start(&s.wg)
	}

	fmt.Printf("Started %d workers\n", s.workerCount)
}

// acceptConnections accepts incoming connections
func (s *TCPServer) acceptConnections() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return
			default:
				fmt.Printf("Failed to accept connection: %v\n", err)
				continue
			}
		}

		// Check max connections
		if s.connManager.Count() >= s.config.MaxConnections {
			fmt.Println("Maximum connections reached, rejecting connection")
			conn.Close()
			continue
		}

		// Handle connection in a lightweight goroutine (just for reading)
		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// handleConnection handles the identify handshake and reads from the
// connection. This goroutine only reads and dispatches to workers.
func (s *TCPServer) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	// Generate connection ID
	connectionID := uuid.New().String()
	fmt.Printf("New connection: %s from %s\n", connectionID, conn.RemoteAddr())

	// Set identify timeout
	conn.SetReadDeadline(time.Now().Add(s.config.IdentifyTimeout))

	// Read identification message
	reader := bufio.NewReader(conn)
	line, err := reader.ReadString('\n')
	if err != nil {
		fmt.Printf("Failed to read identify message: %v\n", err)
		return
	}

	// Parse identification message
	msg, err := protocol.ParseMessage([]byte(line))
	if err != nil {
		fmt.Printf("Failed to parse identify message: %v\n", err)
		s.sendError(conn)
		return
	}

	identifyMsg, ok := msg.(*protocol.IdentifyMessage)
	if !ok {
		fmt.Printf("Expected identify message, got %T\n", msg)
		s.sendError(conn)
		return
	}

	// Register site connection
	if err := s.connManager.Register(connectionID, identifyMsg.SiteID, identifyMsg.District, conn); err != nil {
		fmt.Printf("Failed to register site: %v\n", err)
		s.sendError(conn)
		return
	}
	defer s.connManager.Unregister(connectionID)

	fmt.Printf("Site identified: %s (site_id=%s, district=%s)\n", connectionID, identifyMsg.SiteID, identifyMsg.District)

	// Send acknowledgment
	ack := protocol.NewAckMessage(protocol.AckStatusIdentified)
	if err := s.sendMessage(conn, ack); err != nil {
		fmt.Printf("Failed to send ack: %v\n", err)
		return
	}

	// Schedule inactivity timer
	s.scheduleInactivityTimer(connectionID)

	// Clear read deadline for normal operation
	conn.SetReadDeadline(time.Time{})

	// Read messages and dispatch to workers
	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		line, err := reader.ReadString('\n')
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				// Timeout, continue reading
				continue
			}
			// Connection closed or error
			fmt.Printf("Connection %s closed: %v\n", connectionID, err)
			return
		}

		// Create job and send to worker pool
		job := &SiteJob{
			ConnectionID: connectionID,
			SiteID:       identifyMsg.SiteID,
			District:     identifyMsg.District,
			Data:         []byte(line),
			Conn:         conn,
			Timestamp:    time.Now(),
		}

		// Non-blocking send to job queue
		select {
		case s.jobQueue <- job:
			// Job queued successfully
		case <-s.stopCh:
			return
		default:
			// Queue is full, log and drop
			fmt.Printf("Job queue full, dropping message from %s\n", connectionID)
		}

		// Update activity timestamp
		s.connManager.UpdateActivity(connectionID)

		// Reschedule inactivity timer
		s.scheduleInactivityTimer(connectionID)
	}
}

// Worker methods

// Start starts the worker
func (w *Worker) Start(wg *sync.WaitGroup) {
	defer wg.Done()
	fmt.Printf("Worker %d started\n", w.id)

	for {
		select {
		case job, ok := <-w.jobQueue:
			if !ok {
				// Channel closed, worker should exit
				fmt.Printf("Worker %d stopped\n", w.id)
				return
			}
			w.processJob(job)

		case <-w.stopCh:
			fmt.Printf("Worker %d received stop signal\n", w.id)
			return
		}
	}
}

// processJob processes a site job
func (w *Worker) processJob(job *SiteJob) {
	// Parse message
	msg, err := protocol.ParseMessage(job.Data)
	if err != nil {
		fmt.Printf("Worker %d: Failed to parse message: %v\n", w.id, err)
		return
	}

	// Handle message based on type
	switch m := msg.(type) {
	case *protocol.EventMessage:
		if err := w.handleEvent(job, m); err != nil {
			fmt.Printf("Worker %d: Failed to handle event: %v\n", w.id, err)
		}

	case *protocol.MetricsMessage:
		if err := w.handleMetrics(job, m); err != nil {
			fmt.Printf("Worker %d: Failed to handle metrics: %v\n", w.id, err)
		}

	case *protocol.KeepaliveMessage:
		if err := w.handleKeepalive(job); err != nil {
			fmt.Printf("Worker %d: Failed to handle keepalive: %v\n", w.id, err)
		}

	default:
		fmt.Printf("Worker %d: Unexpected message type: %T\n", w.id, msg)
	}
}

// handleEvent publishes a surveillance event to the events topic
func (w *Worker) handleEvent(job *SiteJob, msg *protocol.EventMessage) error {
	envelope := &protocol.EventEnvelope{
		ConnectionID: job.ConnectionID,
		SiteID:       job.SiteID,
		District:     job.District,
		ReceivedAt:   job.Timestamp,
		Data:         msg.Data,
	}

	data, err := protocol.EncodeEventEnvelope(envelope)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	// Key is site ID so a site's events stay ordered within a partition
	if err := w.server.eventProducer.Publish(w.server.ctx, job.SiteID, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	fmt.Printf("Worker %d: Received event from %s (category=%s)\n", w.id, job.SiteID, msg.Data.Category)
	return nil
}

// handleMetrics publishes model metrics to the metrics topic
func (w *Worker) handleMetrics(job *SiteJob, msg *protocol.MetricsMessage) error {
	envelope := &protocol.MetricsEnvelope{
		ConnectionID: job.ConnectionID,
		SiteID:       job.SiteID,
		District:     job.District,
		ReceivedAt:   job.Timestamp,
		Data:         msg.Data,
	}

	data, err := protocol.EncodeMetricsEnvelope(envelope)
	if err != nil {
		return fmt.Errorf("failed to encode metrics: %w", err)
	}

	if err := w.server.metricsProducer.Publish(w.server.ctx, job.SiteID, data); err != nil {
		return fmt.Errorf("failed to publish metrics: %w", err)
	}

	fmt.Printf("Worker %d: Received metrics from %s (site_id=%s)\n", w.id, job.ConnectionID, job.SiteID)
	return nil
}

// handleKeepalive handles keepalive message
func (w *Worker) handleKeepalive(job *SiteJob) error {
	ack := protocol.NewAckMessage(protocol.AckStatusAlive)
	return w.server.sendMessage(job.Conn, ack)
}

// Helper methods

func (s *TCPServer) sendMessage(conn net.Conn, msg interface{}) error {
	data, err := protocol.EncodeMessage(msg)
	if err != nil {
		return err
	}

	_, err = conn.Write(append(data, '\n'))
	return err
}

func (s *TCPServer) sendError(conn net.Conn) {
	ack := protocol.NewAckMessage(protocol.AckStatusError)
	s.sendMessage(conn, ack)
}

func (s *TCPServer) scheduleInactivityTimer(connectionID string) {
	timerID := fmt.Sprintf("inactivity-%s", connectionID)
	expiryAt := time.Now().Add(s.config.InactivityTimeout)

	callback := func() {
		fmt.Printf("Inactivity timeout for connection %s\n", connectionID)

		client, exists := s.connManager.Get(connectionID)
		if !exists {
			return
		}

		// Close connection; the reader goroutine unregisters on exit
		client.Conn.Close()
	}

	s.timerManager.Schedule(timerID, expiryAt, callback)
}
