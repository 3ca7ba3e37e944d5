package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/paulmach/orb"
)

// FeedClient connects to a live geo-feed and reads graphic updates.
// The feed speaks a line protocol: POS,id,lat,lon,label[,key=value...]
type FeedClient struct {
	conn      io.ReadCloser
	addr      string
	parser    *FeedParser
	msgChan   chan Feature
	errChan   chan error
	closing   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// FeedParser parses geo-feed position lines
type FeedParser struct{}

// NewFeedParser creates a new feed parser
func NewFeedParser() *FeedParser {
	return &FeedParser{}
}

// NewFeedClient connects to a geo-feed via network
// addr should be in format "host:port"
func NewFeedClient(addr string) (*FeedClient, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	return &FeedClient{
		conn:    conn,
		addr:    addr,
		parser:  NewFeedParser(),
		msgChan: make(chan Feature, 100),
		errChan: make(chan error, 10),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
	}, nil
}

// Start begins reading updates from the feed
func (c *FeedClient) Start() {
	go c.readLoop()
}

// ReadMessages returns a channel of parsed graphic updates
func (c *FeedClient) ReadMessages() <-chan Feature {
	return c.msgChan
}

// Errors returns a channel of errors encountered during parsing
func (c *FeedClient) Errors() <-chan error {
	return c.errChan
}

// Close closes the feed connection
func (c *FeedClient) Close() error {
	// Use sync.Once to ensure we only close once
	c.closeOnce.Do(func() {
		// Unblock any readLoop send before waiting on it, otherwise a
		// full msgChan deadlocks the shutdown
		close(c.closing)

		// Close the connection to stop readLoop
		if c.conn != nil {
			c.conn.Close()
		}

		// Wait for readLoop to finish before closing channels
		<-c.done

		// Now safe to close channels
		close(c.msgChan)
		close(c.errChan)
	})
	return nil
}

// readLoop continuously reads and parses lines from the feed
func (c *FeedClient) readLoop() {
	defer close(c.done) // Signal that readLoop is finished

	scanner := bufio.NewScanner(c.conn)
	for scanner.Scan() {
		line := scanner.Text()
		feat, err := c.parser.Parse(line)
		if err != nil {
			// Skip malformed lines silently
			continue
		}
		if feat != nil {
			select {
			case c.msgChan <- *feat:
			case <-c.closing:
				return // Exit if Close() was called
			}
		}
	}

	if err := scanner.Err(); err != nil {
		select {
		case c.errChan <- fmt.Errorf("error reading from feed: %w", err):
		case <-c.closing:
			return // Exit if Close() was called
		}
	}
}

// Parse parses a geo-feed position line
// Format: POS,id,lat,lon,label[,key=value...]
// Example: POS,unit-7,37.7749,-122.4194,Patrol 7,status=active
func (p *FeedParser) Parse(line string) (*Feature, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}

	fields := strings.Split(line, ",")
	if len(fields) < 4 {
		return nil, fmt.Errorf("insufficient fields: %d", len(fields))
	}

	// Only process POS messages
	if fields[0] != "POS" {
		return nil, nil
	}

	id := strings.TrimSpace(fields[1])
	if id == "" {
		return nil, fmt.Errorf("missing graphic id")
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return nil, fmt.Errorf("bad latitude %q: %w", fields[2], err)
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
	if err != nil {
		return nil, fmt.Errorf("bad longitude %q: %w", fields[3], err)
	}

	attrs := make(map[string]any)
	if len(fields) > 4 && strings.TrimSpace(fields[4]) != "" {
		attrs["label"] = strings.TrimSpace(fields[4])
	}

	// Remaining fields are key=value attribute pairs
	for _, f := range fields[5:] {
		if k, v, ok := strings.Cut(strings.TrimSpace(f), "="); ok && k != "" {
			attrs[k] = v
		}
	}

	return &Feature{
		ID:         id,
		Geometry:   orb.Point{lon, lat},
		Attributes: attrs,
		Visible:    true,
	}, nil
}

// NewStreamSource creates a live geo-feed source fed by a FeedClient.
// Updates merge into the source's graphics; graphics not refreshed
// within timeout are pruned.
func NewStreamSource(ctx context.Context, id, name string, client *FeedClient, tmpl *PopupTemplate, timeout time.Duration) *DataSource {
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	s := &DataSource{
		ID:       id,
		Name:     name,
		Kind:     KindStream,
		State:    Loaded,
		Visible:  true,
		Template: tmpl,
		graphics: newGraphicsStore(),
	}

	s.graphics.startPruning(ctx, timeout, 10*time.Second)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case feat, ok := <-client.ReadMessages():
				if !ok {
					return
				}
				feat.Source = s
				s.graphics.add(feat)
			}
		}
	}()

	return s
}
