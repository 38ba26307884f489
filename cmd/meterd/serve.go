package main

import (
	"context"
	"io"
	"net"
	"sync"

	"github.com/golang/glog"

	"github.com/chargelab/meter.go/pkg/framework"
	"github.com/chargelab/meter.go/pkg/proto"
	"github.com/chargelab/meter.go/pkg/transport"
)

// Per-connection ring sizes. The transmit ring must hold the largest
// reply in one piece: a full FETCH? of 1022 points runs to about 34 KB.
const (
	rxRingSize = 1024
	txRingSize = 1 << 16
)

// linkServer accepts control connections and hands each one to the main
// loop as a protocol endpoint. Accept goroutines only queue endpoint
// changes; the hub itself is touched exclusively from Poll, on the loop.
type linkServer struct {
	name        string
	addr        string
	maxConns    int
	loop        *framework.Loop
	hub         *proto.Hub
	newEndpoint func(proto.ByteStream) *proto.Endpoint

	mu      sync.Mutex
	active  int
	adds    []*proto.Endpoint
	removes []*proto.Endpoint
}

// Name implements framework.Named.
func (s *linkServer) Name() string {
	return s.name
}

// Poll applies queued endpoint changes.
func (s *linkServer) Poll() {
	s.mu.Lock()
	adds, removes := s.adds, s.removes
	s.adds, s.removes = nil, nil
	s.mu.Unlock()
	for _, ep := range removes {
		s.hub.Remove(ep)
	}
	for _, ep := range adds {
		if !s.hub.Add(ep) {
			glog.Warningf("%s: endpoint hub full", s.name)
		}
	}
}

// Run implements framework.Runnable, accepting connections until the
// context is done.
func (s *linkServer) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	glog.Infof("%s listening on %s", s.name, ln.Addr())
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if !s.admit() {
			glog.Warningf("%s: connection limit reached, rejecting %s", s.name, conn.RemoteAddr())
			conn.Close()
			continue
		}
		glog.V(4).Infof("%s: %s connected", s.name, conn.RemoteAddr())
		go func(conn net.Conn) {
			defer conn.Close()
			s.serveLink(ctx, conn)
			glog.V(4).Infof("%s: %s disconnected", s.name, conn.RemoteAddr())
		}(conn)
	}
}

// admit reserves a connection slot.
func (s *linkServer) admit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active >= s.maxConns {
		return false
	}
	s.active++
	return true
}

// serveLink pumps one admitted link until it fails or the daemon stops.
// Shared by the TCP, websocket and broker paths.
func (s *linkServer) serveLink(ctx context.Context, link io.ReadWriter) {
	port := transport.NewPort(rxRingSize, txRingSize, transport.Bounded)
	ep := s.newEndpoint(port)

	s.mu.Lock()
	s.adds = append(s.adds, ep)
	s.mu.Unlock()
	s.loop.TriggerNext()

	err := transport.NewStream(link, port).Run(ctx)
	if err != nil && err != io.EOF && ctx.Err() == nil {
		glog.Warningf("%s: link failed: %v", s.name, err)
	}

	s.mu.Lock()
	s.removes = append(s.removes, ep)
	s.active--
	s.mu.Unlock()
	s.loop.TriggerNext()
}
