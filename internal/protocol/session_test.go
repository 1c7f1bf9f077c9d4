package protocol

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

func TestSessionSetDeadline(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	sess := NewSession(clientConn)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := sess.SetDeadline(ctx); err != nil {
		t.Fatalf("SetDeadline: %v", err)
	}

	if _, err := sess.ReadDataMessage(); err == nil {
		t.Fatal("ReadDataMessage should fail once the deadline passes with nothing sent")
	}
}

func TestSessionSetDeadlineNoDeadlineClears(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	sess := NewSession(clientConn)
	if err := sess.SetDeadline(context.Background()); err != nil {
		t.Fatalf("SetDeadline: %v", err)
	}
}

func TestSessionPoisonsAfterReadFailure(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	serverConn.Close() // closing the peer makes the next read fail immediately

	sess := NewSession(clientConn)

	if _, err := sess.ReadDataMessage(); err == nil {
		t.Fatal("ReadDataMessage should fail against a closed peer")
	}

	_, err := sess.ReadDataMessage()
	if !errors.Is(err, ErrConnectionDead) {
		t.Fatalf("second call error = %v, want wrapping ErrConnectionDead", err)
	}

	if err := sess.WritePacket(Packet{Type: PacketTypeData, Payload: []byte{0, 0}}); !errors.Is(err, ErrConnectionDead) {
		t.Fatalf("WritePacket on a poisoned session = %v, want ErrConnectionDead", err)
	}
}

func TestSessionReadMultiPacketResponseConcatenatesUntilEndOfResponse(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	go func() {
		w := NewPacketWriter(serverConn)
		// first packet: no end-of-response flag, more to come
		w.WritePacket(Packet{Type: PacketTypeData, Payload: []byte{0, 0, 'a', 'b', 'c'}})
		// second packet: END_OF_RESPONSE flag set in the data-flags prefix
		flags := []byte{byte(DataFlagsEndOfResponse >> 8), byte(DataFlagsEndOfResponse)}
		w.WritePacket(Packet{Type: PacketTypeData, Payload: append(flags, 'd', 'e')})
	}()

	sess := NewSession(clientConn)
	data, err := sess.ReadMultiPacketResponse()
	if err != nil {
		t.Fatalf("ReadMultiPacketResponse: %v", err)
	}
	if string(data) != "abcde" {
		t.Fatalf("data = %q, want %q", data, "abcde")
	}
}

func TestSessionMarkerPacketDoesNotPoison(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	go func() {
		w := NewPacketWriter(serverConn)
		w.WritePacket(Packet{Type: PacketTypeMarker, Payload: []byte{1, 0, 2}})
	}()

	sess := NewSession(clientConn)
	_, err := sess.ReadDataMessage()
	if !IsMarkerPacket(err) {
		t.Fatalf("expected a marker-packet error, got %v", err)
	}
	if sess.dead != nil {
		t.Error("a MARKER packet should not poison the session")
	}
}
