package db

import (
	"bytes"
	"encoding/binary"
	"io"
	"net"
	"strconv"
	"sync"
	"testing"
)

// fakeServer accepts TCP connections on loopback and hands each one to
// serve. It speaks just enough of a wire protocol to get a real driver past
// its handshake.
type fakeServer struct {
	ln    net.Listener
	wg    sync.WaitGroup
	serve func(net.Conn)
}

func newFakeServer(t *testing.T, serve func(net.Conn)) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &fakeServer{ln: ln, serve: serve}
	s.wg.Add(1)
	go s.accept()
	t.Cleanup(func() {
		_ = ln.Close()
		s.wg.Wait()
	})
	return s
}

func (s *fakeServer) accept() {
	defer s.wg.Done()
	for {
		c, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer c.Close()
			s.serve(c)
		}()
	}
}

func (s *fakeServer) hostPort(t *testing.T) (string, int) {
	t.Helper()
	host, p, err := net.SplitHostPort(s.ln.Addr().String())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}
	port, err := strconv.Atoi(p)
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}
	return host, port
}

// ---- MySQL client/server protocol ----

const (
	mysqlComQuit  = 0x01
	mysqlComQuery = 0x03
)

// mysqlQueryReply decides what the fake server does with a COM_QUERY.
// Returning false drops the connection without answering.
type mysqlQueryReply func(c net.Conn, query string) bool

func readMySQLPacket(r io.Reader) (seq byte, payload []byte, err error) {
	var hdr [4]byte
	if _, err = io.ReadFull(r, hdr[:]); err != nil {
		return 0, nil, err
	}
	n := int(hdr[0]) | int(hdr[1])<<8 | int(hdr[2])<<16
	payload = make([]byte, n)
	if _, err = io.ReadFull(r, payload); err != nil {
		return 0, nil, err
	}
	return hdr[3], payload, nil
}

func writeMySQLPacket(w io.Writer, seq byte, payload []byte) {
	n := len(payload)
	hdr := []byte{byte(n), byte(n >> 8), byte(n >> 16), seq}
	_, _ = w.Write(append(hdr, payload...))
}

func lenencString(s string) []byte {
	return append([]byte{byte(len(s))}, s...)
}

func mysqlHandshake() []byte {
	var b bytes.Buffer
	b.WriteByte(10) // protocol version
	b.WriteString("8.0.35-fake\x00")
	_ = binary.Write(&b, binary.LittleEndian, uint32(7)) // connection id
	b.WriteString("abcdefgh")                            // auth data part 1
	b.WriteByte(0)
	// long password | protocol 41 | transactions | secure connection
	_ = binary.Write(&b, binary.LittleEndian, uint16(0xA201))
	b.WriteByte(0x21)                                         // utf8_general_ci
	_ = binary.Write(&b, binary.LittleEndian, uint16(0x0002)) // autocommit
	_ = binary.Write(&b, binary.LittleEndian, uint16(0x0008)) // plugin auth
	b.WriteByte(21)
	b.Write(make([]byte, 10))
	b.WriteString("ijklmnopqrst\x00") // auth data part 2
	b.WriteString("mysql_native_password\x00")
	return b.Bytes()
}

var (
	mysqlOK  = []byte{0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00}
	mysqlEOF = []byte{0xfe, 0x00, 0x00, 0x02, 0x00}
)

func serveMySQL(reply mysqlQueryReply) func(net.Conn) {
	return func(c net.Conn) {
		writeMySQLPacket(c, 0, mysqlHandshake())
		if _, _, err := readMySQLPacket(c); err != nil {
			return
		}
		writeMySQLPacket(c, 2, mysqlOK)

		for {
			_, cmd, err := readMySQLPacket(c)
			if err != nil || len(cmd) == 0 {
				return
			}
			switch cmd[0] {
			case mysqlComQuit:
				return
			case mysqlComQuery:
				if !reply(c, string(cmd[1:])) {
					return
				}
			default:
				writeMySQLPacket(c, 1, mysqlOK)
			}
		}
	}
}

func replyVersion(version string) mysqlQueryReply {
	return func(c net.Conn, _ string) bool {
		col := bytes.Join([][]byte{
			lenencString("def"), lenencString(""), lenencString(""), lenencString(""),
			lenencString("VERSION()"), lenencString(""),
			{0x0c, 0x21, 0x00, 0xff, 0x00, 0x00, 0x00, 0xfd, 0x00, 0x00, 0x1f, 0x00, 0x00},
		}, nil)
		writeMySQLPacket(c, 1, []byte{0x01})
		writeMySQLPacket(c, 2, col)
		writeMySQLPacket(c, 3, mysqlEOF)
		writeMySQLPacket(c, 4, lenencString(version))
		writeMySQLPacket(c, 5, mysqlEOF)
		return true
	}
}

func replyError(code uint16, state, msg string) mysqlQueryReply {
	return func(c net.Conn, _ string) bool {
		var b bytes.Buffer
		b.WriteByte(0xff)
		_ = binary.Write(&b, binary.LittleEndian, code)
		b.WriteByte('#')
		b.WriteString(state)
		b.WriteString(msg)
		writeMySQLPacket(c, 1, b.Bytes())
		return true
	}
}

func dropConnection(net.Conn, string) bool { return false }

// ---- PostgreSQL frontend/backend protocol ----

const pgSSLRequestCode = 80877103

func pgMessage(typ byte, body []byte) []byte {
	msg := []byte{typ, 0, 0, 0, 0}
	binary.BigEndian.PutUint32(msg[1:], uint32(len(body)+4))
	return append(msg, body...)
}

// servePostgresThenDrop refuses TLS, accepts the startup without a
// password, and drops the connection on the first query message.
func servePostgresThenDrop(c net.Conn) {
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(c, hdr[:]); err != nil {
			return
		}
		n := int(binary.BigEndian.Uint32(hdr[:4]))
		if binary.BigEndian.Uint32(hdr[4:]) == pgSSLRequestCode {
			_, _ = c.Write([]byte{'N'})
			continue
		}
		if _, err := io.CopyN(io.Discard, c, int64(n-8)); err != nil {
			return
		}
		break
	}

	_, _ = c.Write(pgMessage('R', []byte{0, 0, 0, 0}))
	_, _ = c.Write(pgMessage('S', []byte("server_version\x0016.1\x00")))
	_, _ = c.Write(pgMessage('K', []byte{0, 0, 0, 1, 0, 0, 0, 2}))
	_, _ = c.Write(pgMessage('Z', []byte{'I'}))

	var typ [1]byte
	_, _ = io.ReadFull(c, typ[:])
}
