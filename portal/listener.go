package portal

import (
	"errors"
	"net"
	"os"
	"time"

	logger "github.com/sirupsen/logrus"
)

// Listener hands pending portal connections to the tick loop. Poll never
// blocks for long: it returns nil when no client is waiting.
type Listener interface {
	Poll() net.Conn
	Close() error
}

// TCPListener polls an ordinary TCP listener with a short accept deadline,
// so the cooperative tick loop never parks in Accept.
type TCPListener struct {
	ln   *net.TCPListener
	addr string
}

const acceptPoll = 50 * time.Millisecond

func OpenTCP(addr string) (*TCPListener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	logger.Infof("Portal listening on [%v]", ln.Addr())
	return &TCPListener{ln: ln.(*net.TCPListener), addr: addr}, nil
}

func (t *TCPListener) Poll() net.Conn {
	_ = t.ln.SetDeadline(time.Now().Add(acceptPoll))
	conn, err := t.ln.Accept()
	if err != nil {
		if !errors.Is(err, os.ErrDeadlineExceeded) {
			logger.Errorf("Portal accept failed [%v]", err)
		}
		return nil
	}
	return conn
}

// Addr returns the bound address, useful when listening on port 0.
func (t *TCPListener) Addr() net.Addr {
	return t.ln.Addr()
}

func (t *TCPListener) Close() error {
	logger.Infof("Portal on [%v] closing", t.addr)
	return t.ln.Close()
}
