package forwarder

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/calebmah/gaugelink"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Server string
	Port   int
}

// UDP is the send side of the point-to-point telemetry transport: one
// datagram per packet, fire and forget.
type UDP struct {
	Config *Config

	conn net.Conn
}

func New(config *Config) (*UDP, error) {
	udp := &UDP{
		Config: config,
	}
	if err := udp.connect(); err != nil {
		return nil, err
	}
	return udp, nil
}

// NewFromFile loads a TOML config relative to the binary's directory.
func NewFromFile(fileName string) (*UDP, error) {
	dir, err := filepath.Abs(filepath.Dir(os.Args[0]))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to determine binary location")
	}
	file, err := os.Open(filepath.Join(dir, fileName))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open file %s", fileName)
	}
	defer file.Close()
	return NewFromReader(file)
}

func NewFromReader(configReader io.Reader) (*UDP, error) {
	configData, err := ioutil.ReadAll(configReader)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read config reader")
	}
	config := Config{}
	if _, err := toml.Decode(string(configData), &config); err != nil {
		return nil, errors.Wrapf(err, "unable to load udp forwarder configuration")
	}
	return New(&config)
}

func (udp *UDP) connect() error {
	writeBufSize := gaugelink.PacketSize * 2

	conn, err := net.Dial("udp", fmt.Sprintf("%s:%d",
		udp.Config.Server,
		udp.Config.Port))
	if err != nil {
		return err
	}
	udpConn := conn.(*net.UDPConn)
	if err = udpConn.SetWriteBuffer(writeBufSize); err != nil {
		return errors.Wrapf(err, "unable to set OS write buffer to %v", writeBufSize)
	}

	udp.conn = conn
	return nil
}

func (udp *UDP) Send(b []byte) error {
	if _, err := udp.conn.Write(b); err != nil {
		return errors.Wrap(err, "unable to send telemetry datagram")
	}
	return nil
}

func (udp *UDP) Close() error {
	return udp.conn.Close()
}

// Listener is the receive side: it reads datagrams and hands each one to a
// single callback, in arrival order, from one goroutine.
type Listener struct {
	pc net.PacketConn
}

func Listen(addr string) (*Listener, error) {
	pc, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to listen on %s", addr)
	}
	log.WithField("addr", pc.LocalAddr().String()).Info("telemetry listener started")
	return &Listener{
		pc: pc,
	}, nil
}

// Run blocks reading datagrams until ctx is cancelled, invoking cb once per
// datagram.
func (l *Listener) Run(ctx context.Context, cb func([]byte)) error {
	buf := make([]byte, 2048)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := l.pc.SetReadDeadline(time.Now().Add(time.Second)); err != nil {
			return errors.Wrap(err, "unable to set read deadline")
		}
		n, _, err := l.pc.ReadFrom(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return errors.Wrap(err, "unable to read datagram")
		}
		b := make([]byte, n)
		copy(b, buf[:n])
		cb(b)
	}
}

func (l *Listener) Close() error {
	return l.pc.Close()
}
