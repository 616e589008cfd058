package ipc

import (
	"bufio"
	"fmt"
	"net"
	"time"
)

const lastLineIdleDelay = 100 * time.Millisecond

// Client connects to an IPCServer to issue a command and relay any response
// lines. A Foreground client keeps reading until the server closes the
// connection (or Close is called); otherwise reading stops once the response
// goes idle.
type Client struct {
	Foreground bool
	RespCB     func(line string) bool

	conn net.Conn
}

// Send connects to the server listening on path and issues the command
// described by msg.
func (c *Client) Send(path, msg string) error {
	var err error
	c.conn, err = net.Dial("unix", path)
	if err != nil {
		return fmt.Errorf("unable to connect to %s: %w", path, err)
	}
	defer c.conn.Close()

	_, err = c.conn.Write([]byte(msg + "\n"))
	if err != nil {
		return fmt.Errorf("unable to send message to %s: %w", path, err)
	}

	if c.Foreground {
		scanner := bufio.NewScanner(c.conn)
		for scanner.Scan() {
			if !c.relay(scanner.Text()) {
				break
			}
		}

		return nil
	}

	// listen for any immediate responses
	lastLineAt := time.Now()
	go func() {
		scanner := bufio.NewScanner(c.conn)
		for scanner.Scan() {
			lastLineAt = time.Now()
			if !c.relay(scanner.Text()) {
				return
			}
		}
	}()

	// keep waiting if we're still reading something
	for time.Since(lastLineAt) < lastLineIdleDelay {
		time.Sleep(lastLineIdleDelay)
	}

	return nil
}

// Close terminates the connection (useful to interrupt a Foreground client).
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

func (c *Client) relay(line string) bool {
	if c.RespCB == nil {
		return true
	}

	return c.RespCB(line + "\n")
}
