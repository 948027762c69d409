package hyprland

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
)

// Client reads the event stream of socket2.
type Client struct {
	conn   net.Conn
	reader *bufio.Reader
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) ReadLine() (string, error) {
	str, err := c.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read from hypr socket: %w", err)
	}
	return strings.TrimSuffix(str, "\n"), nil
}

func Connect(ctx context.Context, dir string) (*Client, error) {
	conn, err := connect(ctx, dir, Socket2)
	if err != nil {
		return nil, err
	}

	return &Client{conn: conn, reader: bufio.NewReader(conn)}, nil
}
