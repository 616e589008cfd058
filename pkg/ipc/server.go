// Package ipc lets a running watcher process accept commands from other
// invocations of the CLI over a unix socket. Each connection carries one
// command line which is parsed and executed against the shared cobra
// command tree.
package ipc

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/caiomaz/ovoscan/pkg/util"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type IPCServer struct {
	ctx   context.Context
	log   *zerolog.Logger
	conns sync.Map
	cmd   *cobra.Command
}

// Start listens on the provided unix socket path and executes one command
// per accepted connection until the context is canceled.
func (ipc *IPCServer) Start(ctx context.Context, log *zerolog.Logger, path string, cmd *cobra.Command) error {
	err := os.Remove(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("unable to remove %s: %w", path, err)
		}
	}

	var lc net.ListenConfig
	l, err := lc.Listen(ctx, "unix", path)
	if err != nil {
		return fmt.Errorf("unable to listen on %s: %w", path, err)
	}

	// let anyone talk to us
	err = os.Chmod(path, 0666)
	if err != nil {
		return fmt.Errorf("unable to change permissions of %s: %w", path, err)
	}

	ipc.ctx = ctx
	ipc.log = log
	ipc.cmd = cmd

	go func() {
		defer func() {
			util.LogRecover()
			l.Close()
		}()

		for {
			conn, err := l.Accept()
			if err != nil {
				ipc.log.Error().Err(err).Str("path", path).Msg("unable to accept new connection")
				break
			}

			ac := &acceptedConn{conn: conn}
			go ac.processCommand(ipc)
		}

		// cleanup (our context was canceled)
		ipc.conns.Range(func(key, _ any) bool {
			ac := key.(*acceptedConn)
			ac.conn.Close()
			return true
		})
	}()

	return nil
}

// Stop closes every active client connection.
func (ipc *IPCServer) Stop() {
	ipc.conns.Range(func(key, _ any) bool {
		ac := key.(*acceptedConn)
		ac.conn.Close()
		return true
	})
}
