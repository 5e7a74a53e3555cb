/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Command collabc is a minimal reference client: it dials one or more
// collabd cores given as connection strings, reports the negotiated
// handshake state for each, and stays connected until interrupted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sabouaram/collab/client"
	liblog "github.com/sabouaram/collab/logger"
)

func main() {
	var clientName string

	cmd := &cobra.Command{
		Use:   "collabc <uri>...",
		Short: "collabc connects to one or more collabd cores",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return run(args, clientName)
		},
	}
	cmd.Flags().StringVar(&clientName, "name", "collabc", "display name offered during handshake")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(uris []string, clientName string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := newLogger()

	clients := make([]*client.Client, 0, len(uris))
	defer func() {
		for _, c := range clients {
			_ = c.Close()
		}
	}()

	for _, raw := range uris {
		c, err := client.Dial(ctx, raw, client.Config{
			ClientName: clientName,
			QueueDepth: 64,
			Log:        log,
		})
		if err != nil {
			return fmt.Errorf("collabc: dial %s: %w", raw, err)
		}
		clients = append(clients, c)
		fmt.Printf("connected: %s\n", raw)
	}

	<-ctx.Done()
	fmt.Println("collabc: shutting down")
	return nil
}

func newLogger() liblog.FuncLog {
	lg := liblog.New(context.Background())
	return func() liblog.Logger { return lg }
}
