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

// Command collabd runs one collaboration core: the reliable and
// best-effort listeners, the Koinonia shared-object service, and
// optionally the admin HTTP endpoint and the interactive shell.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/sabouaram/collab/adminapi"
	"github.com/sabouaram/collab/audit"
	"github.com/sabouaram/collab/crypt"
	liblog "github.com/sabouaram/collab/logger"
	"github.com/sabouaram/collab/metrics"
	"github.com/sabouaram/collab/network/protocol"
	"github.com/sabouaram/collab/password"
	"github.com/sabouaram/collab/persist/remote"
	"github.com/sabouaram/collab/server"
	"github.com/sabouaram/collab/shell"
	sckcfg "github.com/sabouaram/collab/socket/config"
)

// flags collects every collabd command-line option; run takes it by value
// so its own signature doesn't grow with every new knob.
type flags struct {
	port      int
	pass      string
	name      string
	adminAddr string
	auditDB   string
	noShell   bool
	sha256    bool

	cryptKey string
	cryptNon string

	backupS3Bucket string
	backupS3Key    string
	backupS3Access string
	backupS3Secret string
	backupS3Region string
	backupS3Endp   string

	backupFTPHost string
	backupFTPUser string
	backupFTPPass string
	backupFTPPath string
}

func main() {
	var f flags

	cmd := &cobra.Command{
		Use:   "collabd",
		Short: "collabd runs a Koinonia collaboration core",
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(f)
		},
	}
	cmd.Flags().IntVar(&f.port, "port", 6996, "TCP/UDP port to listen on")
	cmd.Flags().StringVar(&f.pass, "password", "", "shared connection password")
	cmd.Flags().StringVar(&f.name, "name", "collabd", "server name advertised during handshake")
	cmd.Flags().StringVar(&f.adminAddr, "admin-addr", "", "address for the read-only admin HTTP endpoint, empty disables it")
	cmd.Flags().StringVar(&f.auditDB, "audit-db", "", "path to a SQLite file for the Koinonia audit log, empty disables it")
	cmd.Flags().BoolVar(&f.noShell, "no-shell", false, "disable the interactive admin shell on stdin/stdout")
	cmd.Flags().BoolVar(&f.sha256, "sha256", false, "use SHA-256 instead of MD5 for the handshake password hash")
	cmd.Flags().StringVar(&f.cryptKey, "crypt-key", "", "hex AES-256 key (32 bytes) encrypting `save`/`load` dumps; requires --crypt-nonce")
	cmd.Flags().StringVar(&f.cryptNon, "crypt-nonce", "", "hex GCM nonce (12 bytes) paired with --crypt-key")
	cmd.Flags().StringVar(&f.backupS3Bucket, "backup-s3-bucket", "", "S3 bucket the shell's `backup` command pushes dumps to")
	cmd.Flags().StringVar(&f.backupS3Key, "backup-s3-key", "collabd.dump", "object key within --backup-s3-bucket")
	cmd.Flags().StringVar(&f.backupS3Access, "backup-s3-access-key", "", "S3 access key")
	cmd.Flags().StringVar(&f.backupS3Secret, "backup-s3-secret-key", "", "S3 secret key")
	cmd.Flags().StringVar(&f.backupS3Region, "backup-s3-region", "us-east-1", "S3 region")
	cmd.Flags().StringVar(&f.backupS3Endp, "backup-s3-endpoint", "https://s3.amazonaws.com", "S3-compatible endpoint URL")
	cmd.Flags().StringVar(&f.backupFTPHost, "backup-ftp-host", "", "FTP host:port the shell's `backup` command pushes dumps to")
	cmd.Flags().StringVar(&f.backupFTPUser, "backup-ftp-login", "", "FTP login")
	cmd.Flags().StringVar(&f.backupFTPPass, "backup-ftp-password", "", "FTP password")
	cmd.Flags().StringVar(&f.backupFTPPath, "backup-ftp-path", "collabd.dump", "remote path within the FTP server")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(f flags) error {
	// SIGPIPE would otherwise kill the process the first time a client
	// disappears mid-write; every write path already checks its error
	// return, so the signal itself carries no information worth dying on.
	signal.Ignore(unix.SIGPIPE)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := newLogger()

	var auditLog *audit.Log
	if f.auditDB != "" {
		var err error
		auditLog, err = audit.Open(f.auditDB)
		if err != nil {
			return fmt.Errorf("collabd: audit: %w", err)
		}
	}

	hashAlgo := password.HashMD5
	if f.sha256 {
		hashAlgo = password.HashSHA256
	}

	var cr crypt.Crypt
	switch {
	case f.cryptKey != "" && f.cryptNon != "":
		key, err := crypt.GetHexKey(f.cryptKey)
		if err != nil {
			return fmt.Errorf("collabd: --crypt-key: %w", err)
		}
		nonce, err := crypt.GetHexNonce(f.cryptNon)
		if err != nil {
			return fmt.Errorf("collabd: --crypt-nonce: %w", err)
		}
		if cr, err = crypt.New(key, nonce); err != nil {
			return fmt.Errorf("collabd: crypt: %w", err)
		}
	case f.cryptKey != "" || f.cryptNon != "":
		return fmt.Errorf("collabd: --crypt-key and --crypt-nonce must be set together")
	}

	var backup remote.Target
	switch {
	case f.backupS3Bucket != "" && f.backupFTPHost != "":
		return fmt.Errorf("collabd: only one of --backup-s3-bucket / --backup-ftp-host may be set")
	case f.backupS3Bucket != "":
		t, err := remote.NewS3Target(ctx, f.backupS3Bucket, f.backupS3Access, f.backupS3Secret, f.backupS3Endp, f.backupS3Region, f.backupS3Key)
		if err != nil {
			return fmt.Errorf("collabd: backup-s3: %w", err)
		}
		backup = t
	case f.backupFTPHost != "":
		t, err := remote.NewFTPTarget(ctx, f.backupFTPHost, f.backupFTPUser, f.backupFTPPass, f.backupFTPPath)
		if err != nil {
			return fmt.Errorf("collabd: backup-ftp: %w", err)
		}
		backup = t
	}

	addr := "0.0.0.0:" + strconv.Itoa(f.port)
	cfg := server.Config{
		ServerName:    f.name,
		Password:      f.pass,
		HashAlgorithm: hashAlgo,
		TCP:           sckcfg.Server{Network: protocol.NetworkTCP, Address: addr},
		UDP:           sckcfg.Server{Network: protocol.NetworkUDP, Address: addr},
		Audit:         auditLog,
		Metrics:       metrics.New(),
		Log:           log,
		QueueDepth:    256,
	}

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("collabd: %w", err)
	}

	errCh := make(chan error, 2)
	go func() { errCh <- srv.Run(ctx) }()

	var admin *adminapi.Server
	if f.adminAddr != "" {
		admin = adminapi.New(f.adminAddr, srv, cfg.Metrics, log)
		go func() { errCh <- admin.Listen(ctx) }()
	}

	if !f.noShell {
		sh := shell.New(srv, auditLog, cr, backup)
		go func() {
			if err := sh.Run(); err != nil {
				log().Warning("collabd: shell exited", err)
			}
			stop()
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			log().Error("collabd: fatal", err)
			return err
		}
	}
	return nil
}

func newLogger() liblog.FuncLog {
	lg := liblog.New(context.Background())
	return func() liblog.Logger { return lg }
}
