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

// Package shell is collabd's interactive admin console: a line-at-a-time
// REPL, built on the teacher's console package the same way its own
// operator tools are, for inspecting and editing the live Koinonia table
// without going through the wire protocol.
package shell

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/sabouaram/collab/audit"
	"github.com/sabouaram/collab/console"
	"github.com/sabouaram/collab/crypt"
	"github.com/sabouaram/collab/koinonia"
	"github.com/sabouaram/collab/persist"
	"github.com/sabouaram/collab/persist/remote"
	"github.com/sabouaram/collab/server"
	"github.com/sabouaram/collab/wire"
)

// Shell is one REPL session bound to a running server.
type Shell struct {
	srv    *server.Server
	log    *audit.Log
	cr     crypt.Crypt
	backup remote.Target
	out    io.Writer
	in     *bufio.Scanner
}

// New returns a Shell reading commands from os.Stdin and writing to
// os.Stdout. log may be nil, in which case `audit` reports no history. cr
// may be nil, in which case `save` writes plaintext dumps and `load`
// refuses any dump with its CryptFlag set. backup may be nil, in which
// case `backup` reports it is unconfigured.
func New(srv *server.Server, log *audit.Log, cr crypt.Crypt, backup remote.Target) *Shell {
	return &Shell{srv: srv, log: log, cr: cr, backup: backup, out: os.Stdout, in: bufio.NewScanner(os.Stdin)}
}

// SetOutput redirects command output away from os.Stdout, for embedding a
// Shell behind something other than a terminal.
func (sh *Shell) SetOutput(w io.Writer) {
	sh.out = w
}

// Exec runs a single command line as Run would, without the prompt/EOF
// loop; `exit`/`quit` are no-ops here since there is no loop to end.
func (sh *Shell) Exec(line string) error {
	return sh.dispatch(strings.TrimSpace(line))
}

// Run reads and executes commands until EOF or an `exit`/`quit` line.
// console.PromptString hides whether its empty return means a blank line
// or end of input, so Run drives its own Scanner rather than going through
// it for the read itself; console is still used for the colored prompt and
// error output.
func (sh *Shell) Run() error {
	for {
		console.ColorPrompt.Print("collabd> ")
		if !sh.in.Scan() {
			return sh.in.Err()
		}
		line := strings.TrimSpace(sh.in.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}
		if err := sh.dispatch(line); err != nil {
			console.ColorPrint.Println("error: " + err.Error())
		}
	}
}

func (sh *Shell) dispatch(line string) error {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "list":
		return sh.cmdList()
	case "print":
		return sh.cmdPrint(args)
	case "save":
		return sh.cmdSave(args)
	case "load":
		return sh.cmdLoad(args)
	case "backup":
		return sh.cmdBackup()
	case "delete":
		return sh.cmdDelete(args)
	case "audit":
		return sh.cmdAudit(args)
	case "clients":
		return sh.cmdClients()
	case "help":
		return sh.cmdHelp()
	default:
		return fmt.Errorf("unknown command %q (try `help`)", cmd)
	}
}

func (sh *Shell) cmdHelp() error {
	fmt.Fprintln(sh.out, `commands:
  list                 list every global object's name and version
  print <name>         print one object's full state
  save <path>          dump every global object to path
  load <path>          merge objects from a dump into the live table
  backup               push a dump to the configured off-box S3/FTP target
  delete <name>        remove a global object (admin-only, no wire equivalent)
  audit <name>         show an object's replace history
  clients              list connected clients
  exit | quit          leave the shell`)
	return nil
}

func (sh *Shell) cmdList() error {
	names := sh.srv.Koinonia().Names()
	sort.Strings(names)
	snap := sh.srv.Koinonia().Snapshot()
	for _, name := range names {
		fmt.Fprintf(sh.out, "%s\tv%d\n", name, snap[name])
	}
	return nil
}

func (sh *Shell) cmdPrint(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: print <name>")
	}
	obj, ok := sh.srv.Koinonia().Lookup(args[0])
	if !ok {
		return fmt.Errorf("no such object %q", args[0])
	}
	fmt.Fprintf(sh.out, "name:    %s\nserver:  %d\ntype:    %d\nversion: %d\nsubs:    %d\npayload: %d bytes\n",
		obj.Name, obj.ServerID, obj.TypeID, obj.Version, len(obj.Subscribers), len(obj.Payload))
	return nil
}

// dumpAll collects every live global object into the shape persist.Dump
// wants, reusing whichever object's Dict is non-nil (they all share the
// one wire.Dictionary negotiated at handshake time).
func (sh *Shell) dumpAll() (*wire.Dictionary, []persist.Object) {
	all := sh.srv.Koinonia().All()
	objs := make([]persist.Object, 0, len(all))
	dict := wire.NewDictionary()
	for _, g := range all {
		objs = append(objs, persist.Object{
			Name:    g.Name,
			TypeID:  g.TypeID,
			Version: g.Version,
			Payload: g.Payload,
		})
		if g.Dict != nil {
			dict = g.Dict
		}
	}
	return dict, objs
}

func (sh *Shell) cmdSave(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: save <path>")
	}
	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	dict, objs := sh.dumpAll()
	if err := persist.Dump(f, dict, objs, persist.Options{Gzip: true, Crypt: sh.cr}); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "saved %d objects to %s\n", len(objs), args[0])
	return nil
}

func (sh *Shell) cmdBackup() error {
	if sh.backup == nil {
		return fmt.Errorf("no --backup-s3-* or --backup-ftp-* target configured")
	}
	dict, objs := sh.dumpAll()
	var buf bytes.Buffer
	if err := persist.Dump(&buf, dict, objs, persist.Options{Gzip: true, Crypt: sh.cr}); err != nil {
		return err
	}
	if err := sh.backup.Upload(&buf); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "backed up %d objects\n", len(objs))
	return nil
}

func (sh *Shell) cmdLoad(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: load <path>")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	dict, objs, err := persist.Load(f, sh.cr)
	if err != nil {
		return err
	}
	restored := make([]koinonia.GlobalObject, 0, len(objs))
	for _, o := range objs {
		restored = append(restored, koinonia.GlobalObject{
			Name:        o.Name,
			Dict:        dict,
			TypeID:      o.TypeID,
			Version:     o.Version,
			Payload:     o.Payload,
			Subscribers: map[koinonia.ClientID]struct{}{},
		})
	}
	sh.srv.Koinonia().Restore(restored)
	fmt.Fprintf(sh.out, "restored %d objects from %s\n", len(restored), args[0])
	return nil
}

func (sh *Shell) cmdDelete(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delete <name>")
	}
	if !sh.srv.Koinonia().Delete(args[0]) {
		return fmt.Errorf("no such object %q", args[0])
	}
	fmt.Fprintf(sh.out, "deleted %s\n", args[0])
	return nil
}

func (sh *Shell) cmdAudit(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: audit <name>")
	}
	if sh.log == nil {
		fmt.Fprintln(sh.out, "no audit log configured")
		return nil
	}
	entries, err := sh.log.History(args[0])
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(sh.out, "v%d by client %d\n", e.Version, e.ClientID)
	}
	return nil
}

func (sh *Shell) cmdClients() error {
	for _, c := range sh.srv.Clients() {
		fmt.Fprintf(sh.out, "%d\t%s\n", c.ID, c.Name)
	}
	return nil
}
