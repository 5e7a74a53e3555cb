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

// Package audit keeps a local SQLite forensic trail of every Koinonia
// version change, purely additive to the live protocol and queried only by
// the shell's `audit <name>` command. Built on the teacher's database/gorm
// wrapper, pinned to its sqlite driver.
package audit

import (
	"time"

	libgorm "github.com/sabouaram/collab/database/gorm"
)

// Entry is one row of the audit_entries table: a single version change of
// one named Koinonia object.
type Entry struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	Object    string `gorm:"index"`
	Version   uint64
	ClientID  uint32
	Timestamp time.Time
}

// TableName pins the GORM model to a stable name instead of pluralizing
// "Entry".
func (Entry) TableName() string { return "audit_entries" }

// Log opens (or creates) a SQLite database at path and migrates the
// audit_entries table.
type Log struct {
	db libgorm.Database
}

// Open returns a Log backed by the SQLite file at path.
func Open(path string) (*Log, error) {
	db, err := libgorm.New(&libgorm.Config{
		Driver: libgorm.DriverSQLite,
		DSN:    path,
	})
	if err != nil {
		return nil, err
	}
	if e := db.GetDB().AutoMigrate(&Entry{}); e != nil {
		return nil, e
	}
	return &Log{db: db}, nil
}

// Record appends one version-change entry, called whenever the server
// emits ReplaceObjectNotification, CreateObjectReply or
// CreateNsObjectNotification.
func (l *Log) Record(object string, version uint64, clientID uint32) error {
	return l.db.GetDB().Create(&Entry{
		Object:    object,
		Version:   version,
		ClientID:  clientID,
		Timestamp: time.Now(),
	}).Error
}

// History returns every recorded entry for object, oldest first, for the
// shell's `audit <name>` command.
func (l *Log) History(object string) ([]Entry, error) {
	var entries []Entry
	err := l.db.GetDB().Where("object = ?", object).Order("id asc").Find(&entries).Error
	return entries, err
}

// Close releases the underlying database connection.
func (l *Log) Close() {
	l.db.Close()
}
