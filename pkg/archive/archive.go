/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

// Package archive persists readout sweeps in an embedded database so
// bench runs can be inspected after the fact.
package archive

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"jinr.ru/greenlab/go-spi/pkg/config"
	"jinr.ru/greenlab/go-spi/pkg/log"
	"jinr.ru/greenlab/go-spi/pkg/session"
)

const (
	// BucketCaptures holds one record per saved readout sweep keyed
	// by a monotonic sequence number.
	BucketCaptures = "captures"
	// BucketRegisters holds the last value seen for every register
	// read back without error, keyed by address.
	BucketRegisters = "registers"
)

// Record is one archived readout sweep
type Record struct {
	Seq  uint64
	Time time.Time
	Rows []session.Reading
}

type Archive struct {
	context.Context
	DB *bbolt.DB
}

func NewArchive(ctx context.Context, cfg *config.Config) (*Archive, error) {
	log.Debug("Opening archive: %s", cfg.ArchivePath())

	db, err := bbolt.Open(cfg.ArchivePath(), 0600, nil)
	if err != nil {
		return nil, err
	}
	if err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{BucketCaptures, BucketRegisters} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &Archive{
		Context: ctx,
		DB:      db,
	}, nil
}

func (a *Archive) Close() {
	a.DB.Close()
}

func uint64ToByte(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// encodeRecord lays a record out as an 8 byte timestamp followed by
// one addr value status triplet per row
func encodeRecord(t time.Time, rows []session.Reading) []byte {
	blob := make([]byte, 8, 8+3*len(rows))
	binary.BigEndian.PutUint64(blob, uint64(t.UnixNano()))
	for _, row := range rows {
		blob = append(blob, row.Addr, row.Value, row.Status)
	}
	return blob
}

func decodeRecord(seq uint64, blob []byte) (Record, error) {
	if len(blob) < 8 || (len(blob)-8)%3 != 0 {
		return Record{}, errors.New(fmt.Sprintf("Malformed capture record: seq: %d", seq))
	}
	record := Record{
		Seq:  seq,
		Time: time.Unix(0, int64(binary.BigEndian.Uint64(blob[:8]))).UTC(),
	}
	for i := 8; i < len(blob); i += 3 {
		record.Rows = append(record.Rows, session.Reading{
			Addr:   blob[i],
			Value:  blob[i+1],
			Status: blob[i+2],
		})
	}
	return record, nil
}

// Put archives one readout sweep and refreshes the last known value of
// every register the sweep read back without error
func (a *Archive) Put(rows []session.Reading) error {
	log.Debug("Archiving capture: rows: %d", len(rows))

	return a.DB.Update(func(tx *bbolt.Tx) error {
		captures := tx.Bucket([]byte(BucketCaptures))
		if captures == nil {
			return errors.New(fmt.Sprintf("Bucket not found: %s", BucketCaptures))
		}
		seq, err := captures.NextSequence()
		if err != nil {
			return err
		}
		if err := captures.Put(uint64ToByte(seq), encodeRecord(time.Now().UTC(), rows)); err != nil {
			return err
		}

		registers := tx.Bucket([]byte(BucketRegisters))
		if registers == nil {
			return errors.New(fmt.Sprintf("Bucket not found: %s", BucketRegisters))
		}
		for _, row := range rows {
			if row.Status != 0 {
				continue
			}
			if err := registers.Put([]byte{row.Addr}, []byte{row.Value}); err != nil {
				return err
			}
		}
		return nil
	})
}

// Records returns all archived sweeps in capture order
func (a *Archive) Records() ([]Record, error) {
	log.Debug("Listing archived captures")

	var records []Record
	if err := a.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketCaptures))
		if b == nil {
			return errors.New(fmt.Sprintf("Bucket not found: %s", BucketCaptures))
		}
		return b.ForEach(func(k, v []byte) error {
			record, err := decodeRecord(binary.BigEndian.Uint64(k), v)
			if err != nil {
				return err
			}
			records = append(records, record)
			return nil
		})
	}); err != nil {
		return nil, err
	}
	return records, nil
}

// Registers returns the last known value of every archived register in
// address order
func (a *Archive) Registers() ([]session.Reading, error) {
	log.Debug("Listing archived registers")

	var rows []session.Reading
	if err := a.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketRegisters))
		if b == nil {
			return errors.New(fmt.Sprintf("Bucket not found: %s", BucketRegisters))
		}
		return b.ForEach(func(k, v []byte) error {
			if len(k) != 1 || len(v) != 1 {
				return errors.New("Malformed register record")
			}
			rows = append(rows, session.Reading{Addr: k[0], Value: v[0]})
			return nil
		})
	}); err != nil {
		return nil, err
	}
	return rows, nil
}
