package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/icexin/gocraft-quests/quest"
)

var (
	blockBucket = []byte("block")
	chunkBucket = []byte("chunk")
	xpBucket    = []byte("xp")
)

// Store keeps the world and the experience of every player. Quest progress
// is never written here.
type Store struct {
	db *bolt.DB
}

func NewStore(p string) (*Store, error) {
	db, err := bolt.Open(p, 0666, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", p, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{blockBucket, chunkBucket, xpBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}
	db.NoSync = true
	return &Store{
		db: db,
	}, nil
}

func (s *Store) UpdateBlock(id Vec3, w int) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(blockBucket)
		log.Printf("put %v -> %d", id, w)
		// air is stored too, it overrides generated terrain on the client.
		key := encodeBlockDbKey(id.Chunkid(), id)
		return bkt.Put(key, encodeBlockDbValue(w))
	})
}

// GetBlock returns the kind stored at id, or air if nothing was ever placed.
func (s *Store) GetBlock(id Vec3) int {
	var w int
	s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(blockBucket).Get(encodeBlockDbKey(id.Chunkid(), id))
		if v != nil {
			w = decodeBlockDbValue(v)
		}
		return nil
	})
	return w
}

func (s *Store) RangeBlocks(id Vec3, f func(bid Vec3, w int)) error {
	return s.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(blockBucket)
		startkey := encodeBlockDbKey(id, Vec3{0, 0, 0})
		iter := bkt.Cursor()
		for k, v := iter.Seek(startkey); k != nil; k, v = iter.Next() {
			cid, bid := decodeBlockDbKey(k)
			if cid != id {
				break
			}
			f(bid, decodeBlockDbValue(v))
		}
		return nil
	})
}

func (s *Store) UpdateChunkVersion(id Vec3, version string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(chunkBucket)
		return bkt.Put(encodeVec3(id), []byte(version))
	})
}

func (s *Store) GetChunkVersion(id Vec3) string {
	var version string
	s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(chunkBucket).Get(encodeVec3(id))
		if v != nil {
			version = string(v)
		}
		return nil
	})
	return version
}

// AddXP adds amount to the player's experience and returns the new total.
func (s *Store) AddXP(player quest.PlayerID, amount int) (int, error) {
	var total int
	err := s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(xpBucket)
		if v := bkt.Get(player[:]); v != nil {
			total = decodeBlockDbValue(v)
		}
		total += amount
		return bkt.Put(player[:], encodeBlockDbValue(total))
	})
	if err != nil {
		return 0, fmt.Errorf("add xp for %s: %w", player, err)
	}
	return total, nil
}

func (s *Store) XP(player quest.PlayerID) int {
	var total int
	s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(xpBucket).Get(player[:]); v != nil {
			total = decodeBlockDbValue(v)
		}
		return nil
	})
	return total
}

func (s *Store) Close() error {
	s.db.Sync()
	return s.db.Close()
}

func encodeVec3(v Vec3) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, [...]int32{int32(v.X), int32(v.Y), int32(v.Z)})
	return buf.Bytes()
}

func encodeBlockDbKey(cid, bid Vec3) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, [...]int32{int32(cid.X), int32(cid.Z)})
	binary.Write(buf, binary.LittleEndian, [...]int32{int32(bid.X), int32(bid.Y), int32(bid.Z)})
	return buf.Bytes()
}

func decodeBlockDbKey(b []byte) (Vec3, Vec3) {
	if len(b) != 4*5 {
		log.Panicf("bad db key length:%d", len(b))
	}
	buf := bytes.NewBuffer(b)
	var arr [5]int32
	binary.Read(buf, binary.LittleEndian, &arr)

	cid := Vec3{int(arr[0]), 0, int(arr[1])}
	bid := Vec3{int(arr[2]), int(arr[3]), int(arr[4])}
	if bid.Chunkid() != cid {
		log.Panicf("bad db key: cid:%v, bid:%v", cid, bid)
	}
	return cid, bid
}

// values are 4 byte little endian, shared by blocks and xp totals.
func encodeBlockDbValue(w int) []byte {
	value := make([]byte, 4)
	binary.LittleEndian.PutUint32(value, uint32(w))
	return value
}

func decodeBlockDbValue(b []byte) int {
	if len(b) != 4 {
		log.Panicf("bad db value length:%d", len(b))
	}
	return int(binary.LittleEndian.Uint32(b))
}

func GenerateChunkVersion() string {
	return strconv.FormatInt(time.Now().UnixNano(), 16)
}

const (
	ChunkWidth = 32
)

type Vec3 struct {
	X, Y, Z int
}

func (v Vec3) Chunkid() Vec3 {
	return Vec3{
		int(math.Floor(float64(v.X) / ChunkWidth)),
		0,
		int(math.Floor(float64(v.Z) / ChunkWidth)),
	}
}
