package replay

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	gametypes "github.com/ch1nq/arcadio-go/pkg/game/types"
	"github.com/ch1nq/arcadio-go/pkg/messages"
	"github.com/klauspost/compress/zstd"
)

// maxRecordSize bounds a single journal line. It matches the largest
// message the transport will deliver.
const maxRecordSize = 4 << 20

var newline = []byte("\n")

// Recorder writes the raw inbound wire messages of one session to a
// zstd-compressed journal, one message per line. Messages are stored
// exactly as received, so a journal can be replayed through the codec
// afterwards.
type Recorder struct {
	zw   *zstd.Encoder
	file *os.File
}

func NewRecorder(w io.Writer) (*Recorder, error) {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd writer: %v", err)
	}
	return &Recorder{zw: zw}, nil
}

// NewFileRecorder creates a journal file for the session in dir.
func NewFileRecorder(dir, session string) (*Recorder, error) {
	f, err := os.Create(filepath.Join(dir, session+".jsonl.zst"))
	if err != nil {
		return nil, fmt.Errorf("failed to create journal file: %v", err)
	}
	r, err := NewRecorder(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.file = f
	return r, nil
}

// RecordMessage appends one raw message to the journal.
func (r *Recorder) RecordMessage(b []byte) error {
	if _, err := r.zw.Write(b); err != nil {
		return fmt.Errorf("failed to write journal record: %v", err)
	}
	if _, err := r.zw.Write(newline); err != nil {
		return fmt.Errorf("failed to write journal record: %v", err)
	}
	return nil
}

// Close flushes the journal and closes the underlying file if the
// recorder opened it.
func (r *Recorder) Close() error {
	if err := r.zw.Close(); err != nil {
		if r.file != nil {
			r.file.Close()
		}
		return fmt.Errorf("failed to close zstd writer: %v", err)
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// Reader iterates the messages of a journal.
type Reader struct {
	zr      *zstd.Decoder
	scanner *bufio.Scanner
}

func NewReader(r io.Reader) (*Reader, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %v", err)
	}
	scanner := bufio.NewScanner(zr)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)
	return &Reader{
		zr:      zr,
		scanner: scanner,
	}, nil
}

// Next returns the next recorded message, or io.EOF after the last one.
func (r *Reader) Next() ([]byte, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read journal: %v", err)
		}
		return nil, io.EOF
	}
	// The scanner reuses its buffer between records.
	b := r.scanner.Bytes()
	record := make([]byte, len(b))
	copy(record, b)
	return record, nil
}

func (r *Reader) Close() {
	r.zr.Close()
}

// Rebuild replays a journal through the codec and the diff merge and
// returns the final game state.
func Rebuild(r io.Reader) (*gametypes.GameState, error) {
	reader, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var state *gametypes.GameState
	for {
		record, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		event, err := messages.DecodeServerEvent(record)
		if err != nil {
			return nil, err
		}
		switch e := event.(type) {
		case messages.InitialState:
			state = e.State
		case messages.UpdateState:
			if state == nil {
				return nil, fmt.Errorf("journal has an update before the initial state")
			}
			state.MergeDiff(e.Diff)
		default:
			// AssignPlayerId and GameOver carry no state.
		}
	}
	if state == nil {
		return nil, fmt.Errorf("journal has no initial state")
	}
	return state, nil
}
