// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

// FileMagic identifies a capture file. A header with any other magic
// is rejected outright.
const FileMagic = "frontmcp-devdash-capture"

// FormatVersion is the capture format version this build reads and
// writes.
const FormatVersion = 1

// encMode encodes with Core Deterministic Encoding so the same
// recording always produces identical bytes, which makes the footer
// hash meaningful across builds.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("capture: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("capture: CBOR decoder initialization failed: " + err.Error())
	}
}

// Header is the first CBOR value in a capture file.
type Header struct {
	Magic     string `cbor:"magic"`
	Version   int    `cbor:"version"`
	CreatedAt int64  `cbor:"createdAt"`
	Transport string `cbor:"transport"`
}

// Frame is one recorded transport line.
type Frame struct {
	// OffsetMS is the line's arrival time relative to the start of the
	// recording.
	OffsetMS int64  `cbor:"offsetMs"`
	Tag      uint8  `cbor:"tag"`
	RawSize  int    `cbor:"rawSize"`
	Data     []byte `cbor:"data"`
}

// Footer terminates a capture file. Hash is the BLAKE3 digest of every
// byte before the footer.
type Footer struct {
	End    bool   `cbor:"end"`
	Frames int    `cbor:"frames"`
	Hash   []byte `cbor:"hash"`
}

// Writer records transport lines to a capture file. Safe for use from
// the single transport goroutine only.
type Writer struct {
	file    *os.File
	hasher  *blake3.Hasher
	encoder *cbor.Encoder
	start   time.Time
	tag     CompressionTag
	frames  int
	path    string
}

// NewWriter creates a capture file in dir with a unique name and
// writes the header. Transport names the active source ("socket" or
// "pipe") for later inspection.
func NewWriter(dir, transport string, tag CompressionTag) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating capture dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("capture-%s.fmc", uuid.New()))
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating capture file: %w", err)
	}

	writer := &Writer{
		file:   file,
		hasher: blake3.New(),
		start:  time.Now(),
		tag:    tag,
		path:   path,
	}
	// Header and frames flow through the hasher; the footer does not.
	writer.encoder = encMode.NewEncoder(io.MultiWriter(file, writer.hasher))

	header := Header{
		Magic:     FileMagic,
		Version:   FormatVersion,
		CreatedAt: writer.start.UnixMilli(),
		Transport: transport,
	}
	if err := writer.encoder.Encode(header); err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("writing capture header: %w", err)
	}
	return writer, nil
}

// Path returns the capture file's location.
func (writer *Writer) Path() string {
	return writer.path
}

// RecordLine appends one transport line.
func (writer *Writer) RecordLine(line string) error {
	raw := []byte(line)
	data, tag, err := compress(raw, writer.tag)
	if err != nil {
		return err
	}
	frame := Frame{
		OffsetMS: time.Since(writer.start).Milliseconds(),
		Tag:      uint8(tag),
		RawSize:  len(raw),
		Data:     data,
	}
	if err := writer.encoder.Encode(frame); err != nil {
		return fmt.Errorf("writing capture frame: %w", err)
	}
	writer.frames++
	return nil
}

// Close writes the footer and closes the file.
func (writer *Writer) Close() error {
	footer := Footer{
		End:    true,
		Frames: writer.frames,
		Hash:   writer.hasher.Sum(nil),
	}
	if err := encMode.NewEncoder(writer.file).Encode(footer); err != nil {
		writer.file.Close()
		return fmt.Errorf("writing capture footer: %w", err)
	}
	return writer.file.Close()
}

// Recording is a fully-read capture: the header plus every line with
// its original offset.
type Recording struct {
	Header Header
	Lines  []RecordedLine
}

// RecordedLine is one decoded frame.
type RecordedLine struct {
	OffsetMS int64
	Line     string
}

// footerProbe distinguishes the footer from frames in the CBOR
// sequence.
type footerProbe struct {
	End bool `cbor:"end"`
}

// Read loads and verifies a capture file: header magic and version,
// every frame, and the footer hash and frame count.
func Read(path string) (*Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading capture %s: %w", path, err)
	}

	var header Header
	rest, err := decMode.UnmarshalFirst(data, &header)
	if err != nil {
		return nil, fmt.Errorf("decoding capture header: %w", err)
	}
	if header.Magic != FileMagic {
		return nil, fmt.Errorf("not a capture file (magic %q)", header.Magic)
	}
	if header.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported capture version %d", header.Version)
	}

	recording := &Recording{Header: header}
	for {
		if len(rest) == 0 {
			return nil, fmt.Errorf("capture truncated: no footer")
		}

		var probe footerProbe
		if _, err := decMode.UnmarshalFirst(rest, &probe); err != nil {
			return nil, fmt.Errorf("decoding capture item %d: %w", len(recording.Lines), err)
		}
		if probe.End {
			break
		}

		var frame Frame
		rest, err = decMode.UnmarshalFirst(rest, &frame)
		if err != nil {
			return nil, fmt.Errorf("decoding capture frame %d: %w", len(recording.Lines), err)
		}
		raw, err := decompress(frame.Data, CompressionTag(frame.Tag), frame.RawSize)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", len(recording.Lines), err)
		}
		recording.Lines = append(recording.Lines, RecordedLine{
			OffsetMS: frame.OffsetMS,
			Line:     string(raw),
		})
	}

	var footer Footer
	if _, err := decMode.UnmarshalFirst(rest, &footer); err != nil {
		return nil, fmt.Errorf("decoding capture footer: %w", err)
	}
	if footer.Frames != len(recording.Lines) {
		return nil, fmt.Errorf("capture frame count mismatch: footer says %d, found %d",
			footer.Frames, len(recording.Lines))
	}

	hashed := data[:len(data)-len(rest)]
	digest := blake3.Sum256(hashed)
	if !bytes.Equal(digest[:], footer.Hash) {
		return nil, fmt.Errorf("capture hash mismatch: file is corrupt")
	}
	return recording, nil
}

// Verify checks a capture file's integrity and returns its frame
// count.
func Verify(path string) (int, error) {
	recording, err := Read(path)
	if err != nil {
		return 0, err
	}
	return len(recording.Lines), nil
}

// Replay feeds a recording's lines into the channel, sleeping the
// original inter-line gaps when paced. The channel closes when the
// recording ends or ctx is cancelled.
func Replay(ctx context.Context, recording *Recording, lines chan<- string, paced bool) {
	defer close(lines)

	var previous int64
	for _, recorded := range recording.Lines {
		if paced {
			gap := time.Duration(recorded.OffsetMS-previous) * time.Millisecond
			previous = recorded.OffsetMS
			if gap > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(gap):
				}
			}
		}
		select {
		case <-ctx.Done():
			return
		case lines <- recorded.Line:
		}
	}
}
