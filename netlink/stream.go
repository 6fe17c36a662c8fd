package netlink

import (
	"context"
	"fmt"
	"log/slog"

	nl "github.com/mdlayher/netlink"
	"github.com/scitags/sockdiag-go/types"
)

// dataHandler is handed the payload of every data message in arrival order.
// The payload slice must not be retained.
type dataHandler func(h nl.Header, payload []byte) error

// readStream keeps on receiving datagrams until NLMSG_DONE shows up. An
// NLMSG_ERROR message or any malformed message stops the loop right away.
func readStream(logger *slog.Logger, t Transport, onData dataHandler) error {
	for nChunk := 0; ; nChunk++ {
		chunk, err := t.Receive()
		if err != nil {
			return err
		}
		logger.Log(context.Background(), types.LevelTrace, "received datagram", "chunk", nChunk, "len", len(chunk))

		done, err := scanChunk(logger, chunk, onData)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// scanChunk walks the messages within a single datagram. It returns true once
// NLMSG_DONE has been found. Messages are never carried over to the next
// datagram: trailing bytes shorter than a header are dropped.
func scanChunk(logger *slog.Logger, chunk []byte, onData dataHandler) (bool, error) {
	offset := 0
	for offset+sizeofHeader <= len(chunk) {
		h, err := DecodeHeader(chunk[offset:])
		if err != nil {
			return false, err
		}
		logger.Log(context.Background(), types.LevelTrace, "parsed netlink header",
			"offset", offset, "len", h.Length, "type", h.Type, "flags", h.Flags, "seq", h.Sequence)

		payloadOffset := offset + Align(sizeofHeader)

		switch h.Type {
		case nl.Error:
			e, err := DecodeErrorFrame(chunk[payloadOffset:])
			if err != nil {
				return false, err
			}
			return false, &ProtocolError{Code: e.Code, Header: e.Header}

		case nl.Done:
			return true, nil
		}

		// A length below the header size would have us spinning on the
		// same offset forever.
		if int(h.Length) < sizeofHeader {
			return false, fmt.Errorf("%w: message at offset %d declares %d bytes, less than its own header",
				ErrTruncatedMessage, offset, h.Length)
		}
		if int(h.Length) > len(chunk)-offset {
			return false, fmt.Errorf("%w: message at offset %d declares %d bytes but only %d are left",
				ErrTruncatedMessage, offset, h.Length, len(chunk)-offset)
		}

		// The payload ends where the header says, alignment only applies
		// when stepping onto the next message.
		if err := onData(h, chunk[payloadOffset:offset+int(h.Length)]); err != nil {
			return false, err
		}

		offset += Align(int(h.Length))
	}

	return false, nil
}
