package binary

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net/http"

	"github.com/S1riyS/tfs/internal/models"
)

// DirentNameSize is the fixed, zero-padded width of a name on the wire.
const DirentNameSize = 64

func EncodeNodeMeta(meta *models.NodeMeta) ([]byte, error) {
	buf := new(bytes.Buffer)

	// ino (int64, 8 bytes)
	if err := binary.Write(buf, binary.LittleEndian, meta.Ino); err != nil {
		return nil, fmt.Errorf("failed to encode ino: %w", err)
	}

	// type (int16, 2 bytes)
	if err := binary.Write(buf, binary.LittleEndian, int16(meta.Type)); err != nil {
		return nil, fmt.Errorf("failed to encode type: %w", err)
	}

	// size (int64, 8 bytes)
	if err := binary.Write(buf, binary.LittleEndian, meta.Size); err != nil {
		return nil, fmt.Errorf("failed to encode size: %w", err)
	}

	// links (uint32, 4 bytes)
	if err := binary.Write(buf, binary.LittleEndian, uint32(meta.Links)); err != nil {
		return nil, fmt.Errorf("failed to encode links: %w", err)
	}

	return buf.Bytes(), nil
}

func EncodeDirent(dirent *models.Dirent) ([]byte, error) {
	if len(dirent.Name) >= DirentNameSize {
		return nil, fmt.Errorf("name %q does not fit in %d bytes", dirent.Name, DirentNameSize)
	}

	buf := new(bytes.Buffer)

	// name (char[64], null-terminated, padded with zeros)
	nameBytes := make([]byte, DirentNameSize)
	copy(nameBytes, dirent.Name)
	buf.Write(nameBytes)

	// ino (int64, 8 bytes)
	if err := binary.Write(buf, binary.LittleEndian, dirent.Ino); err != nil {
		return nil, fmt.Errorf("failed to encode ino: %w", err)
	}

	// type (int16, 2 bytes)
	if err := binary.Write(buf, binary.LittleEndian, int16(dirent.Type)); err != nil {
		return nil, fmt.Errorf("failed to encode type: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteResponse sends the return code (0 or -errno) followed by data.
func WriteResponse(w http.ResponseWriter, code int64, data []byte) error {
	response := new(bytes.Buffer)

	if err := binary.Write(response, binary.LittleEndian, code); err != nil {
		return fmt.Errorf("failed to write response code: %w", err)
	}

	if data != nil {
		response.Write(data)
	}

	body := response.Bytes()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(body)))
	w.Header().Set("Connection", "close")
	w.WriteHeader(http.StatusOK)

	_, err := w.Write(body)
	return err
}

func WriteUint32Response(w http.ResponseWriter, code int64, value uint32) error {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, value); err != nil {
		return err
	}
	return WriteResponse(w, code, buf.Bytes())
}

func WriteInt64Response(w http.ResponseWriter, code int64, value int64) error {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, value); err != nil {
		return err
	}
	return WriteResponse(w, code, buf.Bytes())
}

// DecodeResponse splits a response body into its code and payload.
func DecodeResponse(body []byte) (int64, []byte, error) {
	if len(body) < 8 {
		return 0, nil, fmt.Errorf("short response: %d bytes", len(body))
	}
	code := int64(binary.LittleEndian.Uint64(body[:8]))
	return code, body[8:], nil
}
