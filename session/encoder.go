package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const tokenRecordVersionV1 = 1

func encodeTokenRecord(subject string, expiresAt int64) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(tokenRecordVersionV1)
	if err := binary.Write(&buf, binary.BigEndian, expiresAt); err != nil {
		return nil, err
	}

	if len(subject) > 65535 {
		return nil, errors.New("token record subject too long")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(subject))); err != nil {
		return nil, err
	}
	buf.WriteString(subject)

	return buf.Bytes(), nil
}

func decodeTokenRecord(data []byte) (string, int64, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return "", 0, err
	}
	if version != tokenRecordVersionV1 {
		return "", 0, errors.New("invalid token record version")
	}

	var expiresAt int64
	if err := binary.Read(reader, binary.BigEndian, &expiresAt); err != nil {
		return "", 0, err
	}

	var subjectLen uint16
	if err := binary.Read(reader, binary.BigEndian, &subjectLen); err != nil {
		return "", 0, err
	}

	subject := make([]byte, subjectLen)
	if _, err := io.ReadFull(reader, subject); err != nil {
		return "", 0, err
	}

	return string(subject), expiresAt, nil
}
