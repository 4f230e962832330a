package paging

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/davicafu/hexaquery/internal/listing/domain"
)

const (
	// MinSecretLength es la longitud mínima de la clave HMAC.
	MinSecretLength = 16
	// maxTokenLength acota el trabajo de decodificar tokens arbitrarios.
	maxTokenLength = 2048
)

var ErrWeakSecret = errors.New("cursor secret is too short")

// b64 es estricto: rechaza bits de relleno distintos de cero, así cada token tiene una única forma.
var b64 = base64.RawURLEncoding.Strict()

// HMACCursorCodec firma la posición con HMAC-SHA256.
// Formato: base64url(payload JSON) "." base64url(tag).
type HMACCursorCodec struct {
	secret []byte
}

func NewCursorCodec(secret []byte) (*HMACCursorCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: need at least %d bytes", ErrWeakSecret, MinSecretLength)
	}
	return &HMACCursorCodec{secret: append([]byte(nil), secret...)}, nil
}

func (c *HMACCursorCodec) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write(payload)
	return mac.Sum(nil)
}

func (c *HMACCursorCodec) Encode(pos domain.CursorPosition) (string, error) {
	payload, err := json.Marshal(pos)
	if err != nil {
		return "", fmt.Errorf("encode cursor: %w", err)
	}
	return b64.EncodeToString(payload) + "." + b64.EncodeToString(c.sign(payload)), nil
}

// Decode verifica la firma sobre los bytes exactos antes de interpretar el JSON.
func (c *HMACCursorCodec) Decode(token string) (*domain.CursorPosition, error) {
	if token == "" || len(token) > maxTokenLength {
		return nil, fmt.Errorf("%w: bad length", domain.ErrInvalidCursor)
	}
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: malformed token", domain.ErrInvalidCursor)
	}
	payload, err := b64.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: payload encoding", domain.ErrInvalidCursor)
	}
	tag, err := b64.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: tag encoding", domain.ErrInvalidCursor)
	}
	if !hmac.Equal(tag, c.sign(payload)) {
		return nil, fmt.Errorf("%w: integrity check failed", domain.ErrInvalidCursor)
	}

	var pos domain.CursorPosition
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&pos); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", domain.ErrInvalidCursor, err)
	}
	pos.ID = fromJSONNumber(pos.ID)
	pos.TimeValue = fromJSONNumber(pos.TimeValue)
	pos.KeyValue = fromJSONNumber(pos.KeyValue)
	return &pos, nil
}

// fromJSONNumber devuelve int64 si el número es entero y float64 en otro caso.
func fromJSONNumber(v interface{}) interface{} {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// Verificación estática
var _ domain.CursorCodec = (*HMACCursorCodec)(nil)
