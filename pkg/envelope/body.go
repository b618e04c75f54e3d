package envelope

import (
	"encoding/base64"
	"fmt"

	"github.com/sirosfoundation/go-ebics/pkg/compression"
)

// BodyHandler wraps order-data payloads into the body element. Binary
// payloads are ZLIB-compressed and base64-encoded per the protocol's
// double-encoding requirement.
type BodyHandler struct {
	compressor *compression.Compressor
}

// NewBodyHandler creates a body handler.
func NewBodyHandler() *BodyHandler {
	return &BodyHandler{
		compressor: compression.NewCompressor(),
	}
}

// AppendOrderDataBody embeds the given order-data XML fragment:
// body > DataTransfer > OrderData holds base64(zlib(orderData)).
func (b *BodyHandler) AppendOrderDataBody(req *Request, orderData []byte) error {
	compressed, err := b.compressor.Compress(orderData)
	if err != nil {
		return fmt.Errorf("compressing order data: %w", err)
	}

	body := req.Root().CreateElement("body")
	dataTransfer := body.CreateElement("DataTransfer")
	dataTransfer.CreateElement("OrderData").SetText(base64.StdEncoding.EncodeToString(compressed))

	return nil
}

// AppendEmptyBody writes the empty body of an HPB request.
func (b *BodyHandler) AppendEmptyBody(req *Request) {
	req.Root().CreateElement("body")
}
