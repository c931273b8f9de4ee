package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/0xPolygon/edge-vault/helper/hex"
	"github.com/0xPolygon/edge-vault/types"
)

// forwardTimeout bounds a single delivery attempt
const forwardTimeout = 30 * time.Second

var errNoForwardURL = errors.New("no forwarding endpoint configured")

// httpForwarder delivers allocated messages to an external execution
// endpoint. Delivery is a single POST per call: the endpoint answers
// 2xx once it executed the call with at least the requested gas,
// anything else fails the forward and the sequencing aborts.
type httpForwarder struct {
	logger hclog.Logger
	url    string
	client *http.Client
}

func newHTTPForwarder(logger hclog.Logger, url string) *httpForwarder {
	return &httpForwarder{
		logger: logger.Named("forwarder"),
		url:    url,
		client: &http.Client{Timeout: forwardTimeout},
	}
}

// forwardRequest is the wire form of a forwarded call. Numeric fields
// are 0x prefixed hex strings.
type forwardRequest struct {
	Target   types.Address `json:"target"`
	Value    string        `json:"value"`
	GasLimit string        `json:"gasLimit"`
	Input    string        `json:"input"`
}

func (f *httpForwarder) Forward(
	ctx context.Context,
	target types.Address,
	value *big.Int,
	gasLimit uint64,
	input []byte,
) error {
	if f.url == "" {
		return errNoForwardURL
	}

	body, err := json.Marshal(&forwardRequest{
		Target:   target,
		Value:    hex.EncodeBig(value),
		GasLimit: hex.EncodeUint64(gasLimit),
		Input:    hex.EncodeToHex(input),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("forwarding endpoint returned status %d", resp.StatusCode)
	}

	f.logger.Debug("call forwarded", "target", target, "value", value, "gas", gasLimit)

	return nil
}
