package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
)

const chainURL = "http://%s/chain"

// HTTPFetcher retrieves a peer's chain over HTTP.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher constructs a fetcher where every request must complete
// within the specified timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchChain asks the peer for its chain. A response missing the chain or
// the length, or reporting a length that doesn't match the chain, is
// treated as a failure.
func (f *HTTPFetcher) FetchChain(ctx context.Context, pr peer.Peer) (peer.ChainStatus, error) {
	url := fmt.Sprintf(chainURL, pr.Host)

	var resp struct {
		Chain  *[]database.Block `json:"chain"`
		Length *int              `json:"length"`
	}
	if err := send(ctx, f.client, http.MethodGet, url, nil, &resp); err != nil {
		return peer.ChainStatus{}, err
	}

	switch {
	case resp.Chain == nil:
		return peer.ChainStatus{}, errors.New("response is missing the chain")
	case resp.Length == nil:
		return peer.ChainStatus{}, errors.New("response is missing the length")
	case *resp.Length != len(*resp.Chain):
		return peer.ChainStatus{}, fmt.Errorf("reported length %d doesn't match chain length %d", *resp.Length, len(*resp.Chain))
	}

	status := peer.ChainStatus{
		Chain:  *resp.Chain,
		Length: *resp.Length,
	}

	return status, nil
}

// =============================================================================

// send is a helper function to send an HTTP request to a node.
func send(ctx context.Context, client *http.Client, method string, url string, dataSend any, dataRecv any) error {
	var body io.Reader
	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	if dataSend != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return err
		}
	}

	return nil
}
