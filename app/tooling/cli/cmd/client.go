package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// client is used for every call to the node. Mining can take a while.
var client = http.Client{
	Timeout: 5 * time.Minute,
}

// call sends the request to the node and prints the response body indented.
func call(method string, path string, dataSend any) error {
	var body io.Reader
	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, strings.TrimSuffix(nodeURL, "/")+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		out.Reset()
		out.Write(data)
	}
	fmt.Fprintln(os.Stdout, out.String())

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("node responded with status %d", resp.StatusCode)
	}

	return nil
}
