package client

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
)

const apiKeyHeader = "X-API-Key"

// Call sends an RPC request to the server and returns the raw response body.
func Call(address, apiKey, method string, id interface{}, params map[string]interface{}) ([]byte, error) {
	data, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  method,
		"id":      id,
		"params":  params,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", address, strings.NewReader(string(data)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set(apiKeyHeader, apiKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return ioutil.ReadAll(resp.Body)
}

type rpcError struct {
	Code    int64       `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func (e *rpcError) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("%s (%v)", e.Message, e.Data)
	}
	return e.Message
}

// CallResult calls the method and unwraps the JSON RPC envelope, returning
// the raw result or the server's error.
func CallResult(address, apiKey, method string, params map[string]interface{}) (json.RawMessage, error) {
	body, err := Call(address, apiKey, method, 0, params)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *rpcError       `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	if envelope.Error != nil {
		return nil, envelope.Error
	}
	return envelope.Result, nil
}
