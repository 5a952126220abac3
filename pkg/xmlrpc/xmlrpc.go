// Package xmlrpc implements the small slice of XML-RPC needed to talk to a
// self-hosted site: string-argument method calls, response decoding into
// generic Go values, and fault handling.
package xmlrpc

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// Fault is an XML-RPC <fault> response.
type Fault struct {
	Code   int
	String string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("xmlrpc fault %d: %s", f.Code, f.String)
}

// Client issues XML-RPC calls against a single endpoint.
type Client struct {
	Endpoint   string
	HTTPClient *http.Client
}

// NewClient creates a client for the given endpoint URL.
func NewClient(endpoint string) *Client {
	return &Client{
		Endpoint:   endpoint,
		HTTPClient: &http.Client{},
	}
}

// Call invokes method with the given string arguments and returns the decoded
// response value. A <fault> response is returned as a *Fault error.
func (c *Client) Call(ctx context.Context, method string, args ...string) (interface{}, error) {
	body, err := encodeMethodCall(method, args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s call: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %d", method, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", method, err)
	}

	return DecodeResponse(data)
}

// --- Encoding ---

func encodeMethodCall(method string, args []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<methodCall><methodName>")
	if err := xml.EscapeText(&buf, []byte(method)); err != nil {
		return nil, err
	}
	buf.WriteString("</methodName><params>")
	for _, arg := range args {
		buf.WriteString("<param><value><string>")
		if err := xml.EscapeText(&buf, []byte(arg)); err != nil {
			return nil, err
		}
		buf.WriteString("</string></value></param>")
	}
	buf.WriteString("</params></methodCall>")
	return buf.Bytes(), nil
}

// --- Decoding ---

type xmlValue struct {
	Str     *string    `xml:"string"`
	Int     *string    `xml:"int"`
	I4      *string    `xml:"i4"`
	Boolean *string    `xml:"boolean"`
	Double  *string    `xml:"double"`
	Array   *xmlArray  `xml:"array"`
	Struct  *xmlStruct `xml:"struct"`
	// Untyped values are treated as strings.
	Raw string `xml:",chardata"`
}

type xmlArray struct {
	Values []xmlValue `xml:"data>value"`
}

type xmlStruct struct {
	Members []xmlMember `xml:"member"`
}

type xmlMember struct {
	Name  string   `xml:"name"`
	Value xmlValue `xml:"value"`
}

type xmlResponse struct {
	XMLName xml.Name   `xml:"methodResponse"`
	Params  []xmlValue `xml:"params>param>value"`
	Fault   *xmlValue  `xml:"fault>value"`
}

// DecodeResponse parses a methodResponse document into a generic Go value
// (string, int, bool, float64, []interface{}, or map[string]interface{}).
// Fault responses come back as a *Fault error.
func DecodeResponse(data []byte) (interface{}, error) {
	var resp xmlResponse
	if err := xml.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Fault != nil {
		return nil, decodeFault(resp.Fault)
	}
	if len(resp.Params) == 0 {
		return nil, nil
	}
	return toGo(&resp.Params[0]), nil
}

func decodeFault(v *xmlValue) error {
	fault := &Fault{}
	m, ok := toGo(v).(map[string]interface{})
	if !ok {
		fault.String = "malformed fault"
		return fault
	}
	if code, ok := m["faultCode"].(int); ok {
		fault.Code = code
	}
	if s, ok := m["faultString"].(string); ok {
		fault.String = s
	}
	return fault
}

func toGo(v *xmlValue) interface{} {
	switch {
	case v.Str != nil:
		return *v.Str
	case v.Int != nil:
		return atoiOrZero(*v.Int)
	case v.I4 != nil:
		return atoiOrZero(*v.I4)
	case v.Boolean != nil:
		return strings.TrimSpace(*v.Boolean) == "1"
	case v.Double != nil:
		f, _ := strconv.ParseFloat(strings.TrimSpace(*v.Double), 64)
		return f
	case v.Array != nil:
		out := make([]interface{}, 0, len(v.Array.Values))
		for i := range v.Array.Values {
			out = append(out, toGo(&v.Array.Values[i]))
		}
		return out
	case v.Struct != nil:
		out := make(map[string]interface{}, len(v.Struct.Members))
		for i := range v.Struct.Members {
			out[v.Struct.Members[i].Name] = toGo(&v.Struct.Members[i].Value)
		}
		return out
	default:
		return strings.TrimSpace(v.Raw)
	}
}

func atoiOrZero(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
