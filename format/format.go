// Package format renders health endpoint bodies for display.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"
)

// Indent renders raw JSON with 2 space indentation and no trailing newline.
// Object keys keep the order the server sent them in.
func Indent(raw []byte) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", fmt.Errorf("failed to indent JSON: %w", err)
	}
	return strings.TrimRight(buf.String(), " \t\r\n"), nil
}

// Status returns the top level "status" field of an object body.
func Status(raw []byte) (status string, ok bool) {
	if !gjson.ValidBytes(raw) {
		return "", false
	}
	if !gjson.ParseBytes(raw).IsObject() {
		return "", false
	}
	r := gjson.GetBytes(raw, "status")
	if !r.Exists() {
		return "", false
	}
	return r.String(), true
}

// YAML renders raw JSON as block style YAML.
func YAML(raw []byte) (string, error) {
	var n yaml.Node
	if err := yaml.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("failed to parse JSON as YAML: %w", err)
	}
	blockStyle(&n)
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&n); err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// JSON input parses as flow style with quoted strings, reset it so the
// encoder picks its own style.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// Color adds ANSI colours to indented JSON text.
func Color(text string) string {
	return string(pretty.Color([]byte(text), nil))
}
