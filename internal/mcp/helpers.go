package mcp

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mvp-joe/codecontext/internal/extract"
)

// ExtractRequest holds the extract_declarations arguments.
type ExtractRequest struct {
	Text     string   `json:"text"`
	Filename string   `json:"filename,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// AnalyzeRequest holds the analyze_project arguments.
type AnalyzeRequest struct {
	Path        string   `json:"path,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	IncludeTree *bool    `json:"include_tree,omitempty"`
}

// bindArguments decodes the request arguments into target. Some clients
// send every parameter as a string, so JSON-encoded arrays, booleans and
// numbers inside strings are coerced to the field's type.
func bindArguments[T any](request mcp.CallToolRequest, target *T) error {
	raw := request.GetRawArguments()
	if raw == nil {
		return nil
	}
	args, ok := raw.(map[string]interface{})
	if !ok {
		return fmt.Errorf("invalid arguments format")
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			jsonStringHook,
			mapstructure.StringToSliceHookFunc(","),
		),
		Result:  target,
		TagName: "json",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(args)
}

// jsonStringHook decodes strings that hold JSON arrays, booleans or numbers
// when the destination expects one.
func jsonStringHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	raw := strings.TrimSpace(reflect.ValueOf(data).String())
	if raw == "" {
		return data, nil
	}

	switch {
	case to.Kind() == reflect.Slice && strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]"):
		slicePtr := reflect.New(to)
		if err := json.Unmarshal([]byte(raw), slicePtr.Interface()); err == nil {
			return slicePtr.Elem().Interface(), nil
		}
	case to.Kind() == reflect.Bool || (to.Kind() == reflect.Ptr && to.Elem().Kind() == reflect.Bool):
		if raw == "true" || raw == "false" {
			return raw == "true", nil
		}
	case to.Kind() >= reflect.Int && to.Kind() <= reflect.Float64:
		var n json.Number
		if err := json.Unmarshal([]byte(raw), &n); err == nil {
			return n, nil
		}
	}
	return data, nil
}

// marshalToolResponse marshals a response object to JSON and returns it as an MCP tool result.
func marshalToolResponse(response interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// parseTags converts tag names to extract.Tag values, rejecting names the
// registry does not know.
func parseTags(registry extract.Registry, names []string) ([]extract.Tag, error) {
	tags := make([]extract.Tag, 0, len(names))
	for _, name := range names {
		tag := extract.Tag(strings.TrimSpace(name))
		if _, ok := registry.Lookup(tag); !ok {
			return nil, fmt.Errorf("invalid tag %q", name)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// filterByTags keeps declarations whose tag is in tags. An empty tags list
// keeps everything.
func filterByTags(decls []extract.Declaration, tags []extract.Tag) []extract.Declaration {
	if len(tags) == 0 {
		return decls
	}
	want := make(map[extract.Tag]bool, len(tags))
	for _, t := range tags {
		want[t] = true
	}
	out := make([]extract.Declaration, 0, len(decls))
	for _, d := range decls {
		if want[d.Tag] {
			out = append(out, d)
		}
	}
	return out
}
