package gemini

import "encoding/json"

// Value is a node of a decoded JSON document. Every accessor is a fallible
// lookup: walking off the document yields the absent Value instead of
// panicking, so a chain only has to be checked once at the end.
type Value struct {
	raw     any
	present bool
}

// ParseFrame decodes one JSON document.
func ParseFrame(data []byte) (Value, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Value{}, err
	}
	return Value{raw: raw, present: true}, nil
}

// Exists reports whether the lookup chain that produced v found a value.
// A JSON null exists.
func (v Value) Exists() bool {
	return v.present
}

// Field returns the named member of an object.
func (v Value) Field(name string) Value {
	obj, ok := v.raw.(map[string]any)
	if !v.present || !ok {
		return Value{}
	}

	child, ok := obj[name]
	if !ok {
		return Value{}
	}
	return Value{raw: child, present: true}
}

// First returns element 0 of a non-empty array.
func (v Value) First() Value {
	arr, ok := v.raw.([]any)
	if !v.present || !ok || len(arr) == 0 {
		return Value{}
	}
	return Value{raw: arr[0], present: true}
}

// AsString returns the value if it is a JSON string.
func (v Value) AsString() (string, bool) {
	if !v.present {
		return "", false
	}
	s, ok := v.raw.(string)
	return s, ok
}

// FrameText walks candidates[0].content.parts[0].text. Only the first
// candidate and the first part are ever consulted.
func FrameText(frame Value) (string, bool) {
	return frame.
		Field("candidates").First().
		Field("content").
		Field("parts").First().
		Field("text").
		AsString()
}

// ExtractText parses a data payload and returns its text fragment. Payloads
// that are not JSON or do not carry text are reported as absent.
func ExtractText(payload []byte) (string, bool) {
	frame, err := ParseFrame(payload)
	if err != nil {
		return "", false
	}
	return FrameText(frame)
}
