package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ValueKind tags the concrete type held by an AnswerValue.
type ValueKind string

const (
	KindEmpty      ValueKind = "empty"
	KindString     ValueKind = "string"
	KindNumber     ValueKind = "number"
	KindBool       ValueKind = "bool"
	KindStringList ValueKind = "stringList"
	KindLocation   ValueKind = "location"
	KindFiles      ValueKind = "files"
)

// GeoPoint is a latitude/longitude pair answered to a location question.
type GeoPoint struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// FileDescriptor references an uploaded file. The upload collaborator fills
// it in before submission; this engine stores it as given.
type FileDescriptor struct {
	OriginalName string `json:"originalName" bson:"originalName"`
	Filename     string `json:"filename" bson:"filename"`
	Mimetype     string `json:"mimetype" bson:"mimetype"`
	Size         int64  `json:"size" bson:"size"`
	Path         string `json:"path" bson:"path"`
}

// AnswerValue is a tagged union over the types an answer can legally hold.
// It marshals to (and from) the natural JSON/BSON shape of the underlying
// value, so stored documents and API payloads never see the tag.
type AnswerValue struct {
	Kind     ValueKind
	Str      string
	Num      float64
	Bool     bool
	List     []string
	Location *GeoPoint
	Files    []FileDescriptor
}

func EmptyValue() AnswerValue            { return AnswerValue{Kind: KindEmpty} }
func StringValue(s string) AnswerValue   { return AnswerValue{Kind: KindString, Str: s} }
func NumberValue(n float64) AnswerValue  { return AnswerValue{Kind: KindNumber, Num: n} }
func BoolValue(b bool) AnswerValue       { return AnswerValue{Kind: KindBool, Bool: b} }
func ListValue(l []string) AnswerValue   { return AnswerValue{Kind: KindStringList, List: l} }
func LocationValue(p GeoPoint) AnswerValue {
	return AnswerValue{Kind: KindLocation, Location: &p}
}
func FilesValue(f []FileDescriptor) AnswerValue { return AnswerValue{Kind: KindFiles, Files: f} }

// IsEmpty reports whether the value counts as "not answered" for
// required-field checks.
func (v AnswerValue) IsEmpty() bool {
	switch v.Kind {
	case KindEmpty:
		return true
	case KindString:
		return v.Str == ""
	case KindStringList:
		return len(v.List) == 0
	case KindFiles:
		return len(v.Files) == 0
	}
	return false
}

// Native returns the untagged Go value, suitable for JSON/BSON encoding.
func (v AnswerValue) Native() any {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return v.Num
	case KindBool:
		return v.Bool
	case KindStringList:
		return v.List
	case KindLocation:
		return v.Location
	case KindFiles:
		return v.Files
	}
	return nil
}

// FromNative converts a dynamically-typed value (decoded JSON or BSON) into
// the tagged union. Unrecognized shapes are rejected.
func FromNative(raw any) (AnswerValue, error) {
	switch val := raw.(type) {
	case nil:
		return EmptyValue(), nil
	case string:
		return StringValue(val), nil
	case bool:
		return BoolValue(val), nil
	case float64:
		return NumberValue(val), nil
	case float32:
		return NumberValue(float64(val)), nil
	case int:
		return NumberValue(float64(val)), nil
	case int32:
		return NumberValue(float64(val)), nil
	case int64:
		return NumberValue(float64(val)), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return EmptyValue(), fmt.Errorf("invalid number %q", val.String())
		}
		return NumberValue(f), nil
	case []string:
		return ListValue(val), nil
	case GeoPoint:
		return LocationValue(val), nil
	case *GeoPoint:
		if val == nil {
			return EmptyValue(), nil
		}
		return LocationValue(*val), nil
	case []FileDescriptor:
		return FilesValue(val), nil
	case []any:
		return fromSlice(val)
	case primitive.A:
		return fromSlice([]any(val))
	case map[string]any:
		return fromMap(val)
	case primitive.M:
		return fromMap(map[string]any(val))
	case primitive.D:
		m := make(map[string]any, len(val))
		for _, e := range val {
			m[e.Key] = e.Value
		}
		return fromMap(m)
	}
	return EmptyValue(), fmt.Errorf("unsupported answer value of type %T", raw)
}

func fromSlice(items []any) (AnswerValue, error) {
	if len(items) == 0 {
		return ListValue(nil), nil
	}
	if _, ok := items[0].(string); ok {
		list := make([]string, 0, len(items))
		for _, it := range items {
			s, ok := it.(string)
			if !ok {
				return EmptyValue(), fmt.Errorf("mixed-type list element %T", it)
			}
			list = append(list, s)
		}
		return ListValue(list), nil
	}
	// A list of objects is a file-descriptor array.
	files := make([]FileDescriptor, 0, len(items))
	for _, it := range items {
		fd, err := decodeFileDescriptor(it)
		if err != nil {
			return EmptyValue(), err
		}
		files = append(files, fd)
	}
	return FilesValue(files), nil
}

func fromMap(m map[string]any) (AnswerValue, error) {
	lat, latOK := toFloat(m["latitude"])
	lng, lngOK := toFloat(m["longitude"])
	if latOK && lngOK {
		return LocationValue(GeoPoint{Latitude: lat, Longitude: lng}), nil
	}
	return EmptyValue(), fmt.Errorf("unsupported answer object (want latitude/longitude)")
}

func decodeFileDescriptor(raw any) (FileDescriptor, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return FileDescriptor{}, err
	}
	var fd FileDescriptor
	if err := json.Unmarshal(data, &fd); err != nil {
		return FileDescriptor{}, fmt.Errorf("invalid file descriptor: %w", err)
	}
	return fd, nil
}

func toFloat(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Native())
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := FromNative(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v AnswerValue) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(v.Native())
}

func (v *AnswerValue) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	if t == bsontype.Null {
		*v = EmptyValue()
		return nil
	}
	var native any
	if err := raw.Unmarshal(&native); err != nil {
		return err
	}
	parsed, err := FromNative(native)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
